package ws

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"go-splendor/dto"
	"go-splendor/engine"
	"go-splendor/entities"

	"github.com/mitchellh/mapstructure"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/message.schema.json
var messageSchemaJSON string

const messageSchemaURL = "message.schema.json"

func compileMessageSchema() (*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(messageSchemaURL, strings.NewReader(messageSchemaJSON)); err != nil {
		return nil, err
	}
	return c.Compile(messageSchemaURL)
}

// parseMessage 先按 schema 校验原始 JSON，再转成 Message
func parseMessage(schema *jsonschema.Schema, raw []byte) (dto.Message, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return dto.Message{}, fmt.Errorf("消息解析失败: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return dto.Message{}, fmt.Errorf("消息格式不合法: %w", err)
	}
	var msg dto.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return dto.Message{}, fmt.Errorf("消息解析失败: %w", err)
	}
	return msg, nil
}

func decodePayload(payload map[string]interface{}, out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(payload)
}

// decodeAction 把客户端消息转成引擎动作
func decodeAction(msgType string, payload map[string]interface{}) (engine.Action, error) {
	switch msgType {
	case dto.MsgPurchaseCard:
		var a engine.PurchaseAvailable
		if err := decodePayload(payload, &a); err != nil {
			return nil, err
		}
		return a, nil
	case dto.MsgPurchaseReserved:
		var a engine.PurchaseReserved
		if err := decodePayload(payload, &a); err != nil {
			return nil, err
		}
		return a, nil
	case dto.MsgReserveCard:
		var a engine.ReserveBoard
		if err := decodePayload(payload, &a); err != nil {
			return nil, err
		}
		return a, nil
	case dto.MsgReserveBlind:
		var a engine.ReserveBlind
		if err := decodePayload(payload, &a); err != nil {
			return nil, err
		}
		return a, nil
	case dto.MsgTakeGems:
		var p struct {
			Gems map[string]int `mapstructure:"gems"`
		}
		if err := decodePayload(payload, &p); err != nil {
			return nil, err
		}
		gems, err := entities.GemsFromMap(p.Gems)
		if err != nil {
			return nil, err
		}
		return engine.TakeGems{Gems: gems}, nil
	}
	return nil, fmt.Errorf("未知的动作类型: %s", msgType)
}
