package dto

import (
	"go-splendor/engine"
	"go-splendor/entities"

	"github.com/gorilla/websocket"
)

type ConnInterface interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type RealConn struct {
	*websocket.Conn
}

func (r *RealConn) WriteMessage(messageType int, data []byte) error {
	return r.Conn.WriteMessage(messageType, data)
}

func (r *RealConn) Close() error {
	return r.Conn.Close()
}

// 玩家连接对象结构体
type PlayerConn struct {
	PlayerID string
	Conn     ConnInterface
	Online   bool // 标记是否在线
}

// 客户端与服务端之间的消息类型
const (
	MsgReady            = "ready"
	MsgTakeGems         = "take_gems"
	MsgPurchaseCard     = "purchase_card"
	MsgPurchaseReserved = "purchase_reserved"
	MsgReserveCard      = "reserve_card"
	MsgReserveBlind     = "reserve_blind"
	MsgRestartGame      = "restart_game"

	MsgSync  = "sync"
	MsgError = "error"
	MsgInit  = "init"
)

type Message struct {
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// ActionMessage 把动作编码成客户端提交时用的消息
func ActionMessage(a engine.Action) Message {
	switch act := a.(type) {
	case engine.PurchaseAvailable:
		return Message{Type: MsgPurchaseCard, Payload: map[string]interface{}{"tier": act.Tier, "slot": act.Slot}}
	case engine.PurchaseReserved:
		return Message{Type: MsgPurchaseReserved, Payload: map[string]interface{}{"index": act.Index}}
	case engine.ReserveBoard:
		return Message{Type: MsgReserveCard, Payload: map[string]interface{}{"tier": act.Tier, "slot": act.Slot}}
	case engine.ReserveBlind:
		return Message{Type: MsgReserveBlind, Payload: map[string]interface{}{"tier": act.Tier}}
	case engine.TakeGems:
		gems := map[string]interface{}{}
		for _, c := range entities.CostColors {
			if act.Gems[c] > 0 {
				gems[c.String()] = act.Gems[c]
			}
		}
		return Message{Type: MsgTakeGems, Payload: map[string]interface{}{"gems": gems}}
	}
	return Message{}
}

type TierView struct {
	Slots    []*entities.Card `json:"slots"`
	DeckSize int              `json:"deckSize"`
}

type PlayerView struct {
	ID            string               `json:"id"`
	Gems          entities.Gems        `json:"gems"`
	Discounts     entities.Gems        `json:"discounts"`
	Owned         []entities.Card      `json:"owned"`
	Reserved      []entities.Card      `json:"reserved,omitempty"` // 只有本人可见
	ReservedCount int                  `json:"reservedCount"`
	Points        int                  `json:"points"`
	Objectives    []entities.Objective `json:"objectives"`
}

// GameView 发给某个玩家的局面：牌堆只给数量，对手的预留牌只给数量
type GameView struct {
	GameID        string                    `json:"gameID"`
	Bank          entities.Gems             `json:"bank"`
	Market        [engine.NumTiers]TierView `json:"market"`
	Players       []PlayerView              `json:"players"`
	Objectives    []entities.Objective      `json:"objectives"`
	CurrentPlayer string                    `json:"currentPlayer"`
	Turn          int                       `json:"turn"`
	PointTarget   int                       `json:"pointTarget"`
	FinalRound    bool                      `json:"finalRound"`
	Over          bool                      `json:"over"`
	Standings     []engine.Standing         `json:"standings,omitempty"`
	LegalActions  []Message                 `json:"legalActions,omitempty"`
}

func NewGameView(s *engine.GameState, viewer string) GameView {
	v := GameView{
		GameID:        s.ID,
		Bank:          s.Bank.Gems,
		Objectives:    s.Objectives,
		CurrentPlayer: s.Players[s.Current].ID,
		Turn:          s.Turn,
		PointTarget:   s.PointTarget,
		FinalRound:    s.FinalRound,
		Over:          s.Over,
	}
	for i, row := range s.Market.Tiers {
		v.Market[i] = TierView{Slots: row.Slots, DeckSize: len(row.Deck)}
	}
	for _, p := range s.Players {
		pv := PlayerView{
			ID:            p.ID,
			Gems:          p.Gems,
			Discounts:     p.Discounts,
			Owned:         p.Owned,
			ReservedCount: len(p.Reserved),
			Points:        p.Points,
			Objectives:    p.Objectives,
		}
		if p.ID == viewer {
			pv.Reserved = p.Reserved
		}
		v.Players = append(v.Players, pv)
	}
	if s.Over {
		v.Standings = engine.Ranking(s)
	} else if v.CurrentPlayer == viewer {
		for _, a := range engine.LegalActions(s, s.Current) {
			v.LegalActions = append(v.LegalActions, ActionMessage(a))
		}
	}
	return v
}
