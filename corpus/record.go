package corpus

import (
	"context"

	"go-splendor/engine"
)

// Record 训练语料的一行：某个玩家动作之后的局面特征和最终胜负
type Record struct {
	GameID     string            `json:"gameID"`
	Step       int               `json:"step"`
	PlayerID   string            `json:"playerID"`
	Features   []float64         `json:"features"`
	ActionKind engine.ActionKind `json:"actionKind"`
	Action     string            `json:"action"`
	Outcome    float64           `json:"outcome"` // 胜者 1，其余 0
}

// Sink 一局结束后整批写出
type Sink interface {
	Write(ctx context.Context, records []Record) error
	Close() error
}
