package policy

import (
	"context"
	"fmt"
	"math"

	"go-splendor/engine"
	"go-splendor/entities"
)

// Evaluator 给一个特征向量打分，分数越高越好，必须 >= 0
type Evaluator interface {
	Score(ctx context.Context, features []float64) (float64, error)
}

// EvaluatorFunc 让普通函数实现 Evaluator
type EvaluatorFunc func(ctx context.Context, features []float64) (float64, error)

func (f EvaluatorFunc) Score(ctx context.Context, features []float64) (float64, error) {
	return f(ctx, features)
}

// Heuristic 不依赖外部服务的线性打分
type Heuristic struct {
	Points      float64 `yaml:"points"`
	Discounts   float64 `yaml:"discounts"`
	Gems        float64 `yaml:"gems"`
	Wildcards   float64 `yaml:"wildcards"`
	Reserved    float64 `yaml:"reserved"`
	Objective   float64 `yaml:"objective"`   // 离最近贵族每差一张的惩罚
	OpponentMax float64 `yaml:"opponentMax"` // 领先对手分数的惩罚
}

func DefaultHeuristic() Heuristic {
	return Heuristic{
		Points:      3,
		Discounts:   1,
		Gems:        0.25,
		Wildcards:   0.4,
		Reserved:    0.2,
		Objective:   0.3,
		OpponentMax: 0.5,
	}
}

func (h Heuristic) Score(ctx context.Context, f []float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if len(f) != engine.FeatureLen {
		return 0, fmt.Errorf("feature vector has %d entries, want %d", len(f), engine.FeatureLen)
	}

	score := h.Points * f[engine.OffsetPoints]
	for i := 0; i < entities.NumCostColors; i++ {
		score += h.Discounts * f[engine.OffsetDiscounts+i]
		score += h.Gems * f[engine.OffsetGems+i]
	}
	score += h.Wildcards * f[engine.OffsetGems+int(entities.Gold)]
	for i := 0; i < engine.NumTiers; i++ {
		score += h.Reserved * f[engine.OffsetReserved+i]
	}

	nearest := -1.0
	for o := 0; o < engine.MaxObjectiveSlots; o++ {
		gap := 0.0
		for c := 0; c < entities.NumCostColors; c++ {
			gap += f[engine.OffsetObjectives+o*entities.NumCostColors+c]
		}
		if gap > 0 && (nearest < 0 || gap < nearest) {
			nearest = gap
		}
	}
	if nearest > 0 {
		score -= h.Objective * nearest
	}

	best := 0.0
	for k := 0; k < engine.MaxOpponents; k++ {
		best = math.Max(best, f[engine.OffsetOpponents+k*engine.OpponentStride])
	}
	score -= h.OpponentMax * best

	// 平移到正数区间，温度采样要求分数非负
	return math.Max(0, score+10), nil
}
