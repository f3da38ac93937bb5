package policy

import (
	"context"
	"time"

	"go-splendor/engine"
)

// LookaheadTieBreak 对每个可选贵族模拟授予后的局面，用评估器选分最高的
type LookaheadTieBreak struct {
	Eval    Evaluator
	Timeout time.Duration
}

var _ engine.TieBreaker = LookaheadTieBreak{}

func (l LookaheadTieBreak) Choose(s *engine.GameState, player int, candidates []int) int {
	ctx := context.Background()
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}
	best, bestScore := 0, -1.0
	for i, idx := range candidates {
		next := s.Clone()
		next.Award(player, idx)
		score, err := l.Eval.Score(ctx, engine.Features(next, player))
		if err != nil {
			continue
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return best
}
