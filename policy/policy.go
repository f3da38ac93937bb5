package policy

import (
	"context"
	"runtime"
	"sync"
	"time"

	"go-splendor/engine"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
)

// Options 决策参数
type Options struct {
	Temperature float64       `yaml:"temperature" env:"TEMPERATURE"`
	Budget      time.Duration `yaml:"budget" env:"BUDGET"`   // 单次决策的打分时限，0 表示不限
	Workers     int           `yaml:"workers" env:"WORKERS"` // 并发打分数，0 表示 CPU 数
}

// Policy 对每个候选动作模拟一步、打分、按温度抽样
type Policy struct {
	Eval Evaluator
	Opts Options
	Log  *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

var _ engine.Selector = (*Policy)(nil)

func New(eval Evaluator, opts Options, rng *rand.Rand, log *zap.Logger) *Policy {
	if log == nil {
		log = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	}
	return &Policy{Eval: eval, Opts: opts, Log: log, rng: rng}
}

// SetTemperature 自对弈按 Schedule 调整
func (p *Policy) SetTemperature(t float64) {
	p.mu.Lock()
	p.Opts.Temperature = t
	p.mu.Unlock()
}

func (p *Policy) Select(ctx context.Context, s *engine.GameState, player int, actions []engine.Action) (engine.Action, error) {
	if len(actions) == 0 {
		return nil, engine.ErrNoLegalMove
	}
	if len(actions) == 1 {
		return actions[0], nil
	}

	scored := p.ScoreAll(ctx, s, player, actions)
	if len(scored) == 0 {
		// 熔断：一个分数都没拿到，取第一个合法动作
		p.Log.Warn("⚠️ 打分全部失败，使用第一个合法动作", zap.String("gameID", s.ID), zap.Int("player", player))
		return actions[0], nil
	}

	scores := make([]float64, len(scored))
	for i, c := range scored {
		scores[i] = c.Score
	}
	p.mu.Lock()
	idx := Sample(scores, p.Opts.Temperature, p.rng)
	p.mu.Unlock()
	return scored[idx].Action, nil
}

// Candidate 一个打过分的候选动作
type Candidate struct {
	Action engine.Action
	Score  float64
}

// ScoreAll 并发地在各自的状态副本上应用候选动作并打分。
// 超时或出错的候选被丢弃，返回顺序与 actions 一致。
func (p *Policy) ScoreAll(ctx context.Context, s *engine.GameState, player int, actions []engine.Action) []Candidate {
	if p.Opts.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Opts.Budget)
		defer cancel()
	}

	var (
		mu     sync.Mutex
		scores = make([]float64, len(actions))
		done   = make([]bool, len(actions))
	)

	workers := p.Opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	snapshot := s.Clone()
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for i, a := range actions {
			if gctx.Err() != nil {
				break
			}
			// Apply 只读 snapshot，每个候选得到自己的副本
			g.Go(func() error {
				next, _, err := engine.Apply(snapshot, player, a)
				if err != nil {
					p.Log.Error("❌ 候选动作模拟失败", zap.String("action", a.String()), zap.Error(err))
					return nil
				}
				score, err := p.Eval.Score(gctx, engine.Features(next, player))
				if err != nil {
					p.Log.Debug("打分失败", zap.String("action", a.String()), zap.Error(err))
					return nil
				}
				mu.Lock()
				scores[i], done[i] = score, true
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-finished:
	case <-ctx.Done():
		p.Log.Debug("打分超时，丢弃未返回的候选", zap.Error(ctx.Err()))
	}

	mu.Lock()
	defer mu.Unlock()
	out := make([]Candidate, 0, len(actions))
	for i, a := range actions {
		if done[i] {
			out = append(out, Candidate{Action: a, Score: scores[i]})
		}
	}
	return out
}
