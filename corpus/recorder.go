package corpus

import (
	"context"
	"sync"
	"time"

	"go-splendor/engine"

	"go.uber.org/zap"
)

// Recorder 挂在 TurnEngine 上，按局缓存每一步，结束时标注胜负并写入所有 Sink
type Recorder struct {
	sinks   []Sink
	log     *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	pending map[string][]Record
	written int
}

var _ engine.StepObserver = (*Recorder)(nil)

func NewRecorder(log *zap.Logger, timeout time.Duration, sinks ...Sink) *Recorder {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Recorder{
		sinks:   sinks,
		log:     log,
		timeout: timeout,
		pending: make(map[string][]Record),
	}
}

func (r *Recorder) OnStep(s *engine.GameState, player int, a engine.Action) {
	rec := Record{
		GameID:     s.ID,
		PlayerID:   s.Players[player].ID,
		Features:   engine.Features(s, player),
		ActionKind: a.Kind(),
		Action:     a.String(),
	}
	r.mu.Lock()
	rec.Step = len(r.pending[s.ID])
	r.pending[s.ID] = append(r.pending[s.ID], rec)
	r.mu.Unlock()
}

func (r *Recorder) OnGameEnd(s *engine.GameState, standings []engine.Standing) {
	r.mu.Lock()
	records := r.pending[s.ID]
	delete(r.pending, s.ID)
	r.mu.Unlock()

	if len(records) == 0 {
		return
	}
	winner := ""
	if len(standings) > 0 {
		winner = standings[0].PlayerID
	}
	for i := range records {
		if records[i].PlayerID == winner {
			records[i].Outcome = 1
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	for _, sink := range r.sinks {
		if err := sink.Write(ctx, records); err != nil {
			r.log.Error("❌ 写入训练语料失败", zap.String("gameID", s.ID), zap.Error(err))
		}
	}

	r.mu.Lock()
	r.written += len(records)
	r.mu.Unlock()
	r.log.Debug("📝 训练语料已写入", zap.String("gameID", s.ID), zap.Int("records", len(records)))
}

// Written 已经写出的记录总数
func (r *Recorder) Written() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.written
}

// Close 关闭所有 Sink；未结束的对局直接丢弃
func (r *Recorder) Close() error {
	var first error
	for _, sink := range r.sinks {
		if err := sink.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
