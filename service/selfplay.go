package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go-splendor/config"
	"go-splendor/corpus"
	"go-splendor/dto"
	"go-splendor/engine"
	"go-splendor/match"
	"go-splendor/repository"
	"go-splendor/ws"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// SelfPlayRoomID 自我对局写入结果库时使用的房间号
	SelfPlayRoomID  = "selfplay"
	DefaultMaxTurns = 1000
)

// SelfPlayService 纯 AI 对局，温度按 Schedule 随局数衰减
// stepCounter 统计实际提交的动作数，跳过不算
type stepCounter struct{ n int }

func (c *stepCounter) OnStep(*engine.GameState, int, engine.Action)   { c.n++ }
func (c *stepCounter) OnGameEnd(*engine.GameState, []engine.Standing) {}

type SelfPlayService struct {
	Factory  *match.Factory
	Results  *repository.ResultStore // 可为 nil
	Recorder *corpus.Recorder        // 可为 nil
	NoMove   config.NoMovePolicy
	MaxTurns int
	Workers  int
	Log      *zap.Logger
}

func (s *SelfPlayService) Run(ctx context.Context, req dto.SelfPlayRequest) (dto.SelfPlayResponse, error) {
	if req.Games <= 0 {
		return dto.SelfPlayResponse{}, errors.New("games must be positive")
	}
	if req.Players < engine.MinPlayers || req.Players > engine.MaxPlayers {
		return dto.SelfPlayResponse{}, fmt.Errorf("players must be in [%d,%d]", engine.MinPlayers, engine.MaxPlayers)
	}
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	maxTurns := s.MaxTurns
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	base := req.Seed
	if base == 0 {
		base = s.Factory.Seed()
	}
	ids := make([]string, req.Players)
	for i := range ids {
		ids[i] = ws.AIPlayerID(i + 1)
	}
	// 同一 seed 的多次请求也要有不同的 gameID
	runID := uuid.NewString()[:8]
	written := 0
	if s.Recorder != nil {
		written = s.Recorder.Written()
	}

	var (
		mu   sync.Mutex
		resp = dto.SelfPlayResponse{Wins: make(map[string]int)}
	)
	g, ctx := errgroup.WithContext(ctx)
	if s.Workers > 0 {
		g.SetLimit(s.Workers)
	}
	for i := 0; i < req.Games; i++ {
		i := i
		g.Go(func() error {
			gameID := fmt.Sprintf("%s-%s-%d-%d", SelfPlayRoomID, runID, base, i)
			e, pol, err := s.Factory.NewEngine(gameID, ids, base+uint64(i))
			if err != nil {
				return err
			}
			pol.SetTemperature(s.Factory.Policy.Schedule.At(i))
			steps := &stepCounter{}
			e.Observers = append(e.Observers, steps)
			if s.Recorder != nil {
				e.Observers = append(e.Observers, s.Recorder)
			}
			if s.Results != nil {
				e.Observers = append(e.Observers, s.Results.Observer(SelfPlayRoomID))
			}

			err = match.Run(ctx, e, s.NoMove, maxTurns)
			if errors.Is(err, match.ErrTurnLimit) {
				log.Warn("⚠️ 自我对局达到回合上限", zap.String("gameID", gameID), zap.Int("maxTurns", maxTurns))
			} else if err != nil {
				return err
			}

			standings := engine.Ranking(e.State)
			mu.Lock()
			defer mu.Unlock()
			resp.Games++
			resp.Turns += e.State.Turn
			resp.Steps += steps.n
			if len(standings) > 0 {
				resp.Wins[standings[0].PlayerID]++
			}
			return nil
		})
	}
	err := g.Wait()
	if s.Recorder != nil {
		resp.Records = s.Recorder.Written() - written
	}
	log.Info("🤖 自我对局完成", zap.String("runID", runID), zap.Int("games", resp.Games), zap.Int("turns", resp.Turns), zap.Int("steps", resp.Steps), zap.Int("records", resp.Records))
	return resp, err
}
