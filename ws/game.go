package ws

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-splendor/dto"
	"go-splendor/engine"
	"go-splendor/match"
	"go-splendor/repository"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

// messageHandler 调用方持有 r.mu
type messageHandler func(h *Hub, ctx context.Context, r *Room, playerID string, payload map[string]interface{}) error

var messageHandlers = map[string]messageHandler{
	dto.MsgReady:            handleReadyMessage,
	dto.MsgRestartGame:      handleRestartMessage,
	dto.MsgTakeGems:         handleActionMessage(dto.MsgTakeGems),
	dto.MsgPurchaseCard:     handleActionMessage(dto.MsgPurchaseCard),
	dto.MsgPurchaseReserved: handleActionMessage(dto.MsgPurchaseReserved),
	dto.MsgReserveCard:      handleActionMessage(dto.MsgReserveCard),
	dto.MsgReserveBlind:     handleActionMessage(dto.MsgReserveBlind),
}

// handleReadyMessage 人满且全部准备后开局
func handleReadyMessage(h *Hub, ctx context.Context, r *Room, playerID string, _ map[string]interface{}) error {
	if r.playing() {
		return ErrGameRunning
	}
	r.ready[playerID] = true
	if r.engine == nil && r.allReady() {
		return h.startGame(ctx, r)
	}
	return nil
}

// handleRestartMessage 上一局结束后开新的一局
func handleRestartMessage(h *Hub, ctx context.Context, r *Room, playerID string, _ map[string]interface{}) error {
	if r.engine == nil {
		return ErrGameNotStarted
	}
	if !r.engine.State.Over {
		return ErrGameRunning
	}
	if !r.full() {
		return fmt.Errorf("房间人数不足 %d/%d", len(r.seats), r.MaxPlayers)
	}
	h.Log.Info("🔄 重新开始", zap.String("roomID", r.ID), zap.String("playerID", playerID))
	return h.startGame(ctx, r)
}

func handleActionMessage(msgType string) messageHandler {
	return func(h *Hub, ctx context.Context, r *Room, playerID string, payload map[string]interface{}) error {
		if r.engine == nil {
			return ErrGameNotStarted
		}
		a, err := decodeAction(msgType, payload)
		if err != nil {
			return err
		}
		res, err := r.engine.Submit(playerID, a)
		if err != nil {
			return err
		}
		h.commit(ctx, r, res)
		return nil
	}
}

// startGame 按座位顺序开一局新游戏
func (h *Hub) startGame(ctx context.Context, r *Room) error {
	r.round++
	seed := h.Factory.Seed() + uint64(r.round)
	gameID := fmt.Sprintf("%s-%d", r.ID, r.round)
	s, err := h.Factory.NewGame(gameID, r.playerIDs(), rand.New(rand.NewSource(seed)))
	if err != nil {
		return err
	}
	h.attachEngine(r, s, seed)
	r.lastAction = ""
	h.Log.Info("🎮 游戏开始", zap.String("roomID", r.ID), zap.String("gameID", gameID), zap.Strings("players", r.playerIDs()))
	h.persist(ctx, r, nil)
	return nil
}

// attachEngine AI 策略作为 Selector，结果和语料作为观察者
func (h *Hub) attachEngine(r *Room, s *engine.GameState, seed uint64) {
	rng := rand.New(rand.NewSource(seed))
	pol := h.Factory.NewPolicy(rand.New(rand.NewSource(seed ^ 0x9e3779b97f4a7c15)))
	e := engine.NewTurnEngine(s, pol, h.Factory.NewTieBreak(rng), h.Log)
	if h.Recorder != nil {
		e.Observers = append(e.Observers, h.Recorder)
	}
	if h.Results != nil {
		e.Observers = append(e.Observers, h.Results.Observer(r.ID))
	}
	r.engine = e
}

// commit 一步完成后落盘
func (h *Hub) commit(ctx context.Context, r *Room, res engine.TurnResult) {
	r.lastAction = describeResult(res)
	h.persist(ctx, r, &res)
}

func (h *Hub) persist(ctx context.Context, r *Room, res *engine.TurnResult) {
	if h.Store == nil {
		return
	}
	if err := h.Store.SaveState(ctx, r.ID, r.engine.State); err != nil {
		h.Log.Error("❌ 保存对局失败", zap.String("roomID", r.ID), zap.Error(err))
	}
	if err := h.Store.SetGameStatus(ctx, r.ID, r.status()); err != nil {
		h.Log.Error("❌ 设置游戏状态失败", zap.String("roomID", r.ID), zap.Error(err))
	}
	if res == nil {
		return
	}
	last := repository.LastAction{PlayerID: res.PlayerID, Kind: res.Kind, Detail: r.lastAction}
	if err := h.Store.SetLastAction(ctx, r.ID, last); err != nil {
		h.Log.Error("❌ 保存最近动作失败", zap.String("roomID", r.ID), zap.Error(err))
	}
}

// advance 处理轮到 AI 或无动作可走的玩家，直到轮到一个能行动的真人。
// 调用方持有 r.mu。
func (h *Hub) advance(ctx context.Context, r *Room) {
	for r.playing() {
		s := r.engine.State
		current := s.Players[s.Current].ID
		if !IsAIPlayer(current) {
			if len(r.engine.LegalActions()) > 0 {
				return
			}
			res, err := match.Stuck(r.engine, h.NoMove)
			if err != nil {
				h.Log.Error("❌ 跳过玩家失败", zap.String("roomID", r.ID), zap.Error(err))
				return
			}
			h.commit(ctx, r, res)
			continue
		}
		if h.AIDelay > 0 {
			go h.delayedAITurn(r, r.round, s)
			return
		}
		if !h.aiTurn(ctx, r) {
			return
		}
	}
}

// aiTurn 返回 false 时房间停在当前状态，不再继续驱动
func (h *Hub) aiTurn(ctx context.Context, r *Room) bool {
	s := r.engine.State
	playerID := s.Players[s.Current].ID
	h.Log.Debug("🤖 AI 行动", zap.String("roomID", r.ID), zap.String("playerID", playerID))
	res, err := match.Step(ctx, r.engine, h.NoMove)
	var ime *engine.IllegalMoveError
	switch {
	case err == nil:
	case errors.Is(err, engine.ErrGameOver):
		return false
	case errors.As(err, &ime):
		// 生成和应用不一致属于程序错误，不能当成跳过
		h.Log.Error("❌ AI 动作非法，停止驱动房间", zap.String("roomID", r.ID), zap.String("gameID", s.ID), zap.String("playerID", playerID), zap.Int("turn", s.Turn), zap.Error(err))
		return false
	default:
		h.Log.Warn("⚠️ AI 选择动作失败，跳过", zap.String("roomID", r.ID), zap.Error(err))
		if res, err = r.engine.Pass(); err != nil {
			return false
		}
	}
	h.commit(ctx, r, res)
	return true
}

// delayedAITurn 在协程中延迟执行，期间重开或已走过则放弃
func (h *Hub) delayedAITurn(r *Room, round int, scheduled *engine.GameState) {
	time.Sleep(h.AIDelay)

	ctx := context.Background()
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.round != round || !r.playing() || r.engine.State != scheduled {
		return
	}
	if h.aiTurn(ctx, r) {
		h.advance(ctx, r)
	}
	r.broadcast(h.Log)
}
