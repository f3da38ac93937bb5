package engine

import (
	"context"
	"errors"
	"fmt"

	"go-splendor/entities"

	"go.uber.org/zap"
)

var (
	ErrNotYourTurn    = errors.New("not this player's turn")
	ErrActionNotLegal = errors.New("action is not in the legal set")
)

// Phase 回合状态机
type Phase int

const (
	AwaitingAction Phase = iota
	Applying
	ResolvingObjectives
	CheckingVictory
	TurnComplete
)

func (p Phase) String() string {
	switch p {
	case AwaitingAction:
		return "awaiting_action"
	case Applying:
		return "applying"
	case ResolvingObjectives:
		return "resolving_objectives"
	case CheckingVictory:
		return "checking_victory"
	case TurnComplete:
		return "turn_complete"
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// Selector 从非空的合法动作中选一个
type Selector interface {
	Select(ctx context.Context, s *GameState, player int, actions []Action) (Action, error)
}

// StepObserver 每提交一个动作、每局结束时回调
type StepObserver interface {
	OnStep(s *GameState, player int, a Action)
	OnGameEnd(s *GameState, standings []Standing)
}

type TurnResult struct {
	Player        int                 `json:"player"`
	PlayerID      string              `json:"playerID"`
	Action        Action              `json:"-"`
	Kind          ActionKind          `json:"kind"`
	Effect        Effect              `json:"effect"`
	Objective     *entities.Objective `json:"objective,omitempty"`
	FinalRoundSet bool                `json:"finalRoundSet"`
	GameOver      bool                `json:"gameOver"`
	Passed        bool                `json:"passed"`
}

// TurnEngine 唯一可以修改 GameState 的地方
type TurnEngine struct {
	State     *GameState
	Selector  Selector
	TieBreak  TieBreaker
	Observers []StepObserver
	Log       *zap.Logger

	phase Phase
}

func NewTurnEngine(s *GameState, sel Selector, tb TieBreaker, log *zap.Logger) *TurnEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &TurnEngine{State: s, Selector: sel, TieBreak: tb, Log: log}
}

func (e *TurnEngine) Phase() Phase { return e.phase }

// LegalActions 当前玩家的合法动作
func (e *TurnEngine) LegalActions() []Action {
	return LegalActions(e.State, e.State.Current)
}

// PlayTurn 由 Selector 为当前玩家选动作并完成整个回合。
// 没有合法动作时返回 ErrNoLegalMove，状态不变，由外层决定 Pass 还是 End。
func (e *TurnEngine) PlayTurn(ctx context.Context) (TurnResult, error) {
	if e.State.Over {
		return TurnResult{}, ErrGameOver
	}
	e.phase = AwaitingAction
	player := e.State.Current
	actions := LegalActions(e.State, player)
	if len(actions) == 0 {
		e.Log.Warn("⚠️ 玩家没有合法动作", zap.String("gameID", e.State.ID), zap.String("playerID", e.State.Players[player].ID))
		return TurnResult{}, ErrNoLegalMove
	}
	if e.Selector == nil {
		return TurnResult{}, errors.New("turn engine has no selector")
	}
	a, err := e.Selector.Select(ctx, e.State, player, actions)
	if err != nil {
		return TurnResult{}, err
	}
	return e.commit(player, a)
}

// Submit 外部玩家（人类）提交动作，必须是当前玩家且在合法集合中
func (e *TurnEngine) Submit(playerID string, a Action) (TurnResult, error) {
	if e.State.Over {
		return TurnResult{}, ErrGameOver
	}
	e.phase = AwaitingAction
	player := e.State.Current
	if e.State.Players[player].ID != playerID {
		return TurnResult{}, ErrNotYourTurn
	}
	actions := LegalActions(e.State, player)
	if len(actions) == 0 {
		return TurnResult{}, ErrNoLegalMove
	}
	if !Contains(actions, a) {
		return TurnResult{}, fmt.Errorf("%w: %s", ErrActionNotLegal, describe(a))
	}
	return e.commit(player, a)
}

func (e *TurnEngine) commit(player int, a Action) (TurnResult, error) {
	e.phase = Applying
	next, eff, err := Apply(e.State, player, a)
	if err != nil {
		e.Log.Error("❌ 动作应用失败", zap.String("gameID", e.State.ID), zap.Int("player", player), zap.Error(err))
		return TurnResult{}, err
	}

	res := TurnResult{
		Player:   player,
		PlayerID: next.Players[player].ID,
		Action:   a,
		Kind:     a.Kind(),
		Effect:   eff,
	}
	if eff.DeckEmptied {
		e.Log.Info("牌堆已空，明牌位留空", zap.String("gameID", next.ID))
	}

	e.phase = ResolvingObjectives
	if obj, ok := next.resolveObjectives(player, e.TieBreak); ok {
		res.Objective = &obj
	}

	e.phase = CheckingVictory
	res.FinalRoundSet = next.checkVictory(player)
	if res.FinalRoundSet {
		e.Log.Info("🏁 达到目标分，进入最后一轮", zap.String("gameID", next.ID), zap.String("playerID", res.PlayerID), zap.Int("points", next.Players[player].Points))
	}

	e.phase = TurnComplete
	next.Passes = 0
	next.advance(player)
	res.GameOver = next.Over
	e.State = next

	for _, o := range e.Observers {
		o.OnStep(next, player, a)
	}
	if next.Over {
		e.finish()
	}
	return res, nil
}

// Pass 无合法动作时跳过当前玩家。所有人连续跳过则结束
func (e *TurnEngine) Pass() (TurnResult, error) {
	if e.State.Over {
		return TurnResult{}, ErrGameOver
	}
	next := e.State.Clone()
	player := next.Current
	next.Passes++
	if next.Passes >= len(next.Players) {
		next.Over = true
	} else {
		next.advance(player)
	}
	e.State = next
	e.phase = TurnComplete
	if next.Over {
		e.finish()
	}
	return TurnResult{Player: player, PlayerID: next.Players[player].ID, Passed: true, GameOver: next.Over}, nil
}

// End 立即结束游戏并结算
func (e *TurnEngine) End() []Standing {
	if !e.State.Over {
		next := e.State.Clone()
		next.Over = true
		e.State = next
		e.finish()
	}
	return Ranking(e.State)
}

func (e *TurnEngine) finish() {
	standings := Ranking(e.State)
	if len(standings) > 0 {
		e.Log.Info("🎉 游戏结束", zap.String("gameID", e.State.ID), zap.String("winner", standings[0].PlayerID), zap.Int("turns", e.State.Turn))
	}
	for _, o := range e.Observers {
		o.OnGameEnd(e.State, standings)
	}
}

// checkVictory 最后一轮已触发时直接跳过
func (s *GameState) checkVictory(player int) bool {
	if s.FinalRound {
		return false
	}
	if s.Players[player].Points < s.PointTarget {
		return false
	}
	s.FinalRound = true
	s.TriggeredBy = player
	return true
}

// advance 轮到下一位；最后一轮回到触发者时结束
func (s *GameState) advance(player int) {
	s.Turn++
	nxt := s.next(player)
	if s.FinalRound && nxt == s.TriggeredBy {
		s.Over = true
		return
	}
	s.Current = nxt
}
