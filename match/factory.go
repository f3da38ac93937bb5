package match

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go-splendor/config"
	"go-splendor/const_data"
	"go-splendor/engine"
	"go-splendor/policy"

	"go.uber.org/zap"
	"golang.org/x/exp/rand"
)

// ErrTurnLimit Run 达到回合上限后强制结束
var ErrTurnLimit = errors.New("turn limit reached")

// Factory 根据配置创建对局、AI 策略和贵族选择方式
type Factory struct {
	Game    config.GameConfig
	Policy  config.PolicyConfig
	Catalog *const_data.Catalog
	Log     *zap.Logger

	eval policy.Evaluator
}

func NewFactory(game config.GameConfig, pol config.PolicyConfig, log *zap.Logger) (*Factory, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var (
		cat *const_data.Catalog
		err error
	)
	if game.CardsFile != "" {
		cat, err = const_data.LoadFile(game.CardsFile)
	} else {
		cat, err = const_data.Default()
	}
	if err != nil {
		return nil, fmt.Errorf("加载卡牌数据失败: %w", err)
	}

	f := &Factory{Game: game, Policy: pol, Catalog: cat, Log: log}
	switch pol.Evaluator {
	case "http":
		f.eval = policy.NewHTTPEvaluator(pol.ScorerURL, pol.Budget, log)
	default:
		f.eval = pol.Heuristic
	}
	return f, nil
}

func (f *Factory) Evaluator() policy.Evaluator { return f.eval }

// Seed 配置为 0 时按时间取种子
func (f *Factory) Seed() uint64 {
	if f.Game.Seed != 0 {
		return f.Game.Seed
	}
	return uint64(time.Now().UnixNano())
}

func (f *Factory) NewGame(gameID string, playerIDs []string, rng *rand.Rand) (*engine.GameState, error) {
	return engine.NewGame(engine.Setup{
		GameID:       gameID,
		PlayerIDs:    playerIDs,
		Decks:        f.Catalog.Decks(),
		Objectives:   f.Catalog.Objectives,
		GemSupply:    f.Game.GemSupply,
		Wildcards:    f.Game.Wildcards,
		PointTarget:  f.Game.PointTarget,
		VisibleSlots: f.Game.VisibleSlots,
	}, rng)
}

func (f *Factory) NewPolicy(rng *rand.Rand) *policy.Policy {
	return policy.New(f.eval, f.Policy.Options, rng, f.Log)
}

func (f *Factory) NewTieBreak(rng *rand.Rand) engine.TieBreaker {
	switch f.Policy.TieBreak {
	case "random":
		return engine.RandomTieBreak{Rng: rng}
	case "lookahead":
		return policy.LookaheadTieBreak{Eval: f.eval, Timeout: f.Policy.Budget}
	default:
		return engine.ProximityTieBreak{}
	}
}

// NewEngine 创建对局和回合引擎，Selector 为 AI 策略
func (f *Factory) NewEngine(gameID string, playerIDs []string, seed uint64) (*engine.TurnEngine, *policy.Policy, error) {
	rng := rand.New(rand.NewSource(seed))
	s, err := f.NewGame(gameID, playerIDs, rng)
	if err != nil {
		return nil, nil, err
	}
	pol := f.NewPolicy(rand.New(rand.NewSource(seed ^ 0x9e3779b97f4a7c15)))
	e := engine.NewTurnEngine(s, pol, f.NewTieBreak(rng), f.Log)
	return e, pol, nil
}

// Step 让当前玩家用 Selector 走一步；没有合法动作时按配置跳过或结束
func Step(ctx context.Context, e *engine.TurnEngine, noMove config.NoMovePolicy) (engine.TurnResult, error) {
	res, err := e.PlayTurn(ctx)
	if !errors.Is(err, engine.ErrNoLegalMove) {
		return res, err
	}
	return Stuck(e, noMove)
}

// Stuck 当前玩家无合法动作时的处理
func Stuck(e *engine.TurnEngine, noMove config.NoMovePolicy) (engine.TurnResult, error) {
	if noMove == config.NoMoveEnd {
		player := e.State.Current
		e.End()
		return engine.TurnResult{Player: player, PlayerID: e.State.Players[player].ID, GameOver: true}, nil
	}
	return e.Pass()
}

// Run 跑完整局，maxTurns 防止配置错误导致死循环
func Run(ctx context.Context, e *engine.TurnEngine, noMove config.NoMovePolicy, maxTurns int) error {
	for i := 0; !e.State.Over; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if maxTurns > 0 && i >= maxTurns {
			e.End()
			return fmt.Errorf("%w: game %s stopped after %d turns", ErrTurnLimit, e.State.ID, maxTurns)
		}
		if _, err := Step(ctx, e, noMove); err != nil {
			return err
		}
	}
	return nil
}
