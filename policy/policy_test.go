package policy

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"go-splendor/const_data"
	"go-splendor/engine"
	"go-splendor/entities"

	"golang.org/x/exp/rand"
)

func newGame(t *testing.T, players int, seed uint64) *engine.GameState {
	t.Helper()
	cat, err := const_data.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	ids := make([]string, players)
	for i := range ids {
		ids[i] = fmt.Sprintf("ai_%d", i)
	}
	s, err := engine.NewGame(engine.Setup{
		GameID:     "policy-test",
		PlayerIDs:  ids,
		Decks:      cat.Decks(),
		Objectives: cat.Objectives,
	}, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return s
}

// pointsEval 只看自己的分数
var pointsEval = EvaluatorFunc(func(_ context.Context, f []float64) (float64, error) {
	return f[engine.OffsetPoints] + 1, nil
})

func TestSelectEmpty(t *testing.T) {
	p := New(pointsEval, Options{}, rand.New(rand.NewSource(1)), nil)
	if _, err := p.Select(context.Background(), newGame(t, 2, 1), 0, nil); !errors.Is(err, engine.ErrNoLegalMove) {
		t.Fatalf("err = %v, want ErrNoLegalMove", err)
	}
}

func TestSelectGreedyAtZeroTemperature(t *testing.T) {
	s := newGame(t, 2, 1)
	// 给玩家足够的宝石，让某张有分的牌买得起
	card := entities.Card{ID: 500, Tier: 3, Color: entities.Red, Points: 4, Cost: entities.Gems{entities.White: 1}}
	s.Players[0].Reserved = []entities.Card{card}
	var g entities.Gems
	g[entities.White] = 1
	if err := s.Bank.Withdraw(g); err != nil {
		t.Fatal(err)
	}
	s.Players[0].Gems = g

	p := New(pointsEval, Options{Temperature: 0}, rand.New(rand.NewSource(2)), nil)
	actions := engine.LegalActions(s, 0)
	for i := 0; i < 10; i++ {
		a, err := p.Select(context.Background(), s, 0, actions)
		if err != nil {
			t.Fatalf("Select: %v", err)
		}
		pr, ok := a.(engine.PurchaseReserved)
		if !ok || pr.Index != 0 {
			t.Fatalf("picked %s, want the 4-point reserved card", a)
		}
	}
}

func TestSelectDoesNotMutateState(t *testing.T) {
	s := newGame(t, 3, 4)
	before := s.Clone()
	p := New(DefaultHeuristic(), Options{Temperature: 1, Workers: 4}, rand.New(rand.NewSource(3)), nil)
	if _, err := p.Select(context.Background(), s, 0, engine.LegalActions(s, 0)); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if fmt.Sprint(before.GemTotals(), before.Players, before.Market.DeckSize(1)) !=
		fmt.Sprint(s.GemTotals(), s.Players, s.Market.DeckSize(1)) {
		t.Fatal("Select changed the live state")
	}
}

func TestSelectCircuitBreaker(t *testing.T) {
	s := newGame(t, 2, 5)
	failing := EvaluatorFunc(func(context.Context, []float64) (float64, error) {
		return 0, errors.New("scorer down")
	})
	p := New(failing, Options{Temperature: 1}, rand.New(rand.NewSource(1)), nil)
	actions := engine.LegalActions(s, 0)
	a, err := p.Select(context.Background(), s, 0, actions)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if !engine.SameAction(a, actions[0]) {
		t.Fatalf("picked %s, want first legal action %s", a, actions[0])
	}
}

func TestScoreAllDropsLateCandidates(t *testing.T) {
	s := newGame(t, 2, 6)
	actions := engine.LegalActions(s, 0)
	var calls atomic.Int32
	slow := EvaluatorFunc(func(ctx context.Context, _ []float64) (float64, error) {
		// 第一个之后的候选都等到超时
		if calls.Add(1) == 1 {
			return 1, nil
		}
		<-ctx.Done()
		return 0, ctx.Err()
	})
	p := New(slow, Options{Budget: 50 * time.Millisecond, Workers: 1}, rand.New(rand.NewSource(1)), nil)
	start := time.Now()
	got := p.ScoreAll(context.Background(), s, 0, actions)
	if time.Since(start) > 2*time.Second {
		t.Fatal("ScoreAll ignored the budget")
	}
	if len(got) != 1 {
		t.Fatalf("got %d scores, want 1", len(got))
	}
}

func TestSelfPlayWithPolicy(t *testing.T) {
	s := newGame(t, 4, 9)
	rng := rand.New(rand.NewSource(9))
	p := New(DefaultHeuristic(), Options{Temperature: 0.1, Workers: 2}, rng, nil)
	e := engine.NewTurnEngine(s, p, LookaheadTieBreak{Eval: DefaultHeuristic()}, nil)
	ctx := context.Background()
	for i := 0; i < 3000 && !e.State.Over; i++ {
		_, err := e.PlayTurn(ctx)
		if errors.Is(err, engine.ErrNoLegalMove) {
			if _, err := e.Pass(); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("turn %d: %v", i, err)
		}
		if !e.State.Conserved() {
			t.Fatalf("turn %d: gems not conserved", i)
		}
	}
	if !e.State.Over {
		t.Fatal("heuristic self-play did not finish")
	}
}
