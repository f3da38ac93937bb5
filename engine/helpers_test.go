package engine

import (
	"context"
	"fmt"
	"testing"

	"go-splendor/entities"

	"golang.org/x/exp/rand"
)

func gems(m map[entities.Color]int) entities.Gems {
	var g entities.Gems
	for c, v := range m {
		g[c] = v
	}
	return g
}

// syntheticDecks 每个等级生成 n 张牌，费用按颜色轮转
func syntheticDecks(n int) [NumTiers][]entities.Card {
	var decks [NumTiers][]entities.Card
	id := 1
	for t := 1; t <= NumTiers; t++ {
		for i := 0; i < n; i++ {
			color := entities.CostColors[i%entities.NumCostColors]
			var cost entities.Gems
			cost[entities.CostColors[(i+1)%entities.NumCostColors]] = t
			cost[entities.CostColors[(i+2)%entities.NumCostColors]] = t - 1 + i%2
			decks[t-1] = append(decks[t-1], entities.Card{
				ID:     id,
				Tier:   t,
				Color:  color,
				Points: (t - 1) * 2,
				Cost:   cost,
			})
			id++
		}
	}
	return decks
}

func syntheticObjectives() []entities.Objective {
	var out []entities.Objective
	for i, c := range entities.CostColors {
		next := entities.CostColors[(i+1)%entities.NumCostColors]
		var req entities.Gems
		req[c] = 3
		req[next] = 3
		out = append(out, entities.Objective{ID: fmt.Sprintf("N%d", i+1), Requirement: req, Points: 3})
	}
	return out
}

func newTestGame(t *testing.T, players int, seed uint64) *GameState {
	t.Helper()
	ids := make([]string, players)
	for i := range ids {
		ids[i] = fmt.Sprintf("p%d", i+1)
	}
	s, err := NewGame(Setup{
		GameID:     "test",
		PlayerIDs:  ids,
		Decks:      syntheticDecks(20),
		Objectives: syntheticObjectives(),
	}, rand.New(rand.NewSource(seed)))
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return s
}

// emptyGame 没有牌和贵族的最小局面，测试里手动摆
func emptyGame(players int) *GameState {
	s := &GameState{
		ID:          "fixture",
		Bank:        NewGemBank(gems(map[entities.Color]int{entities.White: 7, entities.Blue: 7, entities.Green: 7, entities.Red: 7, entities.Black: 7, entities.Gold: 5})),
		Market:      NewMarket([NumTiers][]entities.Card{}, VisibleSlots),
		PointTarget: DefaultPointTarget,
		TriggeredBy: -1,
	}
	for i := 0; i < players; i++ {
		s.Players = append(s.Players, NewPlayer(fmt.Sprintf("p%d", i+1)))
	}
	return s
}

// giveGems 从池子转给玩家，保持守恒
func giveGems(t *testing.T, s *GameState, player int, g entities.Gems) {
	t.Helper()
	if err := s.Bank.Withdraw(g); err != nil {
		t.Fatalf("withdraw %s: %v", g, err)
	}
	s.Players[player].Gems = s.Players[player].Gems.Add(g)
}

type randomSelector struct{ rng *rand.Rand }

func (r randomSelector) Select(_ context.Context, _ *GameState, _ int, actions []Action) (Action, error) {
	return actions[r.rng.Intn(len(actions))], nil
}

// greedySelector 能买就买分最高的，否则拿宝石
type greedySelector struct{}

func (greedySelector) Select(_ context.Context, s *GameState, player int, actions []Action) (Action, error) {
	best, bestPts := actions[len(actions)-1], -1
	for _, a := range actions {
		var card entities.Card
		switch act := a.(type) {
		case PurchaseAvailable:
			card, _ = s.Market.Visible(act.Tier, act.Slot)
		case PurchaseReserved:
			card = s.Players[player].Reserved[act.Index]
		default:
			continue
		}
		if card.Points > bestPts {
			best, bestPts = a, card.Points
		}
	}
	return best, nil
}

// placeCard 直接把牌摆到明牌位
func placeCard(s *GameState, tier, slot int, card entities.Card) {
	row := &s.Market.Tiers[tier-1]
	for len(row.Slots) <= slot {
		row.Slots = append(row.Slots, nil)
	}
	c := card
	row.Slots[slot] = &c
}

func checkInvariants(t *testing.T, s *GameState) {
	t.Helper()
	if !s.Conserved() {
		t.Fatalf("turn %d: gems not conserved: totals %s minted %s", s.Turn, s.GemTotals(), s.Bank.Minted)
	}
	if !s.Bank.Gems.NonNegative() {
		t.Fatalf("turn %d: negative bank %s", s.Turn, s.Bank.Gems)
	}
	for _, p := range s.Players {
		if !p.Gems.NonNegative() {
			t.Fatalf("turn %d: %s holds negative gems %s", s.Turn, p.ID, p.Gems)
		}
		if p.GemCount() > MaxGems {
			t.Fatalf("turn %d: %s holds %d gems", s.Turn, p.ID, p.GemCount())
		}
		if len(p.Reserved) > MaxReserved {
			t.Fatalf("turn %d: %s reserved %d cards", s.Turn, p.ID, len(p.Reserved))
		}
	}
}
