package engine

import (
	"reflect"
	"testing"

	"go-splendor/entities"

	"golang.org/x/exp/rand"
)

func TestNewGame(t *testing.T) {
	tests := []struct {
		players int
		perGem  int
	}{
		{players: 2, perGem: 4},
		{players: 3, perGem: 5},
		{players: 4, perGem: 7},
	}
	for _, tt := range tests {
		s := newTestGame(t, tt.players, 11)
		for _, c := range entities.CostColors {
			if s.Bank.Count(c) != tt.perGem {
				t.Fatalf("%d players: %s = %d, want %d", tt.players, c, s.Bank.Count(c), tt.perGem)
			}
		}
		if s.Bank.Count(entities.Gold) != DefaultWildcards {
			t.Fatalf("gold = %d", s.Bank.Count(entities.Gold))
		}
		if len(s.Objectives) != tt.players+1 {
			t.Fatalf("objectives = %d, want %d", len(s.Objectives), tt.players+1)
		}
		for tier := 1; tier <= NumTiers; tier++ {
			for slot := 0; slot < VisibleSlots; slot++ {
				if _, err := s.Market.Visible(tier, slot); err != nil {
					t.Fatalf("tier %d slot %d: %v", tier, slot, err)
				}
			}
			if s.Market.DeckSize(tier) != 20-VisibleSlots {
				t.Fatalf("tier %d deck = %d", tier, s.Market.DeckSize(tier))
			}
		}
		if s.TriggeredBy != -1 || s.PointTarget != DefaultPointTarget {
			t.Fatalf("bad defaults: %+v", s)
		}
	}
}

func TestNewGameRejects(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	cases := [][]string{
		{"solo"},
		{"a", "b", "c", "d", "e"},
		{"a", "a"},
		{"a", ""},
	}
	for _, ids := range cases {
		if _, err := NewGame(Setup{PlayerIDs: ids, Decks: syntheticDecks(5)}, rng); err == nil {
			t.Fatalf("NewGame(%v) should fail", ids)
		}
	}
}

func TestNewGameShuffleIsSeeded(t *testing.T) {
	a := newTestGame(t, 2, 8)
	b := newTestGame(t, 2, 8)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("same seed produced different setups")
	}
}
