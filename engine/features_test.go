package engine

import (
	"testing"

	"go-splendor/entities"
)

func TestFeaturesLength(t *testing.T) {
	for n := MinPlayers; n <= MaxPlayers; n++ {
		s := newTestGame(t, n, 3)
		for p := 0; p < n; p++ {
			if got := len(Features(s, p)); got != FeatureLen {
				t.Fatalf("%d players, seat %d: len = %d, want %d", n, p, got, FeatureLen)
			}
		}
	}
}

func TestFeaturesHideOpponentGems(t *testing.T) {
	s := newTestGame(t, 3, 5)
	before := Features(s, 0)

	giveGems(t, s, 1, gems(map[entities.Color]int{entities.Black: 3}))
	after := Features(s, 0)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("opponent gems leaked at feature %d", i)
		}
	}

	s.Players[1].Reserved = append(s.Players[1].Reserved, entities.Card{ID: 999, Tier: 3})
	changed := false
	after = Features(s, 0)
	for i := range before {
		if before[i] != after[i] {
			changed = true
		}
	}
	if !changed {
		t.Fatal("reserved count should be visible")
	}
}

func TestFeaturesOwnView(t *testing.T) {
	s := newTestGame(t, 2, 1)
	giveGems(t, s, 1, gems(map[entities.Color]int{entities.Blue: 2, entities.Gold: 1}))
	v := Features(s, 1)
	if v[entities.Blue] != 2 || v[entities.Gold] != 1 {
		t.Fatalf("own gems = %v", v[:entities.NumColors])
	}
}
