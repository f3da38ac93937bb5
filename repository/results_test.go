package repository

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"go-splendor/engine"
)

func openTestStore(t *testing.T) *ResultStore {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "results.db")
	s, err := OpenResultStore(context.Background(), "sqlite", dsn, nil)
	if err != nil {
		t.Fatalf("OpenResultStore: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func finishedGame(id string, points ...int) (*engine.GameState, []engine.Standing) {
	s := &engine.GameState{ID: id, Turn: 30}
	for i, p := range points {
		pl := engine.NewPlayer(fmt.Sprintf("p%d", i+1))
		pl.Points = p
		s.Players = append(s.Players, pl)
	}
	return s, engine.Ranking(s)
}

func TestResultStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	s, standings := finishedGame("g1", 12, 16)
	if err := store.SaveStandings(ctx, "room1", s, standings); err != nil {
		t.Fatalf("SaveStandings: %v", err)
	}
	rows, err := store.Results(ctx, "room1")
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].PlayerID != "p2" || rows[0].Rank != 1 || rows[0].Points != 16 || rows[0].Turns != 30 {
		t.Fatalf("first row = %+v", rows[0])
	}
	if other, _ := store.Results(ctx, "room2"); len(other) != 0 {
		t.Fatalf("room2 rows = %v", other)
	}

	// 同一局不能写两次
	if err := store.SaveStandings(ctx, "room1", s, standings); err == nil {
		t.Fatal("duplicate save should fail")
	}
}

func TestResultObserverAndWins(t *testing.T) {
	store := openTestStore(t)
	obs := store.Observer("room9")
	for i := 0; i < 3; i++ {
		s, standings := finishedGame(fmt.Sprintf("g%d", i), 15, 10+i*3)
		obs.OnGameEnd(s, standings)
	}
	wins, err := store.Wins(context.Background())
	if err != nil {
		t.Fatalf("Wins: %v", err)
	}
	// 第三局 p2 16 分胜出，其余 p1 胜
	if wins["p1"] != 2 || wins["p2"] != 1 {
		t.Fatalf("wins = %v", wins)
	}
}
