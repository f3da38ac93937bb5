package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"go-splendor/config"
	"go-splendor/corpus"
	"go-splendor/dto"
	"go-splendor/match"
	"go-splendor/policy"
	"go-splendor/repository"
	"go-splendor/ws"
)

func newTestFactory(t *testing.T) *match.Factory {
	t.Helper()
	cfg := config.Default()
	cfg.Game.Seed = 7
	cfg.Policy.Budget = 0
	cfg.Policy.Schedule = policy.Schedule{Start: 0.1, End: 0.1, Games: 10, Decay: policy.DecayLinear}
	f, err := match.NewFactory(cfg.Game, cfg.Policy, nil)
	if err != nil {
		t.Fatalf("NewFactory: %v", err)
	}
	return f
}

func TestRoomServiceLifecycle(t *testing.T) {
	hub, err := ws.NewHub(newTestFactory(t), nil)
	if err != nil {
		t.Fatal(err)
	}
	svc := &RoomService{Hub: hub}
	ctx := context.Background()

	id, err := svc.CreateRoom(ctx, dto.CreateRoomRequest{MaxPlayers: 3, AIPlayers: 2, UserID: "alice"})
	if err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if len(id) != 8 {
		t.Fatalf("room id %q", id)
	}
	if _, err := svc.CreateRoom(ctx, dto.CreateRoomRequest{MaxPlayers: 2, AIPlayers: 2}); err == nil {
		t.Fatalf("all-AI room accepted")
	}

	info, err := svc.GetRoomInfo(ctx, id)
	if err != nil {
		t.Fatalf("GetRoomInfo: %v", err)
	}
	if info.MaxPlayers != 3 || info.AIPlayers != 2 || info.Players != 2 || info.Status != "waiting" {
		t.Fatalf("info = %+v", info)
	}

	if err := svc.DeleteRoom(ctx, dto.DeleteRoomRequest{RoomID: id}); err != nil {
		t.Fatalf("DeleteRoom: %v", err)
	}
	if _, err := svc.GetRoomInfo(ctx, id); !errors.Is(err, ws.ErrRoomNotFound) {
		t.Fatalf("after delete err = %v", err)
	}
	if _, err := svc.GetResults(ctx, id); err == nil {
		t.Fatalf("results without store")
	}
}

type memSink struct {
	mu      sync.Mutex
	records []corpus.Record
}

func (m *memSink) Write(_ context.Context, records []corpus.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, records...)
	return nil
}

func (m *memSink) Close() error { return nil }

func TestSelfPlay(t *testing.T) {
	results, err := repository.OpenResultStore(context.Background(), "sqlite", "file:"+filepath.Join(t.TempDir(), "results.db"), nil)
	if err != nil {
		t.Fatalf("OpenResultStore: %v", err)
	}
	t.Cleanup(func() { _ = results.Close() })

	sink := &memSink{}
	rec := corpus.NewRecorder(nil, time.Second, sink)
	svc := &SelfPlayService{
		Factory:  newTestFactory(t),
		Results:  results,
		Recorder: rec,
		NoMove:   config.NoMovePass,
		MaxTurns: 2000,
		Workers:  2,
	}
	resp, err := svc.Run(context.Background(), dto.SelfPlayRequest{Games: 3, Players: 3, Seed: 11})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if resp.Games != 3 || resp.Turns == 0 {
		t.Fatalf("resp = %+v", resp)
	}
	wins := 0
	for id, n := range resp.Wins {
		if !ws.IsAIPlayer(id) {
			t.Fatalf("unexpected winner %s", id)
		}
		wins += n
	}
	if wins != 3 {
		t.Fatalf("wins = %v", resp.Wins)
	}
	// 跳过的回合不产生语料
	if resp.Records != len(sink.records) || resp.Records != resp.Steps || resp.Steps > resp.Turns {
		t.Fatalf("records = %d, sink = %d, steps = %d, turns = %d", resp.Records, len(sink.records), resp.Steps, resp.Turns)
	}

	rows, err := results.Results(context.Background(), SelfPlayRoomID)
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if len(rows) != 9 {
		t.Fatalf("result rows = %d, want 9", len(rows))
	}

	board, err := (&RoomService{Results: results}).GetWins(context.Background())
	if err != nil {
		t.Fatalf("GetWins: %v", err)
	}
	total := 0
	for _, n := range board {
		total += n
	}
	if total != 3 {
		t.Fatalf("leaderboard = %v", board)
	}

	// 同一个 seed 再跑一次，gameID 不能和上一批冲突
	if _, err := svc.Run(context.Background(), dto.SelfPlayRequest{Games: 3, Players: 3, Seed: 11}); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	rows, err = results.Results(context.Background(), SelfPlayRoomID)
	if err != nil {
		t.Fatalf("Results: %v", err)
	}
	if len(rows) != 18 {
		t.Fatalf("result rows after second run = %d, want 18", len(rows))
	}
	ids := make(map[string]bool)
	for _, row := range rows {
		ids[row.GameID] = true
	}
	if len(ids) != 6 {
		t.Fatalf("distinct games = %d, want 6", len(ids))
	}
}

func TestSelfPlayRejectsBadRequest(t *testing.T) {
	svc := &SelfPlayService{Factory: newTestFactory(t)}
	if _, err := svc.Run(context.Background(), dto.SelfPlayRequest{Games: 1, Players: 5}); err == nil {
		t.Fatalf("5 players accepted")
	}
	if _, err := svc.Run(context.Background(), dto.SelfPlayRequest{Games: 0, Players: 2}); err == nil {
		t.Fatalf("0 games accepted")
	}
}
