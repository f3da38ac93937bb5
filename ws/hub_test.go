package ws

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"go-splendor/config"
	"go-splendor/dto"
	"go-splendor/engine"
	"go-splendor/entities"
	"go-splendor/match"
)

type fakeConn struct {
	mu     sync.Mutex
	msgs   [][]byte
	closed bool
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, append([]byte(nil), data...))
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

type received struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// last 最近一条指定类型的消息
func (f *fakeConn) last(t *testing.T, msgType string) received {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.msgs) - 1; i >= 0; i-- {
		var m received
		if err := json.Unmarshal(f.msgs[i], &m); err != nil {
			t.Fatalf("bad message %s: %v", f.msgs[i], err)
		}
		if m.Type == msgType {
			return m
		}
	}
	t.Fatalf("no %q message among %d", msgType, len(f.msgs))
	return received{}
}

func (f *fakeConn) sync(t *testing.T) dto.SyncPayload {
	t.Helper()
	var p dto.SyncPayload
	if err := json.Unmarshal(f.last(t, dto.MsgSync).Payload, &p); err != nil {
		t.Fatalf("sync payload: %v", err)
	}
	return p
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	cfg := config.Default()
	cfg.Game.Seed = 42
	cfg.Policy.Temperature = 0.1
	cfg.Policy.Budget = 0
	f, err := match.NewFactory(cfg.Game, cfg.Policy, nil)
	if err != nil {
		t.Fatalf("NewFactory: %v", err)
	}
	h, err := NewHub(f, nil)
	if err != nil {
		t.Fatalf("NewHub: %v", err)
	}
	return h
}

func send(t *testing.T, h *Hub, roomID, playerID string, msg dto.Message) error {
	t.Helper()
	raw, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return h.HandleMessage(context.Background(), roomID, playerID, raw)
}

func currentPlayer(r *Room) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.engine.State
	return s.Players[s.Current].ID
}

func TestCreateRoomValidation(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()
	if _, err := h.CreateRoom(ctx, "r1", 5, 0, "u"); err == nil {
		t.Fatalf("5 players accepted")
	}
	if _, err := h.CreateRoom(ctx, "r1", 2, 2, "u"); err == nil {
		t.Fatalf("room without human seat accepted")
	}
	if _, err := h.CreateRoom(ctx, "r1", 3, 1, "u"); err != nil {
		t.Fatalf("CreateRoom: %v", err)
	}
	if _, err := h.CreateRoom(ctx, "r1", 3, 1, "u"); err == nil {
		t.Fatalf("duplicate room accepted")
	}
	rooms := h.Rooms()
	if len(rooms) != 1 || rooms[0].Players != 1 || rooms[0].Status != string(entities.RoomStatusWaiting) {
		t.Fatalf("rooms = %+v", rooms)
	}
}

func TestJoinFullAndReconnect(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()
	if _, err := h.CreateRoom(ctx, "r1", 2, 0, "alice"); err != nil {
		t.Fatal(err)
	}
	alice, bob, carol := &fakeConn{}, &fakeConn{}, &fakeConn{}
	if err := h.Join(ctx, "r1", "alice", alice); err != nil {
		t.Fatalf("alice: %v", err)
	}
	if err := h.Join(ctx, "r1", "bob", bob); err != nil {
		t.Fatalf("bob: %v", err)
	}
	if err := h.Join(ctx, "r1", "carol", carol); !errors.Is(err, ErrRoomFull) {
		t.Fatalf("carol err = %v, want ErrRoomFull", err)
	}
	if err := h.Join(ctx, "missing", "carol", carol); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("missing room err = %v", err)
	}
	if err := h.Join(ctx, "r1", "ai_9", carol); err == nil {
		t.Fatalf("ai_ prefix accepted for a human")
	}

	var init struct {
		PlayerID string `json:"playerID"`
	}
	if err := json.Unmarshal(alice.last(t, dto.MsgInit).Payload, &init); err != nil || init.PlayerID != "alice" {
		t.Fatalf("init = %+v, %v", init, err)
	}
	if p := alice.sync(t); len(p.Seats) != 2 || p.Game != nil {
		t.Fatalf("sync before start = %+v", p)
	}

	again := &fakeConn{}
	if err := h.Join(ctx, "r1", "bob", again); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	again.last(t, dto.MsgInit)
}

func TestReadyStartsGameAndAIPlays(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()
	r, err := h.CreateRoom(ctx, "r1", 2, 1, "alice")
	if err != nil {
		t.Fatal(err)
	}
	alice := &fakeConn{}
	if err := h.Join(ctx, "r1", "alice", alice); err != nil {
		t.Fatal(err)
	}
	if err := send(t, h, "r1", "alice", dto.Message{Type: dto.MsgReady}); err != nil {
		t.Fatalf("ready: %v", err)
	}

	// ai_1 坐在第一个座位，先手已经同步走完
	if got := currentPlayer(r); got != "alice" {
		t.Fatalf("current = %s, want alice", got)
	}
	p := alice.sync(t)
	if p.Game == nil || p.Game.Turn != 1 || p.Status != string(entities.RoomStatusPlaying) {
		t.Fatalf("sync after start = %+v", p)
	}
	if len(p.Game.LegalActions) == 0 {
		t.Fatalf("no legal actions offered to alice")
	}
	if p.LastAction == "" {
		t.Fatalf("last action not reported")
	}
	for _, pv := range p.Game.Players {
		if pv.ID == "ai_1" && pv.Reserved != nil {
			t.Fatalf("opponent reserved cards leaked")
		}
	}

	if err := send(t, h, "r1", "alice", p.Game.LegalActions[0]); err != nil {
		t.Fatalf("submit %+v: %v", p.Game.LegalActions[0], err)
	}
	if got := currentPlayer(r); got != "alice" {
		t.Fatalf("current = %s after AI reply", got)
	}
	if p := alice.sync(t); p.Game.Turn != 3 {
		t.Fatalf("turn = %d, want 3", p.Game.Turn)
	}
	r.mu.Lock()
	conserved := r.engine.State.Conserved()
	r.mu.Unlock()
	if !conserved {
		t.Fatalf("gems not conserved")
	}
}

// reserveOffBoard 总是选一个不存在的牌堆
type reserveOffBoard struct{}

func (reserveOffBoard) Select(context.Context, *engine.GameState, int, []engine.Action) (engine.Action, error) {
	return engine.ReserveBoard{Tier: 9}, nil
}

func TestIllegalAIMoveHaltsRoom(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()
	r, err := h.CreateRoom(ctx, "r1", 2, 1, "alice")
	if err != nil {
		t.Fatal(err)
	}
	alice := &fakeConn{}
	if err := h.Join(ctx, "r1", "alice", alice); err != nil {
		t.Fatal(err)
	}
	if err := send(t, h, "r1", "alice", dto.Message{Type: dto.MsgReady}); err != nil {
		t.Fatal(err)
	}
	r.mu.Lock()
	r.engine.Selector = reserveOffBoard{}
	r.mu.Unlock()

	p := alice.sync(t)
	if err := send(t, h, "r1", "alice", p.Game.LegalActions[0]); err != nil {
		t.Fatalf("submit: %v", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.engine.State
	if s.Players[s.Current].ID != "ai_1" || s.Turn != 2 || s.Passes != 0 {
		t.Fatalf("current=%s turn=%d passes=%d, want ai_1 stuck on turn 2", s.Players[s.Current].ID, s.Turn, s.Passes)
	}
	if !strings.HasPrefix(r.lastAction, "alice") {
		t.Fatalf("last action = %q", r.lastAction)
	}
}

func TestRejectedMessages(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()
	if _, err := h.CreateRoom(ctx, "r1", 2, 0, "alice"); err != nil {
		t.Fatal(err)
	}
	alice, bob := &fakeConn{}, &fakeConn{}
	if err := h.Join(ctx, "r1", "alice", alice); err != nil {
		t.Fatal(err)
	}
	if err := h.Join(ctx, "r1", "bob", bob); err != nil {
		t.Fatal(err)
	}

	take := dto.Message{Type: dto.MsgTakeGems, Payload: map[string]interface{}{"gems": map[string]interface{}{"Red": 1, "Blue": 1, "Green": 1}}}
	if err := send(t, h, "r1", "alice", take); !errors.Is(err, ErrGameNotStarted) {
		t.Fatalf("before start err = %v", err)
	}
	alice.last(t, dto.MsgError)

	for _, id := range []string{"alice", "bob"} {
		if err := send(t, h, "r1", id, dto.Message{Type: dto.MsgReady}); err != nil {
			t.Fatalf("ready %s: %v", id, err)
		}
	}
	if err := send(t, h, "r1", "bob", take); !errors.Is(err, engine.ErrNotYourTurn) {
		t.Fatalf("out of turn err = %v", err)
	}

	bad := [][]byte{
		[]byte(`not json`),
		[]byte(`{"type":"fly"}`),
		[]byte(`{"type":"take_gems","payload":{"gems":{"Gold":1}}}`),
		[]byte(`{"type":"take_gems","payload":{"gems":{"Red":3}}}`),
		[]byte(`{"type":"purchase_card","payload":{"tier":4,"slot":0}}`),
		[]byte(`{"type":"reserve_blind"}`),
	}
	for _, raw := range bad {
		if err := h.HandleMessage(ctx, "r1", "alice", raw); err == nil {
			t.Errorf("%s accepted", raw)
		}
	}
	if err := h.HandleMessage(ctx, "r1", "mallory", []byte(`{"type":"ready"}`)); err == nil {
		t.Fatalf("message from outsider accepted")
	}
	if err := send(t, h, "r1", "alice", dto.Message{Type: dto.MsgRestartGame}); !errors.Is(err, ErrGameRunning) {
		t.Fatalf("restart mid-game err = %v", err)
	}

	if err := send(t, h, "r1", "alice", take); err != nil {
		t.Fatalf("legal take: %v", err)
	}
	if got := bob.sync(t); got.Game.CurrentPlayer != "bob" || len(got.Game.LegalActions) == 0 {
		t.Fatalf("bob view = %+v", got.Game)
	}
}

func TestRestartAfterGameOver(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()
	r, err := h.CreateRoom(ctx, "r1", 2, 1, "alice")
	if err != nil {
		t.Fatal(err)
	}
	alice := &fakeConn{}
	if err := h.Join(ctx, "r1", "alice", alice); err != nil {
		t.Fatal(err)
	}
	if err := send(t, h, "r1", "alice", dto.Message{Type: dto.MsgReady}); err != nil {
		t.Fatal(err)
	}
	r.mu.Lock()
	r.engine.End()
	firstID := r.engine.State.ID
	r.mu.Unlock()

	if err := send(t, h, "r1", "alice", dto.Message{Type: dto.MsgRestartGame}); err != nil {
		t.Fatalf("restart: %v", err)
	}
	p := alice.sync(t)
	if p.Round != 2 || p.Game == nil || p.Game.Over || p.Game.GameID == firstID {
		t.Fatalf("after restart round=%d game=%+v", p.Round, p.Game)
	}
}

func TestLeaveAndRemoveRoom(t *testing.T) {
	h := newTestHub(t)
	ctx := context.Background()
	if _, err := h.CreateRoom(ctx, "r1", 2, 0, "alice"); err != nil {
		t.Fatal(err)
	}
	alice := &fakeConn{}
	if err := h.Join(ctx, "r1", "alice", alice); err != nil {
		t.Fatal(err)
	}
	h.Leave(ctx, "r1", "alice", alice)
	if rooms := h.Rooms(); rooms[0].Players != 0 {
		t.Fatalf("seat not freed before start: %+v", rooms)
	}

	if err := h.Join(ctx, "r1", "alice", alice); err != nil {
		t.Fatal(err)
	}
	if err := h.RemoveRoom(ctx, "r1"); err != nil {
		t.Fatalf("RemoveRoom: %v", err)
	}
	if !alice.closed {
		t.Fatalf("connection not closed")
	}
	if err := h.RemoveRoom(ctx, "r1"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("second remove err = %v", err)
	}
}

func TestDecodeAction(t *testing.T) {
	cases := []struct {
		msgType string
		payload map[string]interface{}
		want    engine.Action
	}{
		{dto.MsgPurchaseCard, map[string]interface{}{"tier": 2.0, "slot": 3.0}, engine.PurchaseAvailable{Tier: 2, Slot: 3}},
		{dto.MsgPurchaseReserved, map[string]interface{}{"index": 1.0}, engine.PurchaseReserved{Index: 1}},
		{dto.MsgReserveCard, map[string]interface{}{"tier": 1.0, "slot": 0.0}, engine.ReserveBoard{Tier: 1, Slot: 0}},
		{dto.MsgReserveBlind, map[string]interface{}{"tier": 3.0}, engine.ReserveBlind{Tier: 3}},
		{dto.MsgTakeGems, map[string]interface{}{"gems": map[string]interface{}{"Red": 2.0}}, engine.TakeGems{Gems: entities.Gems{entities.Red: 2}}},
	}
	for _, c := range cases {
		got, err := decodeAction(c.msgType, c.payload)
		if err != nil {
			t.Fatalf("%s: %v", c.msgType, err)
		}
		if !engine.SameAction(got, c.want) {
			t.Fatalf("%s: got %v want %v", c.msgType, got, c.want)
		}
	}
	if _, err := decodeAction(dto.MsgPurchaseCard, map[string]interface{}{"tier": 1.0, "slot": 0.0, "extra": 1.0}); err == nil {
		t.Fatalf("unused field accepted")
	}

	// 动作编码和解码互逆
	for _, a := range cases {
		msg := dto.ActionMessage(a.want)
		raw, _ := json.Marshal(msg)
		var back dto.Message
		if err := json.Unmarshal(raw, &back); err != nil {
			t.Fatal(err)
		}
		got, err := decodeAction(back.Type, back.Payload)
		if err != nil || !engine.SameAction(got, a.want) {
			t.Fatalf("round trip %v: got %v, %v", a.want, got, err)
		}
	}
}
