package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go-splendor/dto"
	"go-splendor/engine"
	"go-splendor/entities"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var (
	ErrRoomFull       = errors.New("房间已满")
	ErrGameNotStarted = errors.New("游戏尚未开始")
	ErrGameRunning    = errors.New("游戏进行中")
)

// Room 一个房间的座位和当前对局，所有字段由 mu 保护
type Room struct {
	ID         string
	MaxPlayers int
	AIPlayers  int
	Owner      string

	mu         sync.Mutex
	seats      []dto.PlayerConn
	ready      map[string]bool
	engine     *engine.TurnEngine
	round      int
	lastAction string
}

func newRoom(id string, maxPlayers, aiPlayers int, owner string) *Room {
	r := &Room{
		ID:         id,
		MaxPlayers: maxPlayers,
		AIPlayers:  aiPlayers,
		Owner:      owner,
		ready:      make(map[string]bool),
	}
	for i := 1; i <= aiPlayers; i++ {
		aiID := AIPlayerID(i)
		r.seats = append(r.seats, dto.PlayerConn{
			PlayerID: aiID,
			Conn:     &VirtualConn{PlayerID: aiID, RoomID: r.ID},
			Online:   true,
		})
		r.ready[aiID] = true
	}
	return r
}

func (r *Room) seat(playerID string) int {
	for i, pc := range r.seats {
		if pc.PlayerID == playerID {
			return i
		}
	}
	return -1
}

// join 重连时替换连接，新玩家占空位
func (r *Room) join(playerID string, conn dto.ConnInterface) (reconnected bool, err error) {
	if i := r.seat(playerID); i >= 0 {
		r.seats[i].Conn = conn
		r.seats[i].Online = true
		return true, nil
	}
	if len(r.seats) >= r.MaxPlayers {
		return false, ErrRoomFull
	}
	if r.playing() {
		return false, ErrGameRunning
	}
	r.seats = append(r.seats, dto.PlayerConn{PlayerID: playerID, Conn: conn, Online: true})
	return false, nil
}

// leave 对局中只标记离线，保留座位等重连
func (r *Room) leave(playerID string, conn dto.ConnInterface) {
	i := r.seat(playerID)
	if i < 0 || r.seats[i].Conn != conn {
		return
	}
	if r.playing() {
		r.seats[i].Online = false
		return
	}
	r.seats = append(r.seats[:i], r.seats[i+1:]...)
	delete(r.ready, playerID)
}

func (r *Room) full() bool { return len(r.seats) == r.MaxPlayers }

func (r *Room) playing() bool { return r.engine != nil && !r.engine.State.Over }

func (r *Room) allReady() bool {
	if !r.full() {
		return false
	}
	for _, pc := range r.seats {
		if !r.ready[pc.PlayerID] {
			return false
		}
	}
	return true
}

func (r *Room) playerIDs() []string {
	ids := make([]string, len(r.seats))
	for i, pc := range r.seats {
		ids[i] = pc.PlayerID
	}
	return ids
}

func (r *Room) status() entities.RoomStatus {
	switch {
	case r.engine == nil:
		return entities.RoomStatusWaiting
	case r.engine.State.Over:
		return entities.RoomStatusEnd
	case r.engine.State.FinalRound:
		return entities.RoomStatusLastTurn
	}
	return entities.RoomStatusPlaying
}

func (r *Room) syncPayload(viewer string) dto.SyncPayload {
	p := dto.SyncPayload{
		RoomID:     r.ID,
		MaxPlayers: r.MaxPlayers,
		Status:     string(r.status()),
		Round:      r.round,
		LastAction: r.lastAction,
	}
	for _, pc := range r.seats {
		p.Seats = append(p.Seats, dto.SeatView{
			PlayerID: pc.PlayerID,
			Online:   pc.Online,
			Ready:    r.ready[pc.PlayerID],
			AI:       IsAIPlayer(pc.PlayerID),
		})
	}
	if r.engine != nil {
		view := dto.NewGameView(r.engine.State, viewer)
		p.Game = &view
	}
	return p
}

type outgoing struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

func buildMessage(msgType string, payload interface{}) []byte {
	b, _ := json.Marshal(outgoing{Type: msgType, Payload: payload})
	return b
}

func errorMessage(err error) []byte {
	return buildMessage(dto.MsgError, map[string]string{"message": err.Error()})
}

// send 写失败的连接标记离线
func (r *Room) send(i int, msg []byte, log *zap.Logger) {
	pc := &r.seats[i]
	if !pc.Online || pc.Conn == nil {
		return
	}
	if err := pc.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		log.Warn("推送失败，标记离线", zap.String("roomID", r.ID), zap.String("playerID", pc.PlayerID), zap.Error(err))
		pc.Conn.Close()
		pc.Online = false
	}
}

func (r *Room) sendTo(playerID string, msg []byte, log *zap.Logger) {
	if i := r.seat(playerID); i >= 0 {
		r.send(i, msg, log)
	}
}

// broadcast 每个座位收到自己视角的快照
func (r *Room) broadcast(log *zap.Logger) {
	for i, pc := range r.seats {
		if IsAIPlayer(pc.PlayerID) {
			continue
		}
		r.send(i, buildMessage(dto.MsgSync, r.syncPayload(pc.PlayerID)), log)
	}
}

func describeResult(res engine.TurnResult) string {
	switch {
	case res.Passed:
		return fmt.Sprintf("%s 无可用动作，跳过", res.PlayerID)
	case res.Action == nil:
		return fmt.Sprintf("%s 无可用动作，游戏结束", res.PlayerID)
	}
	s := fmt.Sprintf("%s %s", res.PlayerID, res.Action)
	if res.Objective != nil {
		s += fmt.Sprintf("，获得贵族 %s", res.Objective.ID)
	}
	return s
}
