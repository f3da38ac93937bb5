package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go-splendor/config"
	"go-splendor/corpus"
	"go-splendor/dto"
	"go-splendor/engine"
	"go-splendor/entities"
	"go-splendor/match"
	"go-splendor/repository"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

var ErrRoomNotFound = errors.New("房间不存在")

// Hub 管理所有房间的连接、对局和 AI 座位。
// Store/Results/Recorder 为 nil 时对应功能关闭。
type Hub struct {
	Factory  *match.Factory
	Store    *repository.RoomStore
	Results  *repository.ResultStore
	Recorder *corpus.Recorder
	NoMove   config.NoMovePolicy
	AIDelay  time.Duration // 0 时 AI 在当前请求里同步走完
	Log      *zap.Logger

	schema *jsonschema.Schema
	mu     sync.Mutex
	rooms  map[string]*Room
}

func NewHub(f *match.Factory, log *zap.Logger) (*Hub, error) {
	if log == nil {
		log = zap.NewNop()
	}
	schema, err := compileMessageSchema()
	if err != nil {
		return nil, fmt.Errorf("消息 schema 编译失败: %w", err)
	}
	return &Hub{
		Factory: f,
		NoMove:  config.NoMovePass,
		Log:     log,
		schema:  schema,
		rooms:   make(map[string]*Room),
	}, nil
}

// CreateRoom 建房并占好 AI 座位
func (h *Hub) CreateRoom(ctx context.Context, roomID string, maxPlayers, aiPlayers int, owner string) (*Room, error) {
	if maxPlayers < engine.MinPlayers || maxPlayers > engine.MaxPlayers {
		return nil, fmt.Errorf("玩家人数必须在 %d 到 %d 之间", engine.MinPlayers, engine.MaxPlayers)
	}
	if aiPlayers < 0 || aiPlayers >= maxPlayers {
		return nil, fmt.Errorf("AI 座位数必须在 0 到 %d 之间", maxPlayers-1)
	}
	r := newRoom(roomID, maxPlayers, aiPlayers, owner)

	h.mu.Lock()
	if _, ok := h.rooms[roomID]; ok {
		h.mu.Unlock()
		return nil, fmt.Errorf("房间 %s 已存在", roomID)
	}
	h.rooms[roomID] = r
	h.mu.Unlock()

	if h.Store != nil {
		info := entities.RoomInfo{
			GameStatus: entities.RoomStatusWaiting,
			MaxPlayers: maxPlayers,
			AIPlayers:  aiPlayers,
			UserID:     owner,
		}
		if err := h.Store.SetRoomInfo(ctx, roomID, info); err != nil {
			h.mu.Lock()
			delete(h.rooms, roomID)
			h.mu.Unlock()
			return nil, err
		}
	}
	h.Log.Info("🏠 创建房间", zap.String("roomID", roomID), zap.Int("maxPlayers", maxPlayers), zap.Int("aiPlayers", aiPlayers))
	return r, nil
}

// Room 内存里没有时尝试从 Redis 恢复
func (h *Hub) Room(ctx context.Context, roomID string) (*Room, error) {
	h.mu.Lock()
	r, ok := h.rooms[roomID]
	h.mu.Unlock()
	if ok {
		return r, nil
	}
	if h.Store == nil {
		return nil, ErrRoomNotFound
	}
	r, err := h.restoreRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if existing, ok := h.rooms[roomID]; ok {
		return existing, nil
	}
	h.rooms[roomID] = r
	return r, nil
}

// restoreRoom 服务重启后按 roomInfo 和对局快照重建房间，真人座位等待重连
func (h *Hub) restoreRoom(ctx context.Context, roomID string) (*Room, error) {
	info, err := h.Store.GetRoomInfo(ctx, roomID)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	r := newRoom(roomID, info.MaxPlayers, info.AIPlayers, info.UserID)

	state, err := h.Store.LoadState(ctx, roomID)
	if errors.Is(err, repository.ErrRoomNotFound) {
		return r, nil
	}
	if err != nil {
		return nil, err
	}
	for _, p := range state.Players {
		if r.seat(p.ID) < 0 {
			r.seats = append(r.seats, dto.PlayerConn{PlayerID: p.ID})
		}
		r.ready[p.ID] = true
	}
	if last, err := h.Store.GetLastAction(ctx, roomID); err == nil && last != nil {
		r.lastAction = last.Detail
	}
	if i := strings.LastIndex(state.ID, "-"); i >= 0 {
		r.round, _ = strconv.Atoi(state.ID[i+1:])
	}
	h.attachEngine(r, state, h.Factory.Seed())
	h.Log.Info("♻️ 从快照恢复房间", zap.String("roomID", roomID), zap.String("gameID", state.ID), zap.Int("turn", state.Turn))
	return r, nil
}

// Rooms 内存中的房间快照
func (h *Hub) Rooms() []dto.RoomInfo {
	h.mu.Lock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.Unlock()

	out := make([]dto.RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		r.mu.Lock()
		out = append(out, dto.RoomInfo{
			RoomID:     r.ID,
			MaxPlayers: r.MaxPlayers,
			AIPlayers:  r.AIPlayers,
			Players:    len(r.seats),
			Status:     string(r.status()),
		})
		r.mu.Unlock()
	}
	return out
}

// RemoveRoom 关闭所有连接并删除房间数据
func (h *Hub) RemoveRoom(ctx context.Context, roomID string) error {
	h.mu.Lock()
	r, ok := h.rooms[roomID]
	delete(h.rooms, roomID)
	h.mu.Unlock()

	if ok {
		r.mu.Lock()
		for _, pc := range r.seats {
			if pc.Conn != nil {
				pc.Conn.Close()
			}
		}
		r.seats = nil
		r.engine = nil
		r.round++
		r.mu.Unlock()
	}
	if h.Store != nil {
		err := h.Store.DeleteRoom(ctx, roomID)
		if errors.Is(err, repository.ErrRoomNotFound) && ok {
			return nil
		}
		if errors.Is(err, repository.ErrRoomNotFound) {
			return ErrRoomNotFound
		}
		return err
	}
	if !ok {
		return ErrRoomNotFound
	}
	return nil
}

// Join 玩家入座或重连，成功后推送 init 和当前快照
func (h *Hub) Join(ctx context.Context, roomID, playerID string, conn dto.ConnInterface) error {
	if IsAIPlayer(playerID) {
		return fmt.Errorf("玩家 ID 不能以 ai_ 开头: %s", playerID)
	}
	r, err := h.Room(ctx, roomID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	reconnected, err := r.join(playerID, conn)
	if err != nil {
		return err
	}
	if reconnected {
		h.Log.Info("玩家重连成功", zap.String("roomID", roomID), zap.String("playerID", playerID))
	} else {
		h.Log.Info("玩家加入房间", zap.String("roomID", roomID), zap.String("playerID", playerID), zap.Int("players", len(r.seats)), zap.Int("maxPlayers", r.MaxPlayers))
	}
	if h.Store != nil {
		if err := h.Store.SetRoomStatus(ctx, roomID, r.full()); err != nil {
			h.Log.Error("❌ 设置房间状态失败", zap.String("roomID", roomID), zap.Error(err))
		}
	}
	r.sendTo(playerID, buildMessage(dto.MsgInit, map[string]string{"playerID": playerID}), h.Log)
	h.advance(ctx, r)
	r.broadcast(h.Log)
	return nil
}

// Leave 连接断开
func (h *Hub) Leave(ctx context.Context, roomID, playerID string, conn dto.ConnInterface) {
	h.mu.Lock()
	r, ok := h.rooms[roomID]
	h.mu.Unlock()
	if !ok {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.leave(playerID, conn)
	if h.Store != nil {
		if err := h.Store.SetRoomStatus(ctx, roomID, r.full()); err != nil {
			h.Log.Error("❌ 设置房间状态失败", zap.String("roomID", roomID), zap.Error(err))
		}
	}
	h.Log.Info("玩家离开房间", zap.String("roomID", roomID), zap.String("playerID", playerID))
	r.broadcast(h.Log)
}

// HandleMessage 处理一条客户端消息；出错时给发送者回 error 消息
func (h *Hub) HandleMessage(ctx context.Context, roomID, playerID string, raw []byte) error {
	h.mu.Lock()
	r, ok := h.rooms[roomID]
	h.mu.Unlock()
	if !ok {
		return ErrRoomNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	err := h.dispatch(ctx, r, playerID, raw)
	if err != nil {
		h.Log.Warn("⚠️ 消息处理失败", zap.String("roomID", roomID), zap.String("playerID", playerID), zap.Error(err))
		r.sendTo(playerID, errorMessage(err), h.Log)
		return err
	}
	h.advance(ctx, r)
	r.broadcast(h.Log)
	return nil
}

func (h *Hub) dispatch(ctx context.Context, r *Room, playerID string, raw []byte) error {
	if r.seat(playerID) < 0 {
		return fmt.Errorf("玩家 %s 不在房间 %s", playerID, r.ID)
	}
	msg, err := parseMessage(h.schema, raw)
	if err != nil {
		return err
	}
	handler, found := messageHandlers[msg.Type]
	if !found {
		return fmt.Errorf("未知的消息类型: %s", msg.Type)
	}
	return handler(h, ctx, r, playerID, msg.Payload)
}

// HandleWebSocket WebSocket 主入口（处理每个连接）
func (h *Hub) HandleWebSocket(c *gin.Context) {
	roomID := c.Query("roomID")
	playerID := c.Query("userID")
	if v, ok := c.Get("userID"); ok {
		playerID, _ = v.(string)
	}
	if roomID == "" || playerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少 roomID 或 userID"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Log.Error("WebSocket 升级失败", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx := c.Request.Context()
	pc := &dto.RealConn{Conn: conn}
	if err := h.Join(ctx, roomID, playerID, pc); err != nil {
		conn.WriteMessage(websocket.TextMessage, errorMessage(err))
		return
	}
	// 离开时清理资源
	defer h.Leave(context.Background(), roomID, playerID, pc)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			h.Log.Debug("读取消息失败", zap.String("playerID", playerID), zap.Error(err))
			return
		}
		h.HandleMessage(ctx, roomID, playerID, msg)
	}
}
