package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go-splendor/engine"
	"go-splendor/entities"

	"github.com/go-redis/redis/v8"
)

var ErrRoomNotFound = errors.New("房间不存在")

// RoomStore 房间信息和对局快照，全部存在 room:<id>:* 下
type RoomStore struct {
	Rdb *redis.Client
}

func roomInfoKey(roomID string) string { return fmt.Sprintf("room:%s:roomInfo", roomID) }
func stateKey(roomID string) string    { return fmt.Sprintf("room:%s:state", roomID) }
func lastActionKey(roomID string) string {
	return fmt.Sprintf("room:%s:lastAction", roomID)
}

// SetRoomInfo 设置房间的全部信息（Hash）
func (r *RoomStore) SetRoomInfo(ctx context.Context, roomID string, info entities.RoomInfo) error {
	data := map[string]interface{}{
		"gameStatus": string(info.GameStatus),
		"roomStatus": strconv.FormatBool(info.RoomStatus),
		"maxPlayers": strconv.Itoa(info.MaxPlayers),
		"aiPlayers":  strconv.Itoa(info.AIPlayers),
		"userID":     info.UserID,
	}
	if err := r.Rdb.HSet(ctx, roomInfoKey(roomID), data).Err(); err != nil {
		return fmt.Errorf("❌ 设置房间信息失败: %w", err)
	}
	return nil
}

func (r *RoomStore) SetGameStatus(ctx context.Context, roomID string, status entities.RoomStatus) error {
	if err := r.Rdb.HSet(ctx, roomInfoKey(roomID), "gameStatus", string(status)).Err(); err != nil {
		return fmt.Errorf("❌ 设置游戏状态失败: %w", err)
	}
	return nil
}

func (r *RoomStore) SetRoomStatus(ctx context.Context, roomID string, full bool) error {
	return r.Rdb.HSet(ctx, roomInfoKey(roomID), "roomStatus", strconv.FormatBool(full)).Err()
}

// GetRoomInfo 获取房间的全部信息（Hash）
func (r *RoomStore) GetRoomInfo(ctx context.Context, roomID string) (*entities.RoomInfo, error) {
	m, err := r.Rdb.HGetAll(ctx, roomInfoKey(roomID)).Result()
	if err != nil {
		return nil, fmt.Errorf("❌ 获取房间信息失败: %w", err)
	}
	if len(m) == 0 {
		return nil, ErrRoomNotFound
	}
	return parseRoomInfo(m)
}

func parseRoomInfo(m map[string]string) (*entities.RoomInfo, error) {
	maxPlayers, err := strconv.Atoi(m["maxPlayers"])
	if err != nil {
		return nil, fmt.Errorf("maxPlayers 转换失败: %w", err)
	}
	aiPlayers, _ := strconv.Atoi(m["aiPlayers"])
	return &entities.RoomInfo{
		RoomStatus: m["roomStatus"] == "true",
		GameStatus: entities.RoomStatus(m["gameStatus"]),
		MaxPlayers: maxPlayers,
		AIPlayers:  aiPlayers,
		UserID:     m["userID"],
	}, nil
}

// ListRooms 扫描所有 room:*:roomInfo
func (r *RoomStore) ListRooms(ctx context.Context) (map[string]*entities.RoomInfo, error) {
	out := make(map[string]*entities.RoomInfo)
	var cursor uint64
	for {
		keys, next, err := r.Rdb.Scan(ctx, cursor, "room:*:roomInfo", 100).Result()
		if err != nil {
			return nil, fmt.Errorf("扫描房间失败: %w", err)
		}
		for _, key := range keys {
			roomID := strings.TrimSuffix(strings.TrimPrefix(key, "room:"), ":roomInfo")
			info, err := r.GetRoomInfo(ctx, roomID)
			if err != nil {
				continue
			}
			out[roomID] = info
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return out, nil
}

// DeleteRoom 删除 room:<id>: 开头的所有 key
func (r *RoomStore) DeleteRoom(ctx context.Context, roomID string) error {
	prefix := fmt.Sprintf("room:%s:", roomID)
	var (
		cursor       uint64
		keysToDelete []string
	)
	for {
		keys, cur, err := r.Rdb.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("扫描房间相关 key 失败: %w", err)
		}
		keysToDelete = append(keysToDelete, keys...)
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	if len(keysToDelete) == 0 {
		return ErrRoomNotFound
	}
	if err := r.Rdb.Del(ctx, keysToDelete...).Err(); err != nil {
		return fmt.Errorf("删除房间相关 key 失败: %w", err)
	}
	return nil
}

// SaveState 保存对局快照
func (r *RoomStore) SaveState(ctx context.Context, roomID string, s *engine.GameState) error {
	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("对局序列化失败: %w", err)
	}
	if err := r.Rdb.Set(ctx, stateKey(roomID), b, 0).Err(); err != nil {
		return fmt.Errorf("保存对局失败: %w", err)
	}
	return nil
}

func (r *RoomStore) LoadState(ctx context.Context, roomID string) (*engine.GameState, error) {
	raw, err := r.Rdb.Get(ctx, stateKey(roomID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("读取对局失败: %w", err)
	}
	var s engine.GameState
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("对局解析失败: %w", err)
	}
	return &s, nil
}

// LastAction 最近一次动作，断线重连时给前端展示
type LastAction struct {
	PlayerID string            `json:"playerID"`
	Kind     engine.ActionKind `json:"kind"`
	Detail   string            `json:"detail"`
}

func (r *RoomStore) SetLastAction(ctx context.Context, roomID string, a LastAction) error {
	b, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return r.Rdb.Set(ctx, lastActionKey(roomID), b, 0).Err()
}

func (r *RoomStore) GetLastAction(ctx context.Context, roomID string) (*LastAction, error) {
	raw, err := r.Rdb.Get(ctx, lastActionKey(roomID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var a LastAction
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
