package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"go-splendor/dto"
	"go-splendor/repository"
	"go-splendor/ws"

	"github.com/google/uuid"
)

// RoomService 房间的 HTTP 接口，内存状态在 Hub，持久化在 Redis
type RoomService struct {
	Hub     *ws.Hub
	Store   *repository.RoomStore   // 可为 nil
	Results *repository.ResultStore // 可为 nil
}

func NewRoomID() string {
	// 生成唯一 Room ID（8位）
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

func (s *RoomService) CreateRoom(ctx context.Context, params dto.CreateRoomRequest) (string, error) {
	roomID := NewRoomID()
	if _, err := s.Hub.CreateRoom(ctx, roomID, params.MaxPlayers, params.AIPlayers, params.UserID); err != nil {
		return "", fmt.Errorf("初始化房间信息失败: %w", err)
	}
	return roomID, nil
}

func (s *RoomService) DeleteRoom(ctx context.Context, params dto.DeleteRoomRequest) error {
	return s.Hub.RemoveRoom(ctx, params.RoomID)
}

// GetRoomList 内存中的房间加上 Redis 里还没恢复的房间
func (s *RoomService) GetRoomList(ctx context.Context) ([]dto.RoomInfo, error) {
	rooms := s.Hub.Rooms()
	if s.Store != nil {
		seen := make(map[string]bool, len(rooms))
		for _, r := range rooms {
			seen[r.RoomID] = true
		}
		stored, err := s.Store.ListRooms(ctx)
		if err != nil {
			return nil, err
		}
		for id, info := range stored {
			if seen[id] {
				continue
			}
			rooms = append(rooms, dto.RoomInfo{
				RoomID:     id,
				MaxPlayers: info.MaxPlayers,
				AIPlayers:  info.AIPlayers,
				Status:     string(info.GameStatus),
			})
		}
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].RoomID < rooms[j].RoomID })
	return rooms, nil
}

func (s *RoomService) GetRoomInfo(ctx context.Context, roomID string) (*dto.RoomInfo, error) {
	rooms, err := s.GetRoomList(ctx)
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		if rooms[i].RoomID == roomID {
			return &rooms[i], nil
		}
	}
	return nil, ws.ErrRoomNotFound
}

// GetResults 房间内已结束对局的名次
func (s *RoomService) GetResults(ctx context.Context, roomID string) ([]repository.ResultRow, error) {
	if s.Results == nil {
		return nil, errors.New("结果库未启用")
	}
	return s.Results.Results(ctx, roomID)
}

// GetWins 所有对局的胜场统计
func (s *RoomService) GetWins(ctx context.Context) (map[string]int, error) {
	if s.Results == nil {
		return nil, errors.New("结果库未启用")
	}
	return s.Results.Wins(ctx)
}
