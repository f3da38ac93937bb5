package ws

import (
	"fmt"
	"strings"

	"go-splendor/dto"
)

var (
	_ dto.ConnInterface = (*VirtualConn)(nil) // 编译期断言实现
	_ dto.ConnInterface = (*dto.RealConn)(nil)
)

// VirtualConn AI 座位没有真实连接，消息直接丢弃
type VirtualConn struct {
	PlayerID string
	RoomID   string
}

func (v *VirtualConn) WriteMessage(messageType int, data []byte) error { return nil }
func (v *VirtualConn) Close() error                                    { return nil }

func IsAIPlayer(playerID string) bool {
	return strings.HasPrefix(playerID, "ai_")
}

// AIPlayerID 第 n 个 AI 座位的 ID，从 1 开始
func AIPlayerID(n int) string {
	return fmt.Sprintf("ai_%d", n)
}
