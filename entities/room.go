package entities

type RoomInfo struct {
	RoomStatus bool       `json:"roomStatus"`
	GameStatus RoomStatus `json:"gameStatus"`
	MaxPlayers int        `json:"maxPlayers"`
	AIPlayers  int        `json:"aiPlayers"`
	UserID     string     `json:"userID"`
}

type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"   // 等待玩家加入房间
	RoomStatusPlaying  RoomStatus = "playing"   // 正常回合
	RoomStatusLastTurn RoomStatus = "last_turn" // 有人达到目标分，最后一轮
	RoomStatusEnd      RoomStatus = "end"
)
