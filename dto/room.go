package dto

type RoomInfo struct {
	RoomID     string `json:"roomID"`
	MaxPlayers int    `json:"maxPlayers"`
	AIPlayers  int    `json:"aiPlayers"`
	Players    int    `json:"players"` // 当前已入座
	Status     string `json:"status"`
}

type CreateRoomRequest struct {
	MaxPlayers int    `json:"maxPlayers" binding:"required,min=2,max=4"`
	AIPlayers  int    `json:"aiPlayers" binding:"min=0,max=3"`
	UserID     string `json:"userID"`
}

type CreateRoomResponse struct {
	RoomID string `json:"room_id"`
}

type DeleteRoomRequest struct {
	RoomID string `json:"roomID" uri:"roomID" binding:"required"`
}

type GetRoomList struct {
	Rooms []RoomInfo `json:"rooms"`
}

// SelfPlayRequest 纯 AI 对局，用于生成训练语料
type SelfPlayRequest struct {
	Games   int    `json:"games" binding:"required,min=1,max=1000"`
	Players int    `json:"players" binding:"required,min=2,max=4"`
	Seed    uint64 `json:"seed"`
}

type SelfPlayResponse struct {
	Games   int            `json:"games"`
	Turns   int            `json:"turns"`
	Steps   int            `json:"steps"` // 实际提交的动作数，Turns 还包含跳过
	Records int            `json:"records"`
	Wins    map[string]int `json:"wins"`
}

type TokenRequest struct {
	UserID string `json:"userID" binding:"required"`
}

type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// SeatView 房间内一个座位
type SeatView struct {
	PlayerID string `json:"playerID"`
	Online   bool   `json:"online"`
	Ready    bool   `json:"ready"`
	AI       bool   `json:"ai"`
}

// SyncPayload 每次状态变化推给客户端的完整快照
type SyncPayload struct {
	RoomID     string     `json:"roomID"`
	MaxPlayers int        `json:"maxPlayers"`
	Status     string     `json:"status"`
	Round      int        `json:"round"`
	Seats      []SeatView `json:"seats"`
	Game       *GameView  `json:"game,omitempty"`
	LastAction string     `json:"lastAction,omitempty"`
}
