package engine

import "go-splendor/entities"

const DefaultPointTarget = 15

// GameState 一局游戏的全部可变状态，由 TurnEngine 独占
type GameState struct {
	ID          string               `json:"id"`
	Bank        GemBank              `json:"bank"`
	Market      Market               `json:"market"`
	Players     []Player             `json:"players"`
	Objectives  []entities.Objective `json:"objectives"`
	PointTarget int                  `json:"pointTarget"`

	Current     int  `json:"current"` // 当前行动玩家下标
	Turn        int  `json:"turn"`    // 已完成的回合数
	FinalRound  bool `json:"finalRound"`
	TriggeredBy int  `json:"triggeredBy"` // 触发最后一轮的玩家，未触发为 -1
	Over        bool `json:"over"`
	// 连续无合法动作的玩家数，全员都没有动作时结束
	Passes int `json:"passes"`
}

// Clone 深拷贝，模拟候选动作时用，互不共享
func (s *GameState) Clone() *GameState {
	out := *s
	out.Market = s.Market.clone()
	out.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		out.Players[i] = p.clone()
	}
	out.Objectives = append([]entities.Objective(nil), s.Objectives...)
	return &out
}

func (s *GameState) CurrentPlayer() *Player { return &s.Players[s.Current] }

// PlayerIndex 按 ID 查玩家下标
func (s *GameState) PlayerIndex(id string) int {
	for i, p := range s.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// GemTotals 池子加所有玩家手里的宝石，守恒时等于 Bank.Minted
func (s *GameState) GemTotals() entities.Gems {
	total := s.Bank.Gems
	for _, p := range s.Players {
		total = total.Add(p.Gems)
	}
	return total
}

func (s *GameState) Conserved() bool { return s.GemTotals() == s.Bank.Minted }

func (s *GameState) next(i int) int { return (i + 1) % len(s.Players) }
