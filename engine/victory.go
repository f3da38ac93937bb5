package engine

import "sort"

// Standing 结算排名的一行
type Standing struct {
	Rank       int    `json:"rank"`
	Player     int    `json:"player"`
	PlayerID   string `json:"playerID"`
	Points     int    `json:"points"`
	Cards      int    `json:"cards"`
	Objectives int    `json:"objectives"`
	Gems       int    `json:"gems"`
}

// Ranking 全序排名：分数高 > 卡少 > 贵族多 > 剩余宝石多 > 座位靠前
func Ranking(s *GameState) []Standing {
	out := make([]Standing, len(s.Players))
	for i, p := range s.Players {
		out[i] = Standing{
			Player:     i,
			PlayerID:   p.ID,
			Points:     p.Points,
			Cards:      len(p.Owned),
			Objectives: len(p.Objectives),
			Gems:       p.GemCount(),
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Cards != b.Cards {
			return a.Cards < b.Cards
		}
		if a.Objectives != b.Objectives {
			return a.Objectives > b.Objectives
		}
		if a.Gems != b.Gems {
			return a.Gems > b.Gems
		}
		return a.Player < b.Player
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// Winner 排名第一的玩家下标
func Winner(s *GameState) int {
	r := Ranking(s)
	if len(r) == 0 {
		return -1
	}
	return r[0].Player
}
