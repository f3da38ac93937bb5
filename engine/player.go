package engine

import "go-splendor/entities"

const (
	MaxGems     = 10
	MaxReserved = 3
)

type Player struct {
	ID         string               `json:"id"`
	Gems       entities.Gems        `json:"gems"`
	Discounts  entities.Gems        `json:"discounts"` // 黄金位恒为 0
	Owned      []entities.Card      `json:"owned"`
	Reserved   []entities.Card      `json:"reserved"`
	Points     int                  `json:"points"`
	Objectives []entities.Objective `json:"objectives"`
}

func NewPlayer(id string) Player {
	return Player{
		ID:         id,
		Owned:      []entities.Card{},
		Reserved:   []entities.Card{},
		Objectives: []entities.Objective{},
	}
}

func (p *Player) GemCount() int { return p.Gems.Total() }

func (p *Player) CanReserve() bool { return len(p.Reserved) < MaxReserved }

// OwnedByTier 每个等级拥有的卡数
func (p *Player) OwnedByTier() [NumTiers]int {
	var out [NumTiers]int
	for _, c := range p.Owned {
		if c.Tier >= 1 && c.Tier <= NumTiers {
			out[c.Tier-1]++
		}
	}
	return out
}

func (p *Player) ReservedByTier() [NumTiers]int {
	var out [NumTiers]int
	for _, c := range p.Reserved {
		if c.Tier >= 1 && c.Tier <= NumTiers {
			out[c.Tier-1]++
		}
	}
	return out
}

// gain 把买到的卡加入玩家：加分、加折扣
func (p *Player) gain(card entities.Card) {
	p.Owned = append(p.Owned, card)
	p.Discounts[card.Color]++
	p.Points += card.Points
}

func (p Player) clone() Player {
	out := p
	out.Owned = append([]entities.Card(nil), p.Owned...)
	out.Reserved = append([]entities.Card(nil), p.Reserved...)
	out.Objectives = append([]entities.Objective(nil), p.Objectives...)
	return out
}
