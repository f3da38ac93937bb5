package engine

import (
	"fmt"

	"go-splendor/entities"
)

const (
	NumTiers     = 3
	VisibleSlots = 4
)

// TierRow 一个等级的明牌位和剩余牌堆，牌堆末尾是下一张
type TierRow struct {
	Slots []*entities.Card `json:"slots"` // nil 表示空位
	Deck  []entities.Card  `json:"deck"`
}

type Market struct {
	Tiers [NumTiers]TierRow `json:"tiers"`
}

func tierIndex(tier int) (int, error) {
	if tier < 1 || tier > NumTiers {
		return 0, fmt.Errorf("invalid tier %d", tier)
	}
	return tier - 1, nil
}

// NewMarket 按等级发 slots 张明牌，剩下的作为牌堆
func NewMarket(decks [NumTiers][]entities.Card, slots int) Market {
	var m Market
	for i := range decks {
		deck := append([]entities.Card(nil), decks[i]...)
		row := TierRow{Slots: make([]*entities.Card, slots)}
		row.Deck = deck
		for s := 0; s < slots; s++ {
			card, ok := row.pop()
			if !ok {
				break
			}
			row.Slots[s] = &card
		}
		m.Tiers[i] = row
	}
	return m
}

func (r *TierRow) pop() (entities.Card, bool) {
	if len(r.Deck) == 0 {
		return entities.Card{}, false
	}
	card := r.Deck[len(r.Deck)-1]
	r.Deck = r.Deck[:len(r.Deck)-1]
	return card, true
}

func (m *Market) Row(tier int) (*TierRow, error) {
	i, err := tierIndex(tier)
	if err != nil {
		return nil, err
	}
	return &m.Tiers[i], nil
}

// Visible 返回某个明牌位上的牌
func (m *Market) Visible(tier, slot int) (entities.Card, error) {
	row, err := m.Row(tier)
	if err != nil {
		return entities.Card{}, err
	}
	if slot < 0 || slot >= len(row.Slots) || row.Slots[slot] == nil {
		return entities.Card{}, fmt.Errorf("tier %d slot %d is empty", tier, slot)
	}
	return *row.Slots[slot], nil
}

// Take 拿走明牌位上的牌并从牌堆补位。补位失败返回 ErrDeckExhausted，但牌已经拿走
func (m *Market) Take(tier, slot int) (entities.Card, error) {
	card, err := m.Visible(tier, slot)
	if err != nil {
		return entities.Card{}, err
	}
	row, _ := m.Row(tier)
	row.Slots[slot] = nil
	return card, m.Refill(tier, slot)
}

func (m *Market) Refill(tier, slot int) error {
	row, err := m.Row(tier)
	if err != nil {
		return err
	}
	next, ok := row.pop()
	if !ok {
		return ErrDeckExhausted
	}
	row.Slots[slot] = &next
	return nil
}

// DrawBlind 盲抽牌堆顶
func (m *Market) DrawBlind(tier int) (entities.Card, error) {
	row, err := m.Row(tier)
	if err != nil {
		return entities.Card{}, err
	}
	card, ok := row.pop()
	if !ok {
		return entities.Card{}, ErrDeckExhausted
	}
	return card, nil
}

func (m *Market) DeckSize(tier int) int {
	row, err := m.Row(tier)
	if err != nil {
		return 0
	}
	return len(row.Deck)
}

func (m Market) clone() Market {
	var out Market
	for i, row := range m.Tiers {
		slots := make([]*entities.Card, len(row.Slots))
		for s, c := range row.Slots {
			if c != nil {
				cp := *c
				slots[s] = &cp
			}
		}
		out.Tiers[i] = TierRow{
			Slots: slots,
			Deck:  append([]entities.Card(nil), row.Deck...),
		}
	}
	return out
}
