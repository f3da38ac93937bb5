package engine

import (
	"fmt"

	"go-splendor/entities"
)

// GemBank 公共宝石池。Minted 为开局总量，用来校验守恒
type GemBank struct {
	Gems   entities.Gems `json:"gems"`
	Minted entities.Gems `json:"minted"`
}

func NewGemBank(supply entities.Gems) GemBank {
	return GemBank{Gems: supply, Minted: supply}
}

func (b GemBank) Count(c entities.Color) int { return b.Gems[c] }

// Withdraw 从池中取出；不足时不做任何修改
func (b *GemBank) Withdraw(g entities.Gems) error {
	if !g.NonNegative() {
		return fmt.Errorf("withdraw %s: negative amount", g)
	}
	if !b.Gems.Covers(g) {
		return fmt.Errorf("withdraw %s: bank only has %s", g, b.Gems)
	}
	b.Gems = b.Gems.Sub(g)
	return nil
}

// Deposit 付款回到池中，不能超过开局总量
func (b *GemBank) Deposit(g entities.Gems) error {
	if !g.NonNegative() {
		return fmt.Errorf("deposit %s: negative amount", g)
	}
	next := b.Gems.Add(g)
	if !b.Minted.Covers(next) {
		return fmt.Errorf("deposit %s: exceeds minted supply %s", g, b.Minted)
	}
	b.Gems = next
	return nil
}
