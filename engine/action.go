package engine

import (
	"fmt"

	"go-splendor/entities"
)

type ActionKind string

const (
	KindPurchaseAvailable ActionKind = "purchase_available"
	KindPurchaseReserved  ActionKind = "purchase_reserved"
	KindReserveBoard      ActionKind = "reserve_board"
	KindReserveBlind      ActionKind = "reserve_blind"
	KindTakeGems          ActionKind = "take_gems"
)

// Action 五种动作的封闭集合，只能由本包实现
type Action interface {
	Kind() ActionKind
	String() string
	sealed()
}

// PurchaseAvailable 买桌面上的牌
type PurchaseAvailable struct {
	Tier int `json:"tier" mapstructure:"tier"`
	Slot int `json:"slot" mapstructure:"slot"`
}

// PurchaseReserved 买自己预留的牌
type PurchaseReserved struct {
	Index int `json:"index" mapstructure:"index"`
}

// ReserveBoard 预留桌面上的牌
type ReserveBoard struct {
	Tier int `json:"tier" mapstructure:"tier"`
	Slot int `json:"slot" mapstructure:"slot"`
}

// ReserveBlind 盲抽预留牌堆顶
type ReserveBlind struct {
	Tier int `json:"tier" mapstructure:"tier"`
}

// TakeGems 拿宝石：同色两个或不同色各一个
type TakeGems struct {
	Gems entities.Gems `json:"gems"`
}

func (PurchaseAvailable) Kind() ActionKind { return KindPurchaseAvailable }
func (PurchaseReserved) Kind() ActionKind  { return KindPurchaseReserved }
func (ReserveBoard) Kind() ActionKind      { return KindReserveBoard }
func (ReserveBlind) Kind() ActionKind      { return KindReserveBlind }
func (TakeGems) Kind() ActionKind          { return KindTakeGems }

func (PurchaseAvailable) sealed() {}
func (PurchaseReserved) sealed()  {}
func (ReserveBoard) sealed()      {}
func (ReserveBlind) sealed()      {}
func (TakeGems) sealed()          {}

func (a PurchaseAvailable) String() string {
	return fmt.Sprintf("purchase tier %d slot %d", a.Tier, a.Slot)
}
func (a PurchaseReserved) String() string { return fmt.Sprintf("purchase reserved #%d", a.Index) }
func (a ReserveBoard) String() string {
	return fmt.Sprintf("reserve tier %d slot %d", a.Tier, a.Slot)
}
func (a ReserveBlind) String() string { return fmt.Sprintf("reserve blind tier %d", a.Tier) }
func (a TakeGems) String() string     { return "take " + a.Gems.String() }

// ActionKinds 固定顺序，用于统计和 one-hot
var ActionKinds = []ActionKind{
	KindPurchaseAvailable,
	KindPurchaseReserved,
	KindReserveBoard,
	KindReserveBlind,
	KindTakeGems,
}

// SameAction 两个动作是否等价（用于校验玩家提交的动作在合法集合里）
func SameAction(a, b Action) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch x := a.(type) {
	case PurchaseAvailable:
		y, ok := b.(PurchaseAvailable)
		return ok && x == y
	case PurchaseReserved:
		y, ok := b.(PurchaseReserved)
		return ok && x == y
	case ReserveBoard:
		y, ok := b.(ReserveBoard)
		return ok && x == y
	case ReserveBlind:
		y, ok := b.(ReserveBlind)
		return ok && x == y
	case TakeGems:
		y, ok := b.(TakeGems)
		return ok && x.Gems == y.Gems
	}
	return false
}

// Contains 动作是否在合法集合里
func Contains(actions []Action, a Action) bool {
	for _, c := range actions {
		if SameAction(c, a) {
			return true
		}
	}
	return false
}
