package engine

import (
	"errors"
	"fmt"

	"go-splendor/entities"
)

// Effect 动作应用后的附带信息，给日志和上层同步用
type Effect struct {
	Card        *entities.Card `json:"card,omitempty"`
	Paid        entities.Gems  `json:"paid"`
	Gained      entities.Gems  `json:"gained"`
	DeckEmptied bool           `json:"deckEmptied"`
}

// Apply 在副本上执行动作并返回新状态；出错时原状态不变。
// 只做动作本身的转移，贵族和胜利判定由 TurnEngine 接着处理。
func Apply(s *GameState, player int, a Action) (*GameState, Effect, error) {
	if player < 0 || player >= len(s.Players) {
		return nil, Effect{}, illegal(player, a, "unknown player", nil)
	}
	next := s.Clone()
	var (
		eff Effect
		err error
	)
	switch act := a.(type) {
	case PurchaseAvailable:
		eff, err = next.purchaseAvailable(player, act)
	case PurchaseReserved:
		eff, err = next.purchaseReserved(player, act)
	case ReserveBoard:
		eff, err = next.reserveBoard(player, act)
	case ReserveBlind:
		eff, err = next.reserveBlind(player, act)
	case TakeGems:
		eff, err = next.takeGems(player, act)
	default:
		err = fmt.Errorf("unhandled action type %T", a)
	}
	if err != nil {
		var ime *IllegalMoveError
		if errors.As(err, &ime) {
			return nil, Effect{}, err
		}
		return nil, Effect{}, illegal(player, a, "apply failed", err)
	}
	if !next.Conserved() {
		return nil, Effect{}, illegal(player, a, "gem conservation violated", nil)
	}
	return next, eff, nil
}

// pay 玩家付款到公共池
func (s *GameState) pay(player int, cost entities.Gems) (entities.Gems, error) {
	p := &s.Players[player]
	payment, err := Price(cost, p.Discounts, p.Gems)
	if err != nil {
		return entities.Gems{}, err
	}
	p.Gems = p.Gems.Sub(payment)
	if err := s.Bank.Deposit(payment); err != nil {
		return entities.Gems{}, err
	}
	return payment, nil
}

func (s *GameState) purchaseAvailable(player int, a PurchaseAvailable) (Effect, error) {
	card, err := s.Market.Visible(a.Tier, a.Slot)
	if err != nil {
		return Effect{}, err
	}
	paid, err := s.pay(player, card.Cost)
	if err != nil {
		return Effect{}, err
	}
	eff := Effect{Card: &card, Paid: paid}
	if _, err := s.Market.Take(a.Tier, a.Slot); err != nil {
		if !errors.Is(err, ErrDeckExhausted) {
			return Effect{}, err
		}
		eff.DeckEmptied = true
	}
	s.Players[player].gain(card)
	return eff, nil
}

func (s *GameState) purchaseReserved(player int, a PurchaseReserved) (Effect, error) {
	p := &s.Players[player]
	if a.Index < 0 || a.Index >= len(p.Reserved) {
		return Effect{}, fmt.Errorf("no reserved card at %d", a.Index)
	}
	card := p.Reserved[a.Index]
	paid, err := s.pay(player, card.Cost)
	if err != nil {
		return Effect{}, err
	}
	p.Reserved = append(p.Reserved[:a.Index:a.Index], p.Reserved[a.Index+1:]...)
	p.gain(card)
	return Effect{Card: &card, Paid: paid}, nil
}

// grantWildcard 预留时池里有黄金且玩家不足 10 个宝石才给一个
func (s *GameState) grantWildcard(player int) entities.Gems {
	p := &s.Players[player]
	var g entities.Gems
	if s.Bank.Count(entities.Gold) < 1 || p.GemCount() >= MaxGems {
		return g
	}
	g[entities.Gold] = 1
	if err := s.Bank.Withdraw(g); err != nil {
		return entities.Gems{}
	}
	p.Gems = p.Gems.Add(g)
	return g
}

func (s *GameState) reserveBoard(player int, a ReserveBoard) (Effect, error) {
	p := &s.Players[player]
	if !p.CanReserve() {
		return Effect{}, fmt.Errorf("already holding %d reserved cards", len(p.Reserved))
	}
	card, err := s.Market.Take(a.Tier, a.Slot)
	eff := Effect{}
	if err != nil {
		if !errors.Is(err, ErrDeckExhausted) {
			return Effect{}, err
		}
		eff.DeckEmptied = true
	}
	p.Reserved = append(p.Reserved, card)
	eff.Card = &card
	eff.Gained = s.grantWildcard(player)
	return eff, nil
}

func (s *GameState) reserveBlind(player int, a ReserveBlind) (Effect, error) {
	p := &s.Players[player]
	if !p.CanReserve() {
		return Effect{}, fmt.Errorf("already holding %d reserved cards", len(p.Reserved))
	}
	card, err := s.Market.DrawBlind(a.Tier)
	if err != nil {
		return Effect{}, err
	}
	p.Reserved = append(p.Reserved, card)
	return Effect{Card: &card, Gained: s.grantWildcard(player)}, nil
}

func (s *GameState) takeGems(player int, a TakeGems) (Effect, error) {
	if a.Gems[entities.Gold] != 0 {
		return Effect{}, errors.New("gold cannot be taken directly")
	}
	if !validTake(a.Gems) {
		return Effect{}, fmt.Errorf("malformed take %s", a.Gems)
	}
	p := &s.Players[player]
	if p.GemCount()+a.Gems.Total() > MaxGems {
		return Effect{}, fmt.Errorf("take %s would exceed %d gems", a.Gems, MaxGems)
	}
	for _, c := range entities.CostColors {
		if a.Gems[c] == 2 && s.Bank.Count(c) < 4 {
			return Effect{}, fmt.Errorf("double take of %s needs 4 in bank", c)
		}
	}
	if err := s.Bank.Withdraw(a.Gems); err != nil {
		return Effect{}, err
	}
	p.Gems = p.Gems.Add(a.Gems)
	return Effect{Gained: a.Gems}, nil
}

// validTake 要么一种颜色拿 2 个，要么 1~3 种颜色各拿 1 个
func validTake(g entities.Gems) bool {
	colors, doubles := 0, 0
	for _, c := range entities.CostColors {
		switch g[c] {
		case 0:
		case 1:
			colors++
		case 2:
			doubles++
		default:
			return false
		}
	}
	if doubles > 0 {
		return doubles == 1 && colors == 0
	}
	return colors >= 1 && colors <= 3
}
