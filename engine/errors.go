package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrUnaffordable 买不起，正常的过滤信号
	ErrUnaffordable = errors.New("card is unaffordable")
	// ErrDeckExhausted 牌堆空了，空位保持为空
	ErrDeckExhausted = errors.New("deck exhausted")
	// ErrNoLegalMove 当前玩家没有任何合法动作，交给外层循环决定
	ErrNoLegalMove = errors.New("no legal move")
	ErrGameOver    = errors.New("game is over")
)

// IllegalMoveError 选中的动作无法应用到当前状态：生成与应用看到的快照不一致
type IllegalMoveError struct {
	Player int
	Action Action
	Reason string
	Err    error
}

func (e *IllegalMoveError) Error() string {
	msg := fmt.Sprintf("illegal move by player %d (%s): %s", e.Player, describe(e.Action), e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *IllegalMoveError) Unwrap() error { return e.Err }

func illegal(player int, a Action, reason string, err error) error {
	return &IllegalMoveError{Player: player, Action: a, Reason: reason, Err: err}
}

func describe(a Action) string {
	if a == nil {
		return "<nil>"
	}
	return a.String()
}
