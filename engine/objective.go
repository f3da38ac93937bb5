package engine

import (
	"go-splendor/entities"

	"golang.org/x/exp/rand"
)

// Satisfied 折扣是否满足贵族门槛
func Satisfied(o entities.Objective, discounts entities.Gems) bool {
	for _, c := range entities.CostColors {
		if discounts[c] < o.Requirement[c] {
			return false
		}
	}
	return true
}

// Remaining 距离门槛还差多少张
func Remaining(o entities.Objective, discounts entities.Gems) entities.Gems {
	var out entities.Gems
	for _, c := range entities.CostColors {
		if d := o.Requirement[c] - discounts[c]; d > 0 {
			out[c] = d
		}
	}
	return out
}

// TieBreaker 同一回合满足多个贵族时选一个，返回 candidates 中的下标
type TieBreaker interface {
	Choose(s *GameState, player int, candidates []int) int
}

// RandomTieBreak 均匀随机；同一个种子得到同样的选择
type RandomTieBreak struct {
	Rng *rand.Rand
}

func (t RandomTieBreak) Choose(_ *GameState, _ int, candidates []int) int {
	if t.Rng == nil {
		return 0
	}
	return t.Rng.Intn(len(candidates))
}

// ProximityTieBreak 拿走对手最接近的那个贵族
type ProximityTieBreak struct{}

func (ProximityTieBreak) Choose(s *GameState, player int, candidates []int) int {
	best, bestGap := 0, -1
	for i, idx := range candidates {
		obj := s.Objectives[idx]
		gap := -1
		for p := range s.Players {
			if p == player {
				continue
			}
			g := Remaining(obj, s.Players[p].Discounts).Total()
			if gap < 0 || g < gap {
				gap = g
			}
		}
		if gap < 0 {
			continue
		}
		if bestGap < 0 || gap < bestGap {
			best, bestGap = i, gap
		}
	}
	return best
}

// resolveObjectives 每回合最多授予一个贵族
func (s *GameState) resolveObjectives(player int, tb TieBreaker) (entities.Objective, bool) {
	p := &s.Players[player]
	var satisfied []int
	for i, o := range s.Objectives {
		if Satisfied(o, p.Discounts) {
			satisfied = append(satisfied, i)
		}
	}
	if len(satisfied) == 0 {
		return entities.Objective{}, false
	}
	pick := satisfied[0]
	if len(satisfied) > 1 && tb != nil {
		choice := tb.Choose(s, player, satisfied)
		if choice >= 0 && choice < len(satisfied) {
			pick = satisfied[choice]
		}
	}
	return s.Award(player, pick), true
}

// Award 把池中第 idx 个贵族给玩家并加分，不检查门槛
func (s *GameState) Award(player, idx int) entities.Objective {
	obj := s.Objectives[idx]
	s.Objectives = append(s.Objectives[:idx:idx], s.Objectives[idx+1:]...)
	p := &s.Players[player]
	p.Objectives = append(p.Objectives, obj)
	p.Points += obj.Points
	return obj
}
