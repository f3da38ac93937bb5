package engine

import "go-splendor/entities"

// 特征向量布局，评估器依赖这个顺序，改动就是不兼容变更
const (
	MaxObjectiveSlots = MaxPlayers + 1
	MaxOpponents      = MaxPlayers - 1

	featOwnGems      = entities.NumColors
	featOwnDiscounts = entities.NumCostColors
	featCardStats    = NumTiers*2 + 1
	featMarket       = NumTiers * VisibleSlots * entities.NumCostColors
	featObjectives   = MaxObjectiveSlots * entities.NumCostColors
	featOpponent     = 1 + entities.NumCostColors + 1

	FeatureLen = featOwnGems + featOwnDiscounts + featCardStats + featMarket +
		featObjectives + MaxOpponents*featOpponent
)

// 各段在向量中的起始下标
const (
	OffsetGems       = 0
	OffsetDiscounts  = OffsetGems + featOwnGems
	OffsetOwned      = OffsetDiscounts + featOwnDiscounts
	OffsetReserved   = OffsetOwned + NumTiers
	OffsetPoints     = OffsetReserved + NumTiers
	OffsetMarket     = OffsetPoints + 1
	OffsetObjectives = OffsetMarket + featMarket
	OffsetOpponents  = OffsetObjectives + featObjectives
	OpponentStride   = featOpponent
)

// Features 从 player 的视角编码状态。对手只暴露公开信息：分数、折扣、预留数量
func Features(s *GameState, player int) []float64 {
	v := make([]float64, 0, FeatureLen)
	p := &s.Players[player]

	for _, c := range entities.AllColors {
		v = append(v, float64(p.Gems[c]))
	}
	for _, c := range entities.CostColors {
		v = append(v, float64(p.Discounts[c]))
	}
	for _, n := range p.OwnedByTier() {
		v = append(v, float64(n))
	}
	for _, n := range p.ReservedByTier() {
		v = append(v, float64(n))
	}
	v = append(v, float64(p.Points))

	for t := 0; t < NumTiers; t++ {
		row := s.Market.Tiers[t]
		for slot := 0; slot < VisibleSlots; slot++ {
			var cost entities.Gems
			if slot < len(row.Slots) && row.Slots[slot] != nil {
				cost = row.Slots[slot].Cost
			}
			for _, c := range entities.CostColors {
				v = append(v, float64(cost[c]))
			}
		}
	}

	for i := 0; i < MaxObjectiveSlots; i++ {
		var rem entities.Gems
		if i < len(s.Objectives) {
			rem = Remaining(s.Objectives[i], p.Discounts)
		}
		for _, c := range entities.CostColors {
			v = append(v, float64(rem[c]))
		}
	}

	for k := 1; k <= MaxOpponents; k++ {
		if k >= len(s.Players) {
			for i := 0; i < featOpponent; i++ {
				v = append(v, 0)
			}
			continue
		}
		o := &s.Players[(player+k)%len(s.Players)]
		v = append(v, float64(o.Points))
		for _, c := range entities.CostColors {
			v = append(v, float64(o.Discounts[c]))
		}
		v = append(v, float64(len(o.Reserved)))
	}
	return v
}
