package engine

import "go-splendor/entities"

// LegalActions 生成玩家当前所有合法动作：买明牌、买预留、预留明牌、盲抽预留、拿宝石
func LegalActions(s *GameState, player int) []Action {
	p := &s.Players[player]
	actions := make([]Action, 0, 32)

	for t := 1; t <= NumTiers; t++ {
		row, _ := s.Market.Row(t)
		for slot, card := range row.Slots {
			if card == nil {
				continue
			}
			if CanAfford(card.Cost, p.Discounts, p.Gems) {
				actions = append(actions, PurchaseAvailable{Tier: t, Slot: slot})
			}
		}
	}
	for i, card := range p.Reserved {
		if CanAfford(card.Cost, p.Discounts, p.Gems) {
			actions = append(actions, PurchaseReserved{Index: i})
		}
	}

	if p.CanReserve() {
		for t := 1; t <= NumTiers; t++ {
			row, _ := s.Market.Row(t)
			for slot, card := range row.Slots {
				if card != nil {
					actions = append(actions, ReserveBoard{Tier: t, Slot: slot})
				}
			}
		}
		for t := 1; t <= NumTiers; t++ {
			if s.Market.DeckSize(t) > 0 {
				actions = append(actions, ReserveBlind{Tier: t})
			}
		}
	}

	for _, g := range TakeGemOptions(s.Bank.Gems, p.GemCount()) {
		actions = append(actions, TakeGems{Gems: g})
	}
	return actions
}

// TakeGemOptions 枚举拿宝石组合，held 是玩家当前持有总数。
// 拿完后总数不会超过 10，同色两个与多色各一个不会混在一个动作里。
func TakeGemOptions(bank entities.Gems, held int) []entities.Gems {
	if held >= MaxGems {
		return nil
	}
	var single []entities.Color
	for _, c := range entities.CostColors {
		if bank[c] > 0 {
			single = append(single, c)
		}
	}

	var out []entities.Gems
	if held == MaxGems-1 {
		for _, c := range single {
			var g entities.Gems
			g[c] = 1
			out = append(out, g)
		}
		return out
	}

	for _, c := range entities.CostColors {
		if bank[c] >= 4 {
			var g entities.Gems
			g[c] = 2
			out = append(out, g)
		}
	}

	size := 3
	if held == MaxGems-2 {
		size = 2
	}
	if len(single) < size {
		size = len(single)
	}
	for _, combo := range combinations(single, size) {
		var g entities.Gems
		for _, c := range combo {
			g[c] = 1
		}
		out = append(out, g)
	}
	return out
}

// combinations 按输入顺序生成大小为 k 的所有子集
func combinations(colors []entities.Color, k int) [][]entities.Color {
	if k <= 0 || k > len(colors) {
		return nil
	}
	var out [][]entities.Color
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		combo := make([]entities.Color, k)
		for i, j := range idx {
			combo[i] = colors[j]
		}
		out = append(out, combo)

		i := k - 1
		for i >= 0 && idx[i] == len(colors)-k+i {
			i--
		}
		if i < 0 {
			return out
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}
