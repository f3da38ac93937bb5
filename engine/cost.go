package engine

import "go-splendor/entities"

// Price 计算买卡的精确付款方案。
// 每种颜色先扣折扣，再用自己的宝石，缺口全部由黄金补；不会多付。
func Price(cost, discounts, gems entities.Gems) (entities.Gems, error) {
	var pay entities.Gems
	shortfall := 0
	for _, c := range entities.CostColors {
		need := cost[c] - discounts[c]
		if need <= 0 {
			continue
		}
		short := need - gems[c]
		if short > 0 {
			shortfall += short
			pay[c] = need - short
		} else {
			pay[c] = need
		}
	}
	if shortfall > gems[entities.Gold] {
		return entities.Gems{}, ErrUnaffordable
	}
	pay[entities.Gold] = shortfall
	return pay, nil
}

// CanAfford Price 的布尔版本
func CanAfford(cost, discounts, gems entities.Gems) bool {
	_, err := Price(cost, discounts, gems)
	return err == nil
}
