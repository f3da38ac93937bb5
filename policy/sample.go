package policy

import (
	"math"

	"golang.org/x/exp/rand"
)

// MinTemperature 低于这个温度按 argmax 处理
const MinTemperature = 1e-3

// Sample 按 p ∝ score^(1/T) 抽一个下标，在对数空间计算避免溢出。
// T 趋近 0 时退化为 argmax，多个最大值之间均匀随机。
// 分数全为 0 时均匀随机。
func Sample(scores []float64, temperature float64, rng *rand.Rand) int {
	if len(scores) == 0 {
		return -1
	}
	if temperature < MinTemperature {
		return argmax(scores, rng)
	}

	logw := make([]float64, len(scores))
	maxLog := math.Inf(-1)
	for i, s := range scores {
		if s <= 0 || math.IsNaN(s) {
			logw[i] = math.Inf(-1)
			continue
		}
		logw[i] = math.Log(s) / temperature
		if logw[i] > maxLog {
			maxLog = logw[i]
		}
	}
	if math.IsInf(maxLog, -1) {
		return rng.Intn(len(scores))
	}

	weights := make([]float64, len(scores))
	total := 0.0
	for i, l := range logw {
		weights[i] = math.Exp(l - maxLog)
		total += weights[i]
	}
	r := rng.Float64() * total
	for i, w := range weights {
		r -= w
		if r < 0 {
			return i
		}
	}
	// 浮点误差兜底：返回最后一个权重非零的
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return len(weights) - 1
}

func argmax(scores []float64, rng *rand.Rand) int {
	best := math.Inf(-1)
	var ties []int
	for i, s := range scores {
		switch {
		case s > best:
			best = s
			ties = append(ties[:0], i)
		case s == best:
			ties = append(ties, i)
		}
	}
	if len(ties) == 0 {
		return 0
	}
	if len(ties) == 1 {
		return ties[0]
	}
	return ties[rng.Intn(len(ties))]
}
