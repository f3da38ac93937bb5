package policy

import (
	"fmt"
	"math"
)

type Decay string

const (
	DecayLinear      Decay = "linear"
	DecayExponential Decay = "exponential"
)

// Schedule 自对弈的温度曲线：前几局探索多，后面逐渐收敛
type Schedule struct {
	Start float64 `yaml:"start" env:"START"`
	End   float64 `yaml:"end" env:"END"`
	Games int     `yaml:"games" env:"GAMES"`
	Decay Decay   `yaml:"decay" env:"DECAY"`
}

func (s Schedule) Validate() error {
	if s.Start < 0 || s.End < 0 {
		return fmt.Errorf("temperature must be >= 0, got %v..%v", s.Start, s.End)
	}
	switch s.Decay {
	case "", DecayLinear:
	case DecayExponential:
		if s.Start == 0 || s.End == 0 {
			return fmt.Errorf("exponential decay needs non-zero endpoints")
		}
	default:
		return fmt.Errorf("unknown decay %q", s.Decay)
	}
	return nil
}

// At 第 game 局（从 0 开始）的温度，超出 Games 后保持 End
func (s Schedule) At(game int) float64 {
	if game <= 0 {
		return s.Start
	}
	if s.Games <= 1 || game >= s.Games-1 {
		return s.End
	}
	frac := float64(game) / float64(s.Games-1)
	if s.Decay == DecayExponential && s.Start > 0 && s.End > 0 {
		return s.Start * math.Pow(s.End/s.Start, frac)
	}
	return s.Start + (s.End-s.Start)*frac
}
