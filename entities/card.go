package entities

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Color 宝石颜色：五种费用色 + 黄金(万能)
type Color int

const (
	White Color = iota
	Blue
	Green
	Red
	Black
	Gold
)

const (
	NumCostColors = 5
	NumColors     = 6
)

// CostColors 费用色的固定顺序，特征向量和枚举都依赖这个顺序
var CostColors = [NumCostColors]Color{White, Blue, Green, Red, Black}

// AllColors 包含黄金
var AllColors = [NumColors]Color{White, Blue, Green, Red, Black, Gold}

var colorNames = [NumColors]string{"White", "Blue", "Green", "Red", "Black", "Gold"}

func (c Color) String() string {
	if c < 0 || int(c) >= NumColors {
		return fmt.Sprintf("Color(%d)", int(c))
	}
	return colorNames[c]
}

func (c Color) IsWildcard() bool { return c == Gold }

func ParseColor(s string) (Color, error) {
	for i, name := range colorNames {
		if strings.EqualFold(name, s) {
			return Color(i), nil
		}
	}
	return 0, fmt.Errorf("未知的宝石颜色: %q", s)
}

func (c Color) MarshalText() ([]byte, error) {
	if c < 0 || int(c) >= NumColors {
		return nil, fmt.Errorf("未知的宝石颜色: %d", int(c))
	}
	return []byte(colorNames[c]), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Gems 按颜色计数。值类型，复制即快照
type Gems [NumColors]int

func (g Gems) Total() int {
	n := 0
	for _, v := range g {
		n += v
	}
	return n
}

func (g Gems) Add(o Gems) Gems {
	for i := range g {
		g[i] += o[i]
	}
	return g
}

func (g Gems) Sub(o Gems) Gems {
	for i := range g {
		g[i] -= o[i]
	}
	return g
}

func (g Gems) IsZero() bool { return g == Gems{} }

// NonNegative 所有颜色都 >= 0
func (g Gems) NonNegative() bool {
	for _, v := range g {
		if v < 0 {
			return false
		}
	}
	return true
}

// Covers 每个颜色都不少于 o
func (g Gems) Covers(o Gems) bool {
	for i := range g {
		if g[i] < o[i] {
			return false
		}
	}
	return true
}

func (g Gems) ToMap() map[string]int {
	m := make(map[string]int, NumColors)
	for _, c := range AllColors {
		m[c.String()] = g[c]
	}
	return m
}

// GemsFromMap 把前端/配置里的 {"Blue":2} 转成 Gems
func GemsFromMap(m map[string]int) (Gems, error) {
	var g Gems
	for name, v := range m {
		c, err := ParseColor(name)
		if err != nil {
			return Gems{}, err
		}
		g[c] = v
	}
	return g, nil
}

func (g Gems) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.ToMap())
}

func (g *Gems) UnmarshalJSON(b []byte) error {
	var m map[string]int
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	parsed, err := GemsFromMap(m)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

func (g Gems) String() string {
	parts := make([]string, 0, NumColors)
	for _, c := range AllColors {
		if g[c] != 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", c, g[c]))
		}
	}
	return "{" + strings.Join(parts, " ") + "}"
}

// Card 发展卡，发牌后不可变
type Card struct {
	ID     int   `json:"id"`
	Tier   int   `json:"tier"`   // 1/2/3
	Color  Color `json:"color"`  // 折扣颜色
	Points int   `json:"points"` // 荣誉分
	Cost   Gems  `json:"cost"`   // 五色费用，不含黄金
}

// Objective 贵族，满足折扣门槛即可获得
type Objective struct {
	ID          string `json:"id"` // e.g., "N1"
	Requirement Gems   `json:"requirement"`
	Points      int    `json:"points"` // 固定 3 分
}

const ObjectivePoints = 3
