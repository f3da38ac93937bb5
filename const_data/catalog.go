package const_data

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"go-splendor/entities"

	"gopkg.in/yaml.v3"
)

//go:embed cards.yaml
var defaultCatalog []byte

// Catalog 全部发展卡（按等级分组）和贵族
type Catalog struct {
	Tiers      [3][]entities.Card
	Objectives []entities.Objective
}

type cardDoc struct {
	ID     int            `yaml:"id"`
	Tier   int            `yaml:"tier"`
	Color  string         `yaml:"color"`
	Points int            `yaml:"points"`
	Cost   map[string]int `yaml:"cost"`
}

type objectiveDoc struct {
	ID          string         `yaml:"id"`
	Points      int            `yaml:"points"`
	Requirement map[string]int `yaml:"requirement"`
}

type catalogDoc struct {
	Cards      []cardDoc      `yaml:"cards"`
	Objectives []objectiveDoc `yaml:"objectives"`
}

var (
	defaultOnce sync.Once
	defaultData *Catalog
	defaultErr  error
)

// Default 内置的卡牌数据，只解析一次。返回值共享，调用方不要修改
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultData, defaultErr = Parse(defaultCatalog)
	})
	return defaultData, defaultErr
}

// LoadFile 从外部 YAML 读取，格式同内置 cards.yaml
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(b)
}

func Parse(b []byte) (*Catalog, error) {
	var doc catalogDoc
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("解析卡牌数据失败: %w", err)
	}

	cat := &Catalog{}
	seen := make(map[int]bool, len(doc.Cards))
	for _, d := range doc.Cards {
		if d.Tier < 1 || d.Tier > len(cat.Tiers) {
			return nil, fmt.Errorf("card %d: invalid tier %d", d.ID, d.Tier)
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("card %d: duplicate id", d.ID)
		}
		seen[d.ID] = true
		color, err := entities.ParseColor(d.Color)
		if err != nil || color.IsWildcard() {
			return nil, fmt.Errorf("card %d: invalid color %q", d.ID, d.Color)
		}
		cost, err := costFromMap(d.Cost)
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", d.ID, err)
		}
		cat.Tiers[d.Tier-1] = append(cat.Tiers[d.Tier-1], entities.Card{
			ID:     d.ID,
			Tier:   d.Tier,
			Color:  color,
			Points: d.Points,
			Cost:   cost,
		})
	}

	for _, d := range doc.Objectives {
		req, err := costFromMap(d.Requirement)
		if err != nil {
			return nil, fmt.Errorf("objective %s: %w", d.ID, err)
		}
		points := d.Points
		if points == 0 {
			points = entities.ObjectivePoints
		}
		cat.Objectives = append(cat.Objectives, entities.Objective{ID: d.ID, Requirement: req, Points: points})
	}
	return cat, nil
}

// costFromMap 费用里不能出现黄金和负数
func costFromMap(m map[string]int) (entities.Gems, error) {
	g, err := entities.GemsFromMap(m)
	if err != nil {
		return entities.Gems{}, err
	}
	if g[entities.Gold] != 0 {
		return entities.Gems{}, fmt.Errorf("cost cannot include %s", entities.Gold)
	}
	if !g.NonNegative() {
		return entities.Gems{}, fmt.Errorf("negative cost %s", g)
	}
	return g, nil
}

// Decks 返回一份可以随意洗牌的拷贝
func (c *Catalog) Decks() [3][]entities.Card {
	var out [3][]entities.Card
	for i, tier := range c.Tiers {
		out[i] = append([]entities.Card(nil), tier...)
	}
	return out
}
