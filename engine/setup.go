package engine

import (
	"errors"
	"fmt"

	"go-splendor/entities"

	"golang.org/x/exp/rand"
)

const (
	MinPlayers       = 2
	MaxPlayers       = 4
	DefaultWildcards = 5
)

// Setup 开局参数，牌和贵族数据由外部提供
type Setup struct {
	GameID       string
	PlayerIDs    []string
	Decks        [NumTiers][]entities.Card
	Objectives   []entities.Objective
	GemSupply    map[int]int // 人数 -> 每种费用色的数量
	Wildcards    int
	PointTarget  int
	VisibleSlots int
}

// DefaultGemSupply 2 人 4 个，3 人 5 个，4 人 7 个
func DefaultGemSupply(players int) int {
	switch players {
	case 2:
		return 4
	case 3:
		return 5
	default:
		return 7
	}
}

// NewGame 洗牌、发明牌、翻开 人数+1 个贵族
func NewGame(setup Setup, rng *rand.Rand) (*GameState, error) {
	n := len(setup.PlayerIDs)
	if n < MinPlayers || n > MaxPlayers {
		return nil, fmt.Errorf("player count %d out of range [%d,%d]", n, MinPlayers, MaxPlayers)
	}
	if rng == nil {
		return nil, errors.New("nil rng")
	}
	seen := make(map[string]bool, n)
	for _, id := range setup.PlayerIDs {
		if id == "" || seen[id] {
			return nil, fmt.Errorf("invalid or duplicate player id %q", id)
		}
		seen[id] = true
	}

	perColor := DefaultGemSupply(n)
	if v, ok := setup.GemSupply[n]; ok && v > 0 {
		perColor = v
	}
	wild := setup.Wildcards
	if wild <= 0 {
		wild = DefaultWildcards
	}
	var supply entities.Gems
	for _, c := range entities.CostColors {
		supply[c] = perColor
	}
	supply[entities.Gold] = wild

	var decks [NumTiers][]entities.Card
	for i, deck := range setup.Decks {
		d := append([]entities.Card(nil), deck...)
		rng.Shuffle(len(d), func(a, b int) { d[a], d[b] = d[b], d[a] })
		decks[i] = d
	}
	slots := setup.VisibleSlots
	if slots <= 0 {
		slots = VisibleSlots
	}

	objectives := append([]entities.Objective(nil), setup.Objectives...)
	rng.Shuffle(len(objectives), func(a, b int) { objectives[a], objectives[b] = objectives[b], objectives[a] })
	if len(objectives) > n+1 {
		objectives = objectives[:n+1]
	}
	for i := range objectives {
		if objectives[i].Points == 0 {
			objectives[i].Points = entities.ObjectivePoints
		}
	}

	target := setup.PointTarget
	if target <= 0 {
		target = DefaultPointTarget
	}

	players := make([]Player, n)
	for i, id := range setup.PlayerIDs {
		players[i] = NewPlayer(id)
	}

	return &GameState{
		ID:          setup.GameID,
		Bank:        NewGemBank(supply),
		Market:      NewMarket(decks, slots),
		Players:     players,
		Objectives:  objectives,
		PointTarget: target,
		TriggeredBy: -1,
	}, nil
}
