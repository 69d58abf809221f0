// Package activity holds the static catalog of team activities a session
// can be created for.
package activity

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"github.com/okian/matchup/internal/domain/model"
)

// Built-in activity ids.
const (
	Volleyball = "volleyball"
	League     = "league"
)

// Catalog resolves activity definitions by id.
type Catalog interface {
	// Activity returns the definition for id or model.ErrActivityNotFound.
	Activity(id string) (model.ActivityConfig, error)
	// List returns every known activity sorted by id.
	List() []model.ActivityConfig
}

// StaticCatalog is an immutable Catalog built once at start-up.
type StaticCatalog struct {
	byID map[string]model.ActivityConfig
}

// NewStatic builds a catalog from activities. Every definition is validated
// and ids must be unique.
func NewStatic(activities ...model.ActivityConfig) (*StaticCatalog, error) {
	c := &StaticCatalog{byID: make(map[string]model.ActivityConfig, len(activities))}
	for _, a := range activities {
		if err := a.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[a.ID]; dup {
			return nil, fmt.Errorf("%w: activity %q defined twice", model.ErrInvalidInput, a.ID)
		}
		c.byID[a.ID] = a
	}
	return c, nil
}

// Activity implements Catalog.
func (c *StaticCatalog) Activity(id string) (model.ActivityConfig, error) {
	a, ok := c.byID[id]
	if !ok {
		return model.ActivityConfig{}, fmt.Errorf("%w: %q", model.ErrActivityNotFound, id)
	}
	return a, nil
}

// List implements Catalog.
func (c *StaticCatalog) List() []model.ActivityConfig {
	out := lo.Values(c.byID)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Merge returns defaults overlaid with overrides; an override replaces the
// default with the same id.
func Merge(defaults, overrides []model.ActivityConfig) []model.ActivityConfig {
	seen := lo.Associate(overrides, func(a model.ActivityConfig) (string, struct{}) { return a.ID, struct{}{} })
	out := lo.Filter(defaults, func(a model.ActivityConfig, _ int) bool {
		_, replaced := seen[a.ID]
		return !replaced
	})
	return append(out, overrides...)
}

// Defaults returns the built-in activities.
func Defaults() []model.ActivityConfig {
	return []model.ActivityConfig{
		{
			ID:   Volleyball,
			Name: "Volleyball",
			PositionNames: map[string]string{
				"S":   "Setter",
				"OH":  "Outside Hitter",
				"MB":  "Middle Blocker",
				"OPP": "Opposite",
				"L":   "Libero",
			},
			PositionWeights:    map[string]float64{"S": 1, "OH": 1, "MB": 1, "OPP": 1, "L": 1},
			PositionOrder:      []string{"S", "OH", "MB", "OPP", "L"},
			DefaultComposition: map[string]int{"S": 1, "OH": 2, "MB": 2, "OPP": 1, "L": 0},
		},
		{
			ID:   League,
			Name: "League",
			PositionNames: map[string]string{
				"TOP":     "Top",
				"JUNGLE":  "Jungle",
				"MID":     "Mid",
				"ADC":     "ADC",
				"SUPPORT": "Support",
			},
			PositionWeights:    map[string]float64{"TOP": 1, "JUNGLE": 1, "MID": 1, "ADC": 1, "SUPPORT": 1},
			PositionOrder:      []string{"TOP", "JUNGLE", "MID", "ADC", "SUPPORT"},
			DefaultComposition: map[string]int{"TOP": 1, "JUNGLE": 1, "MID": 1, "ADC": 1, "SUPPORT": 1},
		},
	}
}
