package model

import (
	"fmt"
	"slices"
	"sort"
)

// DefaultPositionWeight applies to positions without an explicit weight.
const DefaultPositionWeight = 1.0

// ActivityConfig is static data describing a team activity. The engine only
// reads it.
type ActivityConfig struct {
	ID                 string             `json:"id" koanf:"id"`
	Name               string             `json:"name" koanf:"name"`
	PositionNames      map[string]string  `json:"position_names" koanf:"position_names"`
	PositionWeights    map[string]float64 `json:"position_weights" koanf:"position_weights"`
	PositionOrder      []string           `json:"position_order" koanf:"position_order"`
	DefaultComposition map[string]int     `json:"default_composition" koanf:"default_composition"`
}

// PositionWeight resolves position in weights. Missing and negative
// entries fall back to DefaultPositionWeight.
func PositionWeight(weights map[string]float64, position string) float64 {
	if w, ok := weights[position]; ok && w >= 0 {
		return w
	}
	return DefaultPositionWeight
}

// HasPosition reports whether position belongs to the activity.
func (a ActivityConfig) HasPosition(position string) bool {
	if slices.Contains(a.PositionOrder, position) {
		return true
	}
	_, ok := a.PositionNames[position]
	return ok
}

// OrderedPositions returns the positions of composition in placement order:
// the declared PositionOrder first, then any remaining codes sorted.
func (a ActivityConfig) OrderedPositions(composition map[string]int) []string {
	out := make([]string, 0, len(composition))
	for _, pos := range a.PositionOrder {
		if composition[pos] > 0 {
			out = append(out, pos)
		}
	}
	var rest []string
	for pos, n := range composition {
		if n > 0 && !slices.Contains(out, pos) {
			rest = append(rest, pos)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// TeamSize returns the number of slots one team has under composition.
func TeamSize(composition map[string]int) int {
	n := 0
	for _, c := range composition {
		if c > 0 {
			n += c
		}
	}
	return n
}

// Validate checks the activity definition for obvious mistakes.
func (a ActivityConfig) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: activity id is empty", ErrInvalidInput)
	}
	if len(a.PositionOrder) == 0 {
		return fmt.Errorf("%w: activity %s declares no positions", ErrInvalidInput, a.ID)
	}
	for pos, w := range a.PositionWeights {
		if w < 0 {
			return fmt.Errorf("%w: activity %s has negative weight for %q", ErrInvalidInput, a.ID, pos)
		}
	}
	for pos, n := range a.DefaultComposition {
		if n < 0 {
			return fmt.Errorf("%w: activity %s has negative count for %q", ErrInvalidInput, a.ID, pos)
		}
		if !slices.Contains(a.PositionOrder, pos) {
			return fmt.Errorf("%w: activity %s composes unknown position %q", ErrInvalidInput, a.ID, pos)
		}
	}
	return nil
}
