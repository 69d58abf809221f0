// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// DefaultRating is the rating a player starts with at every position.
const DefaultRating = 1500.0

// Player is a roster member with an independent rating track per position.
//
// Ratings, Comparisons and ComparedWith are always keyed by exactly the
// codes in Positions. Values are treated as immutable: the With* helpers
// return updated copies instead of patching maps in place.
type Player struct {
	ID           string              `json:"id"`
	Name         string              `json:"name"`
	Positions    []string            `json:"positions"`
	Ratings      map[string]float64  `json:"ratings"`
	Comparisons  map[string]int      `json:"comparisons"`
	ComparedWith map[string][]string `json:"compared_with"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// NewPlayer builds a player eligible for the given positions, each starting
// at initialRating with no comparison history.
func NewPlayer(id, name string, positions []string, initialRating float64, now time.Time) Player {
	p := Player{
		ID:           id,
		Name:         strings.TrimSpace(name),
		Ratings:      map[string]float64{},
		Comparisons:  map[string]int{},
		ComparedWith: map[string][]string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return p.WithPositions(positions, initialRating, now)
}

// Eligible reports whether the player may be compared or placed at position.
func (p Player) Eligible(position string) bool {
	return slices.Contains(p.Positions, position)
}

// Rating returns the player's rating at position, or fallback when the
// player has no track there.
func (p Player) Rating(position string, fallback float64) float64 {
	if r, ok := p.Ratings[position]; ok {
		return r
	}
	return fallback
}

// ComparisonCount returns how many comparisons the player has at position.
func (p Player) ComparisonCount(position string) int {
	return p.Comparisons[position]
}

// HasComparedWith reports whether opponentID appears in the player's
// history at position.
func (p Player) HasComparedWith(position, opponentID string) bool {
	return slices.Contains(p.ComparedWith[position], opponentID)
}

// BestRating returns the highest rating across all eligible positions.
func (p Player) BestRating(fallback float64) float64 {
	if len(p.Positions) == 0 {
		return fallback
	}
	best := p.Rating(p.Positions[0], fallback)
	for _, pos := range p.Positions[1:] {
		if r := p.Rating(pos, fallback); r > best {
			best = r
		}
	}
	return best
}

// Clone returns a deep copy of the player.
func (p Player) Clone() Player {
	c := p
	c.Positions = slices.Clone(p.Positions)
	c.Ratings = maps.Clone(p.Ratings)
	c.Comparisons = maps.Clone(p.Comparisons)
	c.ComparedWith = make(map[string][]string, len(p.ComparedWith))
	for pos, ids := range p.ComparedWith {
		c.ComparedWith[pos] = slices.Clone(ids)
	}
	if c.Ratings == nil {
		c.Ratings = map[string]float64{}
	}
	if c.Comparisons == nil {
		c.Comparisons = map[string]int{}
	}
	return c
}

// WithPositions replaces the eligible position set. Tracks for positions
// that are kept survive untouched, new positions start at initialRating,
// and tracks for dropped positions are discarded.
func (p Player) WithPositions(positions []string, initialRating float64, now time.Time) Player {
	c := p.Clone()
	c.Positions = normalizePositions(positions)

	ratings := make(map[string]float64, len(c.Positions))
	counts := make(map[string]int, len(c.Positions))
	history := make(map[string][]string, len(c.Positions))
	for _, pos := range c.Positions {
		if r, ok := c.Ratings[pos]; ok {
			ratings[pos] = r
			counts[pos] = c.Comparisons[pos]
			history[pos] = c.ComparedWith[pos]
			if history[pos] == nil {
				history[pos] = []string{}
			}
			continue
		}
		ratings[pos] = initialRating
		counts[pos] = 0
		history[pos] = []string{}
	}
	c.Ratings, c.Comparisons, c.ComparedWith = ratings, counts, history
	c.UpdatedAt = now
	return c
}

// WithComparisonRecorded applies the result of one comparison at position:
// the new rating, one more comparison, and opponentID appended to history.
func (p Player) WithComparisonRecorded(position string, newRating float64, opponentID string, now time.Time) Player {
	c := p.Clone()
	c.Ratings[position] = newRating
	c.Comparisons[position]++
	c.ComparedWith[position] = append(c.ComparedWith[position], opponentID)
	c.UpdatedAt = now
	return c
}

// Reset restores the rating track at each given position (all positions
// when none are given) to initialRating with an empty history.
func (p Player) Reset(initialRating float64, now time.Time, positions ...string) Player {
	c := p.Clone()
	if len(positions) == 0 {
		positions = c.Positions
	}
	for _, pos := range positions {
		if !c.Eligible(pos) {
			continue
		}
		c.Ratings[pos] = initialRating
		c.Comparisons[pos] = 0
		c.ComparedWith[pos] = []string{}
	}
	c.UpdatedAt = now
	return c
}

// Validate checks the key-set invariant shared by the three rating maps.
func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: player id is empty", ErrInvalidInput)
	}
	if p.Name == "" {
		return fmt.Errorf("%w: player name is empty", ErrInvalidInput)
	}
	for _, m := range []int{len(p.Ratings), len(p.Comparisons), len(p.ComparedWith)} {
		if m != len(p.Positions) {
			return fmt.Errorf("%w: player %s has rating tracks for %d positions, expected %d", ErrInvalidInput, p.ID, m, len(p.Positions))
		}
	}
	for _, pos := range p.Positions {
		_, okR := p.Ratings[pos]
		_, okC := p.Comparisons[pos]
		_, okH := p.ComparedWith[pos]
		if !okR || !okC || !okH {
			return fmt.Errorf("%w: player %s is missing a track for %q", ErrInvalidInput, p.ID, pos)
		}
		if p.Comparisons[pos] < 0 {
			return fmt.Errorf("%w: player %s has a negative comparison count at %q", ErrInvalidInput, p.ID, pos)
		}
	}
	return nil
}

// SameName compares player names case-insensitively.
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// normalizePositions trims codes and drops blanks and duplicates while
// keeping the caller's order.
func normalizePositions(positions []string) []string {
	out := make([]string, 0, len(positions))
	for _, pos := range positions {
		pos = strings.TrimSpace(pos)
		if pos == "" || slices.Contains(out, pos) {
			continue
		}
		out = append(out, pos)
	}
	return out
}
