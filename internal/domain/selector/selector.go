// Package selector decides which pair of players to compare next and turns
// submitted outcomes into rating updates and history records.
package selector

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/okian/matchup/internal/domain/model"
	"github.com/okian/matchup/internal/domain/rating"
)

// Priority contributions used to rank candidate pairs.
const (
	neverComparedBonus   = 100
	lowComparisonLimit   = 5
	lowComparisonStep    = 10
	closeRatingBonus     = 20
	closeRatingThreshold = 100
)

// Reason explains why a pair was suggested.
type Reason string

// Suggestion reasons, in priority order.
const (
	ReasonNeverCompared  Reason = "never_compared"
	ReasonLowComparisons Reason = "low_comparisons"
	ReasonCloseRating    Reason = "close_rating"
	ReasonStandard       Reason = "standard"
)

// Suggestion is the next pair to present for a head-to-head judgment.
type Suggestion struct {
	Player1  model.Player `json:"player1"`
	Player2  model.Player `json:"player2"`
	Position string       `json:"position"`
	Priority int          `json:"priority"`
	Reason   Reason       `json:"reason"`
}

// Outcome is the result of recording one comparison.
type Outcome struct {
	Player1    model.Player     `json:"player1"`
	Player2    model.Player     `json:"player2"`
	Comparison model.Comparison `json:"comparison"`
	PoolSize   int              `json:"pool_size"`
}

// Selector picks comparison pairs and applies outcomes.
type Selector struct {
	model *rating.Model
	now   func() time.Time
	newID func() string
}

// Option applies a configuration option to the Selector.
type Option func(*Selector)

// WithClock overrides the time source stamped on comparison records.
func WithClock(now func() time.Time) Option {
	return func(s *Selector) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how comparison record ids are minted.
func WithIDGenerator(gen func() string) Option {
	return func(s *Selector) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// New creates a selector backed by the given rating model.
func New(m *rating.Model, opts ...Option) *Selector {
	s := &Selector{
		model: m,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next returns the highest-priority pair, or false when no position has at
// least two eligible players. An empty position considers every position
// any player is eligible for.
func (s *Selector) Next(players []model.Player, position string) (Suggestion, bool) {
	if len(players) < 2 {
		return Suggestion{}, false
	}
	var (
		best  Suggestion
		found bool
	)
	for _, pos := range candidatePositions(players, position) {
		eligible := lo.Filter(players, func(p model.Player, _ int) bool { return p.Eligible(pos) })
		for i := 0; i < len(eligible); i++ {
			for j := i + 1; j < len(eligible); j++ {
				priority, reason := s.score(eligible[i], eligible[j], pos)
				if !found || priority > best.Priority {
					best = Suggestion{
						Player1:  eligible[i],
						Player2:  eligible[j],
						Position: pos,
						Priority: priority,
						Reason:   reason,
					}
					found = true
				}
			}
		}
	}
	return best, found
}

// score accumulates the priority of comparing a and b at position. The
// reason names the first criterion that contributed.
func (s *Selector) score(a, b model.Player, position string) (int, Reason) {
	priority := 0
	reason := ReasonStandard
	note := func(r Reason) {
		if reason == ReasonStandard {
			reason = r
		}
	}

	if !a.HasComparedWith(position, b.ID) && !b.HasComparedWith(position, a.ID) {
		priority += neverComparedBonus
		note(ReasonNeverCompared)
	}
	if least := min(a.ComparisonCount(position), b.ComparisonCount(position)); least < lowComparisonLimit {
		priority += (lowComparisonLimit - least) * lowComparisonStep
		note(ReasonLowComparisons)
	}
	initial := s.model.Params().InitialRating
	if math.Abs(a.Rating(position, initial)-b.Rating(position, initial)) < closeRatingThreshold {
		priority += closeRatingBonus
		note(ReasonCloseRating)
	}
	return priority, reason
}

// Record applies a comparison outcome at position. winnerID is nil for a
// draw. The returned players are updated copies; players is not modified.
func (s *Selector) Record(players []model.Player, player1ID, player2ID string, winnerID *string, position string) (Outcome, error) {
	p1, ok1 := lo.Find(players, func(p model.Player) bool { return p.ID == player1ID })
	p2, ok2 := lo.Find(players, func(p model.Player) bool { return p.ID == player2ID })
	switch {
	case !ok1:
		return Outcome{}, fmt.Errorf("%w: %s", model.ErrPlayerNotFound, player1ID)
	case !ok2:
		return Outcome{}, fmt.Errorf("%w: %s", model.ErrPlayerNotFound, player2ID)
	case player1ID == player2ID:
		return Outcome{}, fmt.Errorf("%w: a player cannot be compared with themselves", model.ErrInvalidInput)
	case !p1.Eligible(position):
		return Outcome{}, fmt.Errorf("%w: %s is not eligible for %q", model.ErrInvalidPosition, p1.Name, position)
	case !p2.Eligible(position):
		return Outcome{}, fmt.Errorf("%w: %s is not eligible for %q", model.ErrInvalidPosition, p2.Name, position)
	}
	if winnerID != nil && *winnerID != player1ID && *winnerID != player2ID {
		return Outcome{}, fmt.Errorf("%w: winner %s did not take part", model.ErrInvalidInput, *winnerID)
	}

	pool := model.EligibleCount(players, position)
	initial := s.model.Params().InitialRating
	side1 := rating.Side{Rating: p1.Rating(position, initial), Comparisons: p1.ComparisonCount(position)}
	side2 := rating.Side{Rating: p2.Rating(position, initial), Comparisons: p2.ComparisonCount(position)}

	var r1, r2 rating.SideResult
	switch {
	case winnerID == nil:
		ch := s.model.Draw(side1, side2, pool)
		r1, r2 = ch.First, ch.Second
	case *winnerID == player1ID:
		ch := s.model.Outcome(side1, side2, pool)
		r1, r2 = ch.First, ch.Second
	default:
		ch := s.model.Outcome(side2, side1, pool)
		r1, r2 = ch.Second, ch.First
	}

	now := s.now()
	var winner *string
	if winnerID != nil {
		w := *winnerID
		winner = &w
	}
	return Outcome{
		Player1: p1.WithComparisonRecorded(position, r1.NewRating, p2.ID, now),
		Player2: p2.WithComparisonRecorded(position, r2.NewRating, p1.ID, now),
		Comparison: model.Comparison{
			ID:        s.newID(),
			Player1ID: p1.ID,
			Player2ID: p2.ID,
			Position:  position,
			WinnerID:  winner,
			Timestamp: now,
			Player1:   sideChange(p1.ID, r1),
			Player2:   sideChange(p2.ID, r2),
		},
		PoolSize: pool,
	}, nil
}

func sideChange(id string, r rating.SideResult) model.SideChange {
	return model.SideChange{
		PlayerID:  id,
		OldRating: r.OldRating,
		NewRating: r.NewRating,
		Delta:     r.Change,
		KFactor:   r.KFactor,
		Expected:  r.Expected,
	}
}

// candidatePositions returns the positions to scan: the requested one, or
// every eligible position in first-seen roster order.
func candidatePositions(players []model.Player, position string) []string {
	if position != "" {
		return []string{position}
	}
	var out []string
	for _, p := range players {
		for _, pos := range p.Positions {
			if !slices.Contains(out, pos) {
				out = append(out, pos)
			}
		}
	}
	return out
}
