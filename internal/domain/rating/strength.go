package rating

import (
	"math"

	"github.com/okian/matchup/internal/domain/model"
)

// Member is a player together with the position they were assigned to.
// An empty Position means "unassigned": the first eligible position counts.
type Member struct {
	Player   model.Player
	Position string
}

// ResolvedPosition returns the position a member's rating is read at.
func (mb Member) ResolvedPosition() string {
	if mb.Position != "" {
		return mb.Position
	}
	if len(mb.Player.Positions) > 0 {
		return mb.Player.Positions[0]
	}
	return ""
}

// Strength summarises one team.
type Strength struct {
	TotalRating   float64 `json:"total_rating"`
	AverageRating float64 `json:"average_rating"`
	PlayerCount   int     `json:"player_count"`
}

// Balance summarises a set of teams.
type Balance struct {
	IsBalanced    bool       `json:"is_balanced"`
	MaxDifference float64    `json:"max_difference"`
	Teams         []Strength `json:"teams"`
}

// WeightedRating returns a member's contribution to team strength.
func WeightedRating(mb Member, weights map[string]float64, defaultRating float64) float64 {
	pos := mb.ResolvedPosition()
	return mb.Player.Rating(pos, defaultRating) * model.PositionWeight(weights, pos)
}

// TeamStrength sums weighted ratings of members at their assigned positions.
func (m *Model) TeamStrength(members []Member, weights map[string]float64) Strength {
	s := Strength{PlayerCount: len(members)}
	for _, mb := range members {
		s.TotalRating += WeightedRating(mb, weights, m.p.InitialRating)
	}
	if s.PlayerCount > 0 {
		s.AverageRating = s.TotalRating / float64(s.PlayerCount)
	}
	return s
}

// EvaluateBalance computes per-team strength and the spread between the
// strongest and weakest team.
func (m *Model) EvaluateBalance(teams [][]Member, weights map[string]float64) Balance {
	b := Balance{Teams: make([]Strength, len(teams))}
	if len(teams) == 0 {
		b.IsBalanced = true
		return b
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for i, members := range teams {
		s := m.TeamStrength(members, weights)
		b.Teams[i] = s
		lo = math.Min(lo, s.TotalRating)
		hi = math.Max(hi, s.TotalRating)
	}
	b.MaxDifference = hi - lo
	b.IsBalanced = b.MaxDifference < m.p.TeamBalancedThreshold
	return b
}
