package teams

import (
	"math"

	"github.com/okian/matchup/internal/domain/model"
	"github.com/okian/matchup/internal/domain/rating"
)

// Slot is one seat on a team. PlayerID is empty for an unfilled seat.
type Slot struct {
	Team       int     `json:"team"`
	Position   string  `json:"position"`
	Occurrence int     `json:"occurrence"`
	PlayerID   string  `json:"player_id,omitempty"`
	PlayerName string  `json:"player_name,omitempty"`
	Rating     float64 `json:"rating,omitempty"`
}

// Filled reports whether a player occupies the slot.
func (s Slot) Filled() bool { return s.PlayerID != "" }

// Team is one generated roster.
type Team struct {
	Index         int     `json:"index"`
	Slots         []Slot  `json:"slots"`
	TotalRating   float64 `json:"total_rating"`
	AverageRating float64 `json:"average_rating"`
	PlayerCount   int     `json:"player_count"`
	OpenSlots     int     `json:"open_slots"`
}

// Quality summarises how even the teams are.
type Quality struct {
	// Balance is 1 for identical totals and decays linearly with the spread.
	Balance           float64 `json:"balance"`
	MaxDifference     float64 `json:"max_difference"`
	InitialDifference float64 `json:"initial_difference"`
	IsBalanced        bool    `json:"is_balanced"`
	Iterations        int     `json:"iterations"`
	SwapsApplied      int     `json:"swaps_applied"`
}

// Result is the optimizer's output.
type Result struct {
	Teams      []Team         `json:"teams"`
	Quality    Quality        `json:"quality"`
	Unassigned []model.Player `json:"unassigned"`
}

// assemble turns the working state into a Result.
func (o *Optimizer) assemble(st *state, initialSpread float64, passes, swaps int) Result {
	res := Result{
		Teams:      make([]Team, st.req.TeamCount),
		Unassigned: []model.Player{},
	}
	placed := make([]bool, len(st.req.Players))
	members := make([][]rating.Member, st.req.TeamCount)
	for t := range res.Teams {
		team := Team{Index: t, Slots: make([]Slot, 0, len(st.teamSlots[t]))}
		for _, i := range st.teamSlots[t] {
			s := st.slots[i]
			out := Slot{Team: t, Position: s.position, Occurrence: s.occurrence}
			if s.player >= 0 {
				p := st.req.Players[s.player]
				placed[s.player] = true
				out.PlayerID, out.PlayerName = p.ID, p.Name
				out.Rating = p.Rating(s.position, st.initial)
				members[t] = append(members[t], rating.Member{Player: p, Position: s.position})
			} else {
				team.OpenSlots++
			}
			team.Slots = append(team.Slots, out)
		}
		res.Teams[t] = team
	}

	bal := o.model.EvaluateBalance(members, st.req.Activity.PositionWeights)
	for t, s := range bal.Teams {
		res.Teams[t].TotalRating = s.TotalRating
		res.Teams[t].AverageRating = s.AverageRating
		res.Teams[t].PlayerCount = s.PlayerCount
	}
	for i, p := range st.req.Players {
		if !placed[i] {
			res.Unassigned = append(res.Unassigned, p)
		}
	}

	res.Quality = Quality{
		Balance:           o.balance(bal.MaxDifference),
		MaxDifference:     bal.MaxDifference,
		InitialDifference: initialSpread,
		IsBalanced:        bal.IsBalanced,
		Iterations:        passes,
		SwapsApplied:      swaps,
	}
	return res
}

// balance maps a spread onto [0, 1].
func (o *Optimizer) balance(maxDifference float64) float64 {
	if maxDifference == 0 {
		return 1
	}
	return math.Max(0, 1-maxDifference/o.balanceDecay)
}
