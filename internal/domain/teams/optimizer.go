// Package teams partitions a roster into evenly matched teams under a
// per-team position composition.
//
// Optimize runs two deterministic phases. A constrained greedy pass fills
// slots position by position, best available player first, round-robin
// across teams. A first-improvement local search then swaps players between
// teams while doing so narrows the spread of weighted team totals.
package teams

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/okian/matchup/internal/domain/model"
	"github.com/okian/matchup/internal/domain/rating"
)

// Default optimizer configuration constants.
const (
	defaultMaxIterations = 100
	defaultBalanceDecay  = 1000
	improvementEpsilon   = 1e-9
)

// Request describes one partitioning problem.
type Request struct {
	// Composition maps position code to players required per team.
	Composition map[string]int
	TeamCount   int
	Players     []model.Player
	// Activity supplies placement order and balance weights.
	Activity model.ActivityConfig
}

// Optimizer builds balanced teams.
type Optimizer struct {
	model         *rating.Model
	maxIterations int
	timeBudget    time.Duration
	balanceDecay  float64
	now           func() time.Time
}

// New creates an optimizer that reads defaults and thresholds from m.
func New(m *rating.Model, opts ...Option) *Optimizer {
	o := &Optimizer{
		model:         m,
		maxIterations: defaultMaxIterations,
		balanceDecay:  defaultBalanceDecay,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// slot is one (team, position, occurrence) seat; player is an index into
// the request's player list, or -1 when empty.
type slot struct {
	team       int
	position   string
	occurrence int
	player     int
}

// state is the working assignment shared by both phases.
type state struct {
	req       Request
	initial   float64
	slots     []slot
	teamSlots [][]int
	totals    []float64
}

// Optimize assigns players to teams. Pools too small for the composition
// produce partially filled teams and a non-empty Unassigned list rather
// than an error. ctx is checked between local-search passes.
func (o *Optimizer) Optimize(ctx context.Context, req Request) (Result, error) {
	if req.TeamCount < 1 {
		return Result{}, fmt.Errorf("%w: team count must be at least 1, got %d", model.ErrInvalidInput, req.TeamCount)
	}
	if model.TeamSize(req.Composition) == 0 {
		return Result{}, fmt.Errorf("%w: composition requires no players", model.ErrInvalidInput)
	}

	st := o.construct(req)
	initialSpread := spread(st.totals)
	passes, swaps := o.refine(ctx, st)
	return o.assemble(st, initialSpread, passes, swaps), nil
}

// construct runs the greedy placement phase.
func (o *Optimizer) construct(req Request) *state {
	st := &state{
		req:       req,
		initial:   o.model.Params().InitialRating,
		teamSlots: make([][]int, req.TeamCount),
		totals:    make([]float64, req.TeamCount),
	}
	positions := req.Activity.OrderedPositions(req.Composition)

	// Occurrence-major layout so consecutive open slots of a position
	// belong to consecutive teams.
	openByPosition := make(map[string][]int, len(positions))
	for _, pos := range positions {
		for occ := 0; occ < req.Composition[pos]; occ++ {
			for team := 0; team < req.TeamCount; team++ {
				openByPosition[pos] = append(openByPosition[pos], len(st.slots))
				st.slots = append(st.slots, slot{team: team, position: pos, occurrence: occ, player: -1})
			}
		}
	}
	for i, s := range st.slots {
		st.teamSlots[s.team] = append(st.teamSlots[s.team], i)
	}

	order := lo.Range(len(req.Players))
	sort.SliceStable(order, func(i, j int) bool {
		return req.Players[order[i]].BestRating(st.initial) > req.Players[order[j]].BestRating(st.initial)
	})

	assigned := make([]bool, len(req.Players))
	for _, pos := range positions {
		candidates := lo.Filter(order, func(idx int, _ int) bool {
			return !assigned[idx] && req.Players[idx].Eligible(pos)
		})
		sort.SliceStable(candidates, func(i, j int) bool {
			return req.Players[candidates[i]].Rating(pos, st.initial) > req.Players[candidates[j]].Rating(pos, st.initial)
		})
		open := openByPosition[pos]
		for i := 0; i < len(open) && i < len(candidates); i++ {
			st.slots[open[i]].player = candidates[i]
			assigned[candidates[i]] = true
		}
	}

	for i := range st.slots {
		st.totals[st.slots[i].team] += st.contribution(st.slots[i].player, st.slots[i].position)
	}
	return st
}

// refine runs the first-improvement swap search and reports the number of
// passes made and swaps applied.
func (o *Optimizer) refine(ctx context.Context, st *state) (int, int) {
	if st.req.TeamCount < 2 {
		return 0, 0
	}
	var deadline time.Time
	if o.timeBudget > 0 {
		deadline = o.now().Add(o.timeBudget)
	}

	best := spread(st.totals)
	passes, swaps := 0, 0
	for passes < o.maxIterations {
		if ctx.Err() != nil || (!deadline.IsZero() && o.now().After(deadline)) {
			break
		}
		passes++
		improved := false
		for a := 0; a < st.req.TeamCount; a++ {
			for b := a + 1; b < st.req.TeamCount; b++ {
				for _, ia := range st.teamSlots[a] {
					for _, ib := range st.teamSlots[b] {
						score, ok := st.trySwap(ia, ib, best)
						if !ok {
							continue
						}
						best = score
						swaps++
						improved = true
					}
				}
			}
		}
		if !improved {
			break
		}
	}
	return passes, swaps
}

// trySwap exchanges the occupants of slots ia and ib when the move is
// allowed and lowers the spread below current.
func (st *state) trySwap(ia, ib int, current float64) (float64, bool) {
	sa, sb := &st.slots[ia], &st.slots[ib]
	if sa.player < 0 || sb.player < 0 {
		return current, false
	}
	pa, pb := st.req.Players[sa.player], st.req.Players[sb.player]
	if sa.position != sb.position && !(pa.Eligible(sb.position) && pb.Eligible(sa.position)) {
		return current, false
	}

	nextA := st.totals[sa.team] - st.contribution(sa.player, sa.position) + st.contribution(sb.player, sa.position)
	nextB := st.totals[sb.team] - st.contribution(sb.player, sb.position) + st.contribution(sa.player, sb.position)

	prevA, prevB := st.totals[sa.team], st.totals[sb.team]
	st.totals[sa.team], st.totals[sb.team] = nextA, nextB
	score := spread(st.totals)
	if score >= current-improvementEpsilon {
		st.totals[sa.team], st.totals[sb.team] = prevA, prevB
		return current, false
	}
	sa.player, sb.player = sb.player, sa.player
	return score, true
}

// contribution is a player's weighted rating at position; empty seats add nothing.
func (st *state) contribution(player int, position string) float64 {
	if player < 0 {
		return 0
	}
	return rating.WeightedRating(rating.Member{Player: st.req.Players[player], Position: position}, st.req.Activity.PositionWeights, st.initial)
}

// spread is the balance score: strongest minus weakest team total.
func spread(totals []float64) float64 {
	if len(totals) == 0 {
		return 0
	}
	low, high := math.Inf(1), math.Inf(-1)
	for _, t := range totals {
		low = math.Min(low, t)
		high = math.Max(high, t)
	}
	return high - low
}
