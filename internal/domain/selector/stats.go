package selector

import (
	"math"
	"sort"

	"github.com/samber/lo"

	"github.com/okian/matchup/internal/domain/model"
)

// RankEntry is one row of a per-position ranking.
type RankEntry struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Rating      float64 `json:"rating"`
	Comparisons int     `json:"comparisons"`
	Rank        int     `json:"rank"`
}

// PositionRanking lists eligible players at one position, best first.
type PositionRanking struct {
	Position string      `json:"position"`
	Rankings []RankEntry `json:"rankings"`
}

// PositionStats reports comparison coverage at one position.
type PositionStats struct {
	EligiblePlayers      int `json:"eligible_players"`
	CompletedPairs       int `json:"completed_pairs"`
	TotalPossiblePairs   int `json:"total_possible_pairs"`
	CompletionPercentage int `json:"completion_percentage"`
}

// Stats reports comparison coverage for a whole session.
type Stats struct {
	TotalComparisons     int                      `json:"total_comparisons"`
	CompletedPairs       int                      `json:"completed_pairs"`
	TotalPossiblePairs   int                      `json:"total_possible_pairs"`
	CompletionPercentage int                      `json:"completion_percentage"`
	Positions            []string                 `json:"positions"`
	ByPosition           map[string]PositionStats `json:"by_position"`
}

// Rankings orders eligible players by rating at each requested position.
// Equal ratings keep roster order.
func (s *Selector) Rankings(players []model.Player, position string) []PositionRanking {
	initial := s.model.Params().InitialRating
	positions := candidatePositions(players, position)
	out := make([]PositionRanking, 0, len(positions))
	for _, pos := range positions {
		eligible := lo.Filter(players, func(p model.Player, _ int) bool { return p.Eligible(pos) })
		sort.SliceStable(eligible, func(i, j int) bool {
			return eligible[i].Rating(pos, initial) > eligible[j].Rating(pos, initial)
		})
		entries := make([]RankEntry, len(eligible))
		for i, p := range eligible {
			entries[i] = RankEntry{
				ID:          p.ID,
				Name:        p.Name,
				Rating:      p.Rating(pos, initial),
				Comparisons: p.ComparisonCount(pos),
				Rank:        i + 1,
			}
		}
		out = append(out, PositionRanking{Position: pos, Rankings: entries})
	}
	return out
}

// ComparisonStats counts distinct compared pairs against possible pairs.
func ComparisonStats(players []model.Player, records []model.Comparison) Stats {
	st := Stats{
		TotalComparisons: len(records),
		Positions:        candidatePositions(players, ""),
		ByPosition:       map[string]PositionStats{},
	}
	for _, pos := range st.Positions {
		eligible := lo.Filter(players, func(p model.Player, _ int) bool { return p.Eligible(pos) })
		n := len(eligible)
		ids := lo.Associate(eligible, func(p model.Player) (string, struct{}) { return p.ID, struct{}{} })
		completed := map[string]struct{}{}
		for _, p := range eligible {
			for _, other := range p.ComparedWith[pos] {
				// Partners removed from the roster no longer count.
				if _, ok := ids[other]; ok {
					completed[pairKey(p.ID, other)] = struct{}{}
				}
			}
		}
		ps := PositionStats{
			EligiblePlayers:    n,
			CompletedPairs:     len(completed),
			TotalPossiblePairs: n * (n - 1) / 2,
		}
		ps.CompletionPercentage = percentage(ps.CompletedPairs, ps.TotalPossiblePairs)
		st.ByPosition[pos] = ps
		st.CompletedPairs += ps.CompletedPairs
		st.TotalPossiblePairs += ps.TotalPossiblePairs
	}
	st.CompletionPercentage = percentage(st.CompletedPairs, st.TotalPossiblePairs)
	return st
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + ":" + b
}

func percentage(done, possible int) int {
	if possible == 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(possible)))
}
