package simulate

import (
	"context"
	"fmt"
	"log"
	"sort"
)

// verifyRankings fetches every position's leaderboard, checks it is ordered
// and measures how well it recovers the hidden skills.
func verifyRankings(ctx context.Context, config *Config, client *HTTPClient, sessionID string, players []Player, stats *Stats) error {
	log.Println("verifying rankings...")

	var rankings []Ranking
	if err := client.get(ctx, "/sessions/"+sessionID+"/rankings", &rankings); err != nil {
		return fmt.Errorf("fetch rankings: %w", err)
	}
	if len(rankings) == 0 {
		return fmt.Errorf("no rankings to verify")
	}

	skills := make(map[string]map[string]float64, len(players))
	for _, p := range players {
		skills[p.ID] = p.Skill
	}

	for _, r := range rankings {
		for i := 1; i < len(r.Rankings); i++ {
			if r.Rankings[i].Rating > r.Rankings[i-1].Rating {
				return fmt.Errorf("%s rankings not sorted: entry %d outranks entry %d", r.Position, i, i-1)
			}
		}
		if len(r.Rankings) < 3 {
			continue
		}

		hidden := make([]float64, len(r.Rankings))
		for i, e := range r.Rankings {
			hidden[i] = skills[e.ID][r.Position]
		}
		rho := spearman(hidden)
		stats.Correlation[r.Position] = rho

		if config.Verbose {
			top := min(5, len(r.Rankings))
			log.Printf("top %d at %s (rank correlation %.2f):", top, r.Position, rho)
			for i := 0; i < top; i++ {
				e := r.Rankings[i]
				log.Printf("   %d. %s rating=%.1f hidden=%.1f", e.Rank, e.Name, e.Rating, hidden[i])
			}
		}

		if config.MinCorr > 0 && rho < config.MinCorr {
			return fmt.Errorf("%s rank correlation %.2f below %.2f", r.Position, rho, config.MinCorr)
		}
	}

	log.Println("ranking verification completed")
	return nil
}

// spearman returns the rank correlation between the given order (index 0 is
// ranked first) and the order the hidden values imply.
func spearman(hidden []float64) float64 {
	n := len(hidden)
	if n < 2 {
		return 1
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return hidden[idx[a]] > hidden[idx[b]] })

	var sum float64
	for trueRank, observed := range idx {
		d := float64(trueRank - observed)
		sum += d * d
	}
	nf := float64(n)
	return 1 - 6*sum/(nf*(nf*nf-1))
}
