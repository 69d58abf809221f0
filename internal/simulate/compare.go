package simulate

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// outcome classifies one comparison submission.
type outcome int

const (
	outcomeRecorded outcome = iota
	outcomeDuplicate
	outcomeConflict
	outcomeFailed
)

// judge decides a comparison from hidden skills: a draw with probability
// drawRate, otherwise p1 wins with the logistic expectation of the skill gap.
func judge(p1, p2 Player, position string, drawRate float64, rng *rand.Rand) *string {
	if rng.Float64() < drawRate {
		return nil
	}
	expected := 1 / (1 + math.Pow(10, (p2.Skill[position]-p1.Skill[position])/eloScale))
	if rng.Float64() < expected {
		return &p1.ID
	}
	return &p2.ID
}

// runComparisons asks for the next pair and records a judged outcome,
// Comparisons times across Workers goroutines.
func runComparisons(ctx context.Context, config *Config, client *HTTPClient, sessionID string, players []Player, stats *Stats) error {
	log.Printf("recording %d comparisons with %d workers...", config.Comparisons, config.Workers)

	byID := lo.Associate(players, func(p Player) (string, Player) { return p.ID, p })

	var (
		sent, recorded, duplicate, conflict, failed int64
		mu                                          sync.Mutex
		lastReport                                  atomic.Int64
	)

	work := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for w := 0; w < config.Workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			rng := newRand(config.Seed + uint64(workerID) + 1)

			for range work {
				select {
				case <-ctx.Done():
					return
				default:
				}

				var sug Suggestion
				if err := client.get(ctx, "/sessions/"+sessionID+"/next", &sug); err != nil {
					atomic.AddInt64(&failed, 1)
					if config.Verbose {
						log.Printf("next comparison failed: %v", err)
					}
					continue
				}
				mu.Lock()
				stats.Reasons[sug.Reason]++
				mu.Unlock()

				p1, ok1 := byID[sug.Player1.ID]
				p2, ok2 := byID[sug.Player2.ID]
				if !ok1 || !ok2 {
					atomic.AddInt64(&failed, 1)
					continue
				}

				body := map[string]any{
					"player1":    p1.ID,
					"player2":    p2.ID,
					"winner":     judge(p1, p2, sug.Position, config.DrawRate, rng),
					"position":   sug.Position,
					"request_id": uuid.NewString(),
				}
				submits := 1
				if rng.Float64() < config.ReplayRate {
					submits = 2
				}
				for i := 0; i < submits; i++ {
					atomic.AddInt64(&sent, 1)
					switch submitComparison(ctx, client, sessionID, body) {
					case outcomeRecorded:
						atomic.AddInt64(&recorded, 1)
					case outcomeDuplicate:
						atomic.AddInt64(&duplicate, 1)
					case outcomeConflict:
						atomic.AddInt64(&conflict, 1)
					default:
						atomic.AddInt64(&failed, 1)
					}
				}

				now := time.Now().UnixNano()
				if last := lastReport.Load(); now-last >= int64(reportInterval) && lastReport.CompareAndSwap(last, now) {
					log.Printf("progress: %d recorded, %d duplicate, %d failed", atomic.LoadInt64(&recorded), atomic.LoadInt64(&duplicate), atomic.LoadInt64(&failed))
				}
			}
		}(w)
	}

	go func() {
		defer close(work)
		for i := 0; i < config.Comparisons; i++ {
			select {
			case <-ctx.Done():
				return
			case work <- i:
			}
		}
	}()

	wg.Wait()

	stats.ComparisonsSent = int(sent)
	stats.ComparisonsRecorded = int(recorded)
	stats.Duplicates = int(duplicate)
	stats.Conflicts = int(conflict)
	stats.Failed = int(failed)

	log.Printf("comparisons completed: recorded=%d duplicate=%d conflict=%d failed=%d",
		stats.ComparisonsRecorded, stats.Duplicates, stats.Conflicts, stats.Failed)

	if stats.ComparisonsRecorded == 0 && config.Comparisons > 0 {
		return fmt.Errorf("no comparison was recorded")
	}
	return ctx.Err()
}

// submitComparison posts one judgment and classifies the response.
func submitComparison(ctx context.Context, client *HTTPClient, sessionID string, body map[string]any) outcome {
	status, err := client.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/comparisons", body, nil,
		http.StatusCreated, http.StatusOK)
	switch {
	case err == nil && status == http.StatusCreated:
		return outcomeRecorded
	case err == nil && status == http.StatusOK:
		return outcomeDuplicate
	case status == http.StatusConflict:
		return outcomeConflict
	default:
		return outcomeFailed
	}
}
