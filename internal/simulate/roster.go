package simulate

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"slices"

	"github.com/samber/lo"

	"github.com/okian/matchup/pkg/logger"
)

// newRand returns the deterministic source a run draws skills and outcomes from.
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// generateRoster builds n players with hidden skills. Primary positions are
// dealt round-robin so every position gets players; about half the roster
// also plays a second position.
func generateRoster(act Activity, n int, spread float64, rng *rand.Rand) []Player {
	order := act.PositionOrder
	players := make([]Player, n)
	for i := range players {
		positions := []string{order[i%len(order)]}
		if len(order) > 1 && rng.IntN(2) == 0 {
			extra := order[rng.IntN(len(order))]
			if !slices.Contains(positions, extra) {
				positions = append(positions, extra)
			}
		}
		skill := lo.Associate(positions, func(pos string) (string, float64) {
			return pos, initialRating + rng.NormFloat64()*spread
		})
		players[i] = Player{
			Name:      fmt.Sprintf("sim-%03d", i+1),
			Positions: positions,
			Skill:     skill,
		}
	}
	return players
}

// createSession opens a fresh session and registers the roster, filling in
// the server-assigned player ids.
func createSession(ctx context.Context, client *HTTPClient, act Activity, players []Player, stats *Stats) (string, error) {
	var session struct {
		ID string `json:"id"`
	}
	if _, err := client.do(ctx, http.MethodPost, "/sessions", map[string]string{
		"name":     "simulation " + act.Name,
		"activity": act.ID,
	}, &session, http.StatusCreated); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	stats.SessionID = session.ID

	for i := range players {
		var created struct {
			ID string `json:"id"`
		}
		if _, err := client.do(ctx, http.MethodPost, "/sessions/"+session.ID+"/players", map[string]any{
			"name":      players[i].Name,
			"positions": players[i].Positions,
		}, &created, http.StatusCreated); err != nil {
			return "", fmt.Errorf("add player %s: %w", players[i].Name, err)
		}
		players[i].ID = created.ID
		stats.PlayersAdded++
	}

	logger.Get().Info(ctx, "session ready",
		logger.String("session", session.ID),
		logger.Int("players", stats.PlayersAdded))
	return session.ID, nil
}

// fetchActivity looks up id in the service catalog.
func fetchActivity(ctx context.Context, client *HTTPClient, id string) (Activity, error) {
	var acts []Activity
	if err := client.get(ctx, "/activities", &acts); err != nil {
		return Activity{}, err
	}
	act, ok := lo.Find(acts, func(a Activity) bool { return a.ID == id })
	if !ok {
		return Activity{}, fmt.Errorf("activity %q not offered by the service", id)
	}
	if len(act.PositionOrder) == 0 {
		return Activity{}, fmt.Errorf("activity %q has no positions", id)
	}
	return act, nil
}
