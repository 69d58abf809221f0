package simulate

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"
)

// generateTeams requests teams synchronously and through a background job
// and records both results.
func generateTeams(ctx context.Context, config *Config, client *HTTPClient, sessionID string, stats *Stats) error {
	if config.Teams <= 0 {
		return nil
	}
	req := map[string]int{"team_count": config.Teams}

	var direct TeamsOutcome
	if _, err := client.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/teams", req, &direct, http.StatusOK); err != nil {
		return fmt.Errorf("generate teams: %w", err)
	}
	stats.SyncTeams = &direct
	log.Printf("teams: balance=%.3f max_difference=%.1f balanced=%v",
		direct.Quality.Balance, direct.Quality.MaxDifference, direct.Quality.IsBalanced)

	var job Job
	if _, err := client.do(ctx, http.MethodPost, "/sessions/"+sessionID+"/teams/jobs", req, &job, http.StatusAccepted); err != nil {
		return fmt.Errorf("submit team job: %w", err)
	}

	done, err := waitJob(ctx, client, job.ID)
	if err != nil {
		return err
	}
	if done.Status != "done" {
		return fmt.Errorf("team job %s %s: %s", done.ID, done.Status, done.Error)
	}
	stats.AsyncTeams = done.Result
	return nil
}

// waitJob polls a team job until it leaves the pending and running states.
func waitJob(ctx context.Context, client *HTTPClient, id string) (Job, error) {
	ctx, cancel := context.WithTimeout(ctx, JobPollTimeout)
	defer cancel()

	ticker := time.NewTicker(JobPollInterval)
	defer ticker.Stop()

	for {
		var job Job
		if err := client.get(ctx, "/jobs/"+id, &job); err != nil {
			return Job{}, fmt.Errorf("poll job %s: %w", id, err)
		}
		if job.Status == "done" || job.Status == "failed" {
			return job, nil
		}
		select {
		case <-ctx.Done():
			return Job{}, fmt.Errorf("job %s still %s: %w", id, job.Status, ctx.Err())
		case <-ticker.C:
		}
	}
}
