package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/okian/matchup/internal/adapters/mq/queue"
	"github.com/okian/matchup/internal/domain/model"
	"github.com/okian/matchup/internal/domain/teams"
	"github.com/okian/matchup/pkg/logger"
	"github.com/okian/matchup/pkg/metrics"
)

const defaultTeamCount = 2

// TeamRequest asks for a roster to be split into teams. A zero TeamCount
// means two teams; an empty Composition uses the activity default.
type TeamRequest struct {
	TeamCount   int            `json:"team_count"`
	Composition map[string]int `json:"composition,omitempty"`
}

// TeamsOutcome is a generated set of teams with the inputs that shaped it.
type TeamsOutcome struct {
	SessionID   string         `json:"session_id"`
	ActivityID  string         `json:"activity_id"`
	TeamCount   int            `json:"team_count"`
	Composition map[string]int `json:"composition"`
	DurationMS  float64        `json:"duration_ms"`
	teams.Result
}

// GenerateTeams partitions the session roster into balanced teams and
// waits for the result.
func (s *Service) GenerateTeams(ctx context.Context, sessionID string, req TeamRequest) (TeamsOutcome, error) {
	if err := s.ready(); err != nil {
		return TeamsOutcome{}, err
	}
	out, err := s.generate(ctx, sessionID, req, "sync")
	if err != nil {
		return TeamsOutcome{}, s.fail(ctx, "generate teams", err)
	}
	return out, nil
}

// generate resolves req against the session and runs the optimizer.
func (s *Service) generate(ctx context.Context, sessionID string, req TeamRequest, mode string) (TeamsOutcome, error) {
	doc, err := s.store.Session(ctx, sessionID)
	if err != nil {
		return TeamsOutcome{}, err
	}
	optReq, err := s.teamRequest(doc, req)
	if err != nil {
		return TeamsOutcome{}, err
	}

	start := time.Now()
	res, err := s.optimizer.Optimize(ctx, optReq)
	if err != nil {
		return TeamsOutcome{}, err
	}
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	metrics.RecordOptimizerRun(mode, elapsed, res.Quality.Iterations, res.Quality.SwapsApplied,
		res.Quality.MaxDifference, len(res.Unassigned))
	s.logger.Info(ctx, "teams generated",
		logger.String("sessionID", sessionID),
		logger.String("mode", mode),
		logger.Int("teams", optReq.TeamCount),
		logger.Int("players", len(optReq.Players)),
		logger.Float64("maxDifference", res.Quality.MaxDifference),
		logger.Int("swaps", res.Quality.SwapsApplied),
		logger.Int("unassigned", len(res.Unassigned)),
		logger.Float64("durationMs", elapsed),
	)
	return TeamsOutcome{
		SessionID:   doc.ID,
		ActivityID:  doc.ActivityID,
		TeamCount:   optReq.TeamCount,
		Composition: optReq.Composition,
		DurationMS:  elapsed,
		Result:      res,
	}, nil
}

// teamRequest fills defaults from the session's activity and validates
// the composition against it.
func (s *Service) teamRequest(doc model.Session, req TeamRequest) (teams.Request, error) {
	act, err := s.catalog.Activity(doc.ActivityID)
	if err != nil {
		return teams.Request{}, err
	}
	count := req.TeamCount
	if count == 0 {
		count = defaultTeamCount
	}
	if count < 1 {
		return teams.Request{}, fmt.Errorf("%w: team count must be at least 1, got %d", model.ErrInvalidInput, req.TeamCount)
	}
	comp := req.Composition
	if len(comp) == 0 {
		comp = act.DefaultComposition
	}
	for pos, n := range comp {
		if !act.HasPosition(pos) {
			return teams.Request{}, fmt.Errorf("%w: %q is not a %s position", model.ErrInvalidPosition, pos, act.Name)
		}
		if n < 0 {
			return teams.Request{}, fmt.Errorf("%w: negative count for %q", model.ErrInvalidInput, pos)
		}
	}
	return teams.Request{
		Composition: maps.Clone(comp),
		TeamCount:   count,
		Players:     doc.Players,
		Activity:    act,
	}, nil
}

// SubmitTeamJob queues team generation and returns immediately. The job
// is polled with Job.
func (s *Service) SubmitTeamJob(ctx context.Context, sessionID string, req TeamRequest) (JobView, error) {
	if err := s.ready(); err != nil {
		return JobView{}, err
	}
	doc, err := s.store.Session(ctx, sessionID)
	if err != nil {
		return JobView{}, s.fail(ctx, "submit team job", err)
	}
	if _, err := s.teamRequest(doc, req); err != nil {
		return JobView{}, s.fail(ctx, "submit team job", err)
	}

	job := model.TeamJob{
		ID:          s.newID(),
		SessionID:   sessionID,
		TeamCount:   req.TeamCount,
		Composition: maps.Clone(req.Composition),
		SubmittedAt: s.now(),
	}
	view := s.jobs.Add(job)
	if err := s.jobQueue.Enqueue(ctx, job); err != nil {
		s.jobs.Remove(job.ID)
		if errors.Is(err, queue.ErrFull) || errors.Is(err, queue.ErrClosed) {
			err = fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return JobView{}, s.fail(ctx, "submit team job", err)
	}

	s.logger.Info(ctx, "team job queued",
		logger.String("jobID", job.ID),
		logger.String("sessionID", sessionID),
		logger.Int("queueLength", s.jobQueue.Len(ctx)),
	)
	return view, nil
}

// Job returns the current state of a team job.
func (s *Service) Job(ctx context.Context, id string) (JobView, error) {
	view, ok := s.jobs.Get(id)
	if !ok {
		return JobView{}, s.fail(ctx, "get job", fmt.Errorf("%w: %s", model.ErrJobNotFound, id))
	}
	return view, nil
}

// RunJob executes a queued team job. Workers call it.
func (s *Service) RunJob(ctx context.Context, job model.TeamJob) error {
	s.jobs.Start(job.ID, s.now())
	out, err := s.generate(ctx, job.SessionID, TeamRequest{TeamCount: job.TeamCount, Composition: job.Composition}, "async")
	if err != nil {
		s.jobs.Fail(job.ID, s.now(), err)
		metrics.RecordErrorByComponent("jobs", errorKind(err))
		return err
	}
	s.jobs.Finish(job.ID, s.now(), out)
	return nil
}
