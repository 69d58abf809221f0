package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/okian/matchup/internal/domain/model"
	"github.com/okian/matchup/internal/domain/selector"
	"github.com/okian/matchup/pkg/logger"
	"github.com/okian/matchup/pkg/metrics"
)

// ComparisonInput is one submitted head-to-head judgment. Players and the
// winner may be given by id or by name.
type ComparisonInput struct {
	Player1  string
	Player2  string
	Winner   *string // nil or empty for a draw
	Position string
	// RequestID makes retries safe: a repeated id returns the comparison
	// recorded the first time instead of applying it again.
	RequestID string
}

// ComparisonResult is the recorded comparison and both updated players.
type ComparisonResult struct {
	Comparison model.Comparison `json:"comparison"`
	Player1    model.Player     `json:"player1"`
	Player2    model.Player     `json:"player2"`
	PoolSize   int              `json:"pool_size,omitempty"`
	Duplicate  bool             `json:"duplicate"`
}

// HistoryFilter narrows the comparison history. Zero fields match all.
type HistoryFilter struct {
	Player   string // id or name
	Position string
	// Limit keeps only the most recent entries.
	Limit int
}

// NextComparison suggests the pair whose comparison is most informative.
// An empty position considers every position.
func (s *Service) NextComparison(ctx context.Context, sessionID, position string) (selector.Suggestion, error) {
	if err := s.ready(); err != nil {
		return selector.Suggestion{}, err
	}
	doc, err := s.store.Session(ctx, sessionID)
	if err != nil {
		return selector.Suggestion{}, s.fail(ctx, "next comparison", err)
	}
	if err := s.checkPosition(doc.ActivityID, position); err != nil {
		return selector.Suggestion{}, s.fail(ctx, "next comparison", err)
	}

	sug, ok := s.selector.Next(doc.Players, position)
	if !ok {
		err := fmt.Errorf("%w: no position has two eligible players", model.ErrInsufficientPlayers)
		if position != "" {
			err = fmt.Errorf("%w: fewer than two players at %q", model.ErrInsufficientPlayers, position)
		}
		return selector.Suggestion{}, s.fail(ctx, "next comparison", err)
	}

	metrics.RecordSuggestion(string(sug.Reason))
	s.logger.Debug(ctx, "comparison suggested",
		logger.String("sessionID", sessionID),
		logger.String("position", sug.Position),
		logger.String("player1", sug.Player1.ID),
		logger.String("player2", sug.Player2.ID),
		logger.String("reason", string(sug.Reason)),
	)
	return sug, nil
}

// RecordComparison applies a judgment to both players' ratings at the
// given position and appends it to the session history.
func (s *Service) RecordComparison(ctx context.Context, sessionID string, in ComparisonInput) (ComparisonResult, error) {
	if err := s.ready(); err != nil {
		return ComparisonResult{}, err
	}

	key := ""
	if in.RequestID != "" {
		key = sessionID + "/" + in.RequestID
		if prior, seen := s.deduper.Claim(ctx, key); seen {
			metrics.RecordDuplicateComparison()
			if prior == "" {
				return ComparisonResult{}, s.fail(ctx, "record comparison", fmt.Errorf("%w: %s", ErrRequestInFlight, in.RequestID))
			}
			s.logger.Debug(ctx, "duplicate comparison request",
				logger.String("sessionID", sessionID),
				logger.String("requestID", in.RequestID),
				logger.String("comparisonID", prior),
			)
			return s.replay(ctx, sessionID, prior)
		}
	}

	res, err := s.record(ctx, sessionID, in)
	if err != nil {
		if key != "" {
			s.deduper.Release(ctx, key)
		}
		return ComparisonResult{}, s.fail(ctx, "record comparison", err)
	}
	if key != "" {
		s.deduper.Complete(ctx, key, res.Comparison.ID)
	}

	outcome := "decisive"
	if res.Comparison.IsDraw() {
		outcome = "draw"
	}
	metrics.RecordComparison(outcome, res.Comparison.Player1.Delta, res.Comparison.Player2.Delta)
	s.logger.Info(ctx, "comparison recorded",
		logger.String("sessionID", sessionID),
		logger.String("comparisonID", res.Comparison.ID),
		logger.String("position", res.Comparison.Position),
		logger.String("outcome", outcome),
		logger.Float64("delta1", res.Comparison.Player1.Delta),
		logger.Float64("delta2", res.Comparison.Player2.Delta),
		logger.Int("pool", res.PoolSize),
	)
	return res, nil
}

func (s *Service) record(ctx context.Context, sessionID string, in ComparisonInput) (ComparisonResult, error) {
	position := strings.TrimSpace(in.Position)
	if position == "" {
		return ComparisonResult{}, fmt.Errorf("%w: position is required", model.ErrInvalidPosition)
	}

	var res ComparisonResult
	_, err := s.store.Update(ctx, sessionID, func(doc *model.Session) error {
		if err := s.checkPosition(doc.ActivityID, position); err != nil {
			return err
		}
		p1, _, ok := doc.FindPlayer(in.Player1)
		if !ok {
			return fmt.Errorf("%w: %s", model.ErrPlayerNotFound, in.Player1)
		}
		p2, _, ok := doc.FindPlayer(in.Player2)
		if !ok {
			return fmt.Errorf("%w: %s", model.ErrPlayerNotFound, in.Player2)
		}
		var winnerID *string
		if in.Winner != nil && strings.TrimSpace(*in.Winner) != "" {
			w, _, ok := doc.FindPlayer(*in.Winner)
			if !ok {
				return fmt.Errorf("%w: winner %s did not take part", model.ErrInvalidInput, *in.Winner)
			}
			winnerID = &w.ID
		}

		out, err := s.selector.Record(doc.Players, p1.ID, p2.ID, winnerID, position)
		if err != nil {
			return err
		}
		doc.ReplacePlayer(out.Player1)
		doc.ReplacePlayer(out.Player2)
		doc.Comparisons = append(doc.Comparisons, out.Comparison)
		doc.UpdatedAt = out.Comparison.Timestamp
		res = ComparisonResult{
			Comparison: out.Comparison,
			Player1:    out.Player1,
			Player2:    out.Player2,
			PoolSize:   out.PoolSize,
		}
		return nil
	})
	return res, err
}

// replay rebuilds the result of an already recorded comparison from the
// current session state.
func (s *Service) replay(ctx context.Context, sessionID, comparisonID string) (ComparisonResult, error) {
	doc, err := s.store.Session(ctx, sessionID)
	if err != nil {
		return ComparisonResult{}, s.fail(ctx, "record comparison", err)
	}
	c, ok := lo.Find(doc.Comparisons, func(c model.Comparison) bool { return c.ID == comparisonID })
	if !ok {
		return ComparisonResult{}, s.fail(ctx, "record comparison", fmt.Errorf("%w: comparison %s", model.ErrInvalidInput, comparisonID))
	}
	res := ComparisonResult{Comparison: c, Duplicate: true}
	res.Player1, _, _ = doc.FindPlayer(c.Player1ID)
	res.Player2, _, _ = doc.FindPlayer(c.Player2ID)
	return res, nil
}

// History returns recorded comparisons, oldest first.
func (s *Service) History(ctx context.Context, sessionID string, f HistoryFilter) ([]model.Comparison, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	doc, err := s.store.Session(ctx, sessionID)
	if err != nil {
		return nil, s.fail(ctx, "comparison history", err)
	}

	playerID := f.Player
	if p, _, ok := doc.FindPlayer(f.Player); ok {
		playerID = p.ID
	}
	out := lo.Filter(doc.Comparisons, func(c model.Comparison, _ int) bool {
		return (playerID == "" || c.Involves(playerID)) && (f.Position == "" || c.Position == f.Position)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out, nil
}

// Rankings orders players by rating at position, or at every position
// when position is empty.
func (s *Service) Rankings(ctx context.Context, sessionID, position string) ([]selector.PositionRanking, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	doc, err := s.store.Session(ctx, sessionID)
	if err != nil {
		return nil, s.fail(ctx, "rankings", err)
	}
	if err := s.checkPosition(doc.ActivityID, position); err != nil {
		return nil, s.fail(ctx, "rankings", err)
	}
	return s.selector.Rankings(doc.Players, position), nil
}

// Stats reports comparison coverage per position.
func (s *Service) Stats(ctx context.Context, sessionID string) (selector.Stats, error) {
	if err := s.ready(); err != nil {
		return selector.Stats{}, err
	}
	doc, err := s.store.Session(ctx, sessionID)
	if err != nil {
		return selector.Stats{}, s.fail(ctx, "comparison stats", err)
	}
	return selector.ComparisonStats(doc.Players, doc.Comparisons), nil
}
