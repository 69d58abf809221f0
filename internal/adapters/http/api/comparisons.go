package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/matchup/internal/app"
	"github.com/okian/matchup/internal/domain/model"
	"github.com/okian/matchup/internal/domain/selector"
)

// idempotencyHeader may carry the request id instead of the body field.
const idempotencyHeader = "Idempotency-Key"

// ComparisonDependencies defines the interface for comparison operations.
type ComparisonDependencies interface {
	NextComparison(ctx context.Context, sessionID, position string) (selector.Suggestion, error)
	RecordComparison(ctx context.Context, sessionID string, in service.ComparisonInput) (service.ComparisonResult, error)
	History(ctx context.Context, sessionID string, f service.HistoryFilter) ([]model.Comparison, error)
	Rankings(ctx context.Context, sessionID, position string) ([]selector.PositionRanking, error)
	Stats(ctx context.Context, sessionID string) (selector.Stats, error)
}

// ComparisonHandler handles comparison requests.
type ComparisonHandler struct {
	deps ComparisonDependencies
}

// NewComparisonHandler creates a new comparison handler.
func NewComparisonHandler(deps ComparisonDependencies) *ComparisonHandler {
	return &ComparisonHandler{deps: deps}
}

// comparisonRequest mirrors the body of POST /sessions/{id}/comparisons.
// A null or missing winner records a draw.
type comparisonRequest struct {
	Player1   string  `json:"player1"`
	Player2   string  `json:"player2"`
	Winner    *string `json:"winner"`
	Position  string  `json:"position"`
	RequestID string  `json:"request_id"`
}

func (c comparisonRequest) validate() error {
	switch {
	case strings.TrimSpace(c.Player1) == "":
		return errors.New("missing player1")
	case strings.TrimSpace(c.Player2) == "":
		return errors.New("missing player2")
	case strings.TrimSpace(c.Position) == "":
		return errors.New("missing position")
	}
	return nil
}

// HandleNext handles GET /sessions/{id}/next?position= requests.
func (h *ComparisonHandler) HandleNext(w http.ResponseWriter, r *http.Request) {
	const op = "api.next_comparison"
	sug, err := h.deps.NextComparison(r.Context(), r.PathValue("id"), r.URL.Query().Get("position"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sug)
}

// HandleRecord handles POST /sessions/{id}/comparisons requests.
func (h *ComparisonHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	const op = "api.record_comparison"
	var req comparisonRequest
	if err := decode(w, r, op, &req); err != nil {
		writeFailure(w, op, err)
		return
	}
	if err := req.validate(); err != nil {
		writeFailure(w, op, WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.RequestID == "" {
		req.RequestID = r.Header.Get(idempotencyHeader)
	}

	res, err := h.deps.RecordComparison(r.Context(), r.PathValue("id"), service.ComparisonInput{
		Player1:   req.Player1,
		Player2:   req.Player2,
		Winner:    req.Winner,
		Position:  req.Position,
		RequestID: req.RequestID,
	})
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	status := http.StatusCreated
	if res.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, res)
}

// HandleHistory handles GET /sessions/{id}/comparisons requests, filtered
// by the optional player, position and limit query parameters.
func (h *ComparisonHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	const op = "api.comparison_history"
	limit, err := queryInt(r, op, "limit")
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	q := r.URL.Query()
	list, err := h.deps.History(r.Context(), r.PathValue("id"), service.HistoryFilter{
		Player:   q.Get("player"),
		Position: q.Get("position"),
		Limit:    limit,
	})
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleRankings handles GET /sessions/{id}/rankings?position= requests.
func (h *ComparisonHandler) HandleRankings(w http.ResponseWriter, r *http.Request) {
	const op = "api.rankings"
	ranks, err := h.deps.Rankings(r.Context(), r.PathValue("id"), r.URL.Query().Get("position"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ranks)
}

// HandleStats handles GET /sessions/{id}/stats requests.
func (h *ComparisonHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	const op = "api.comparison_stats"
	st, err := h.deps.Stats(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
