// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
)

const maxBodyBytes = 1 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SessionDependencies
	PlayerDependencies
	ComparisonDependencies
	TeamDependencies
	StatsProvider
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	sessionHandler    *SessionHandler
	playerHandler     *PlayerHandler
	comparisonHandler *ComparisonHandler
	teamHandler       *TeamHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(deps),
		sessionHandler:    NewSessionHandler(deps),
		playerHandler:     NewPlayerHandler(deps),
		comparisonHandler: NewComparisonHandler(deps),
		teamHandler:       NewTeamHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	route := func(pattern, endpoint string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, MetricsMiddleware(h, endpoint))
	}

	route("GET /healthz", "healthz", s.healthHandler.HandleHealth)
	mux.Handle("GET /metrics", s.healthHandler.MetricsHandler())
	route("GET /stats", "stats", s.statsHandler.HandleStats)
	route("GET /activities", "activities", s.sessionHandler.HandleListActivities)

	route("POST /sessions", "sessions", s.sessionHandler.HandleCreateSession)
	route("GET /sessions", "sessions", s.sessionHandler.HandleListSessions)
	route("GET /sessions/{id}", "session", s.sessionHandler.HandleGetSession)
	route("DELETE /sessions/{id}", "session", s.sessionHandler.HandleDeleteSession)

	route("GET /sessions/{id}/players", "players", s.playerHandler.HandleListPlayers)
	route("POST /sessions/{id}/players", "players", s.playerHandler.HandleAddPlayer)
	route("GET /sessions/{id}/players/{player}", "player", s.playerHandler.HandleGetPlayer)
	route("PATCH /sessions/{id}/players/{player}", "player", s.playerHandler.HandleUpdatePlayer)
	route("DELETE /sessions/{id}/players/{player}", "player", s.playerHandler.HandleRemovePlayer)
	route("POST /sessions/{id}/players/{player}/reset", "player_reset", s.playerHandler.HandleResetPlayer)

	route("GET /sessions/{id}/next", "next", s.comparisonHandler.HandleNext)
	route("GET /sessions/{id}/comparisons", "comparisons", s.comparisonHandler.HandleHistory)
	route("POST /sessions/{id}/comparisons", "comparisons", s.comparisonHandler.HandleRecord)
	route("GET /sessions/{id}/rankings", "rankings", s.comparisonHandler.HandleRankings)
	route("GET /sessions/{id}/stats", "session_stats", s.comparisonHandler.HandleStats)

	route("POST /sessions/{id}/teams", "teams", s.teamHandler.HandleGenerate)
	route("POST /sessions/{id}/teams/jobs", "team_jobs", s.teamHandler.HandleSubmitJob)
	route("GET /jobs/{id}", "job", s.teamHandler.HandleGetJob)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure reports err with the status its kind maps to.
func writeFailure(w http.ResponseWriter, op string, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		err = Wrap(op, err)
	}
	writeError(w, status, code, err)
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, op string, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return WrapKind(op, ErrBadRequest, err)
	}
	return nil
}

// queryInt parses an optional non-negative integer query parameter.
func queryInt(r *http.Request, op, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, NewKind(op, ErrBadRequest)
	}
	return n, nil
}
