package api

import (
	"context"
	"net/http"

	service "github.com/okian/matchup/internal/app"
	"github.com/okian/matchup/internal/domain/model"
)

// SessionDependencies defines the interface for session operations.
type SessionDependencies interface {
	Activities() []model.ActivityConfig
	CreateSession(ctx context.Context, name, activityID string) (model.Session, error)
	Sessions(ctx context.Context) ([]service.SessionSummary, error)
	Session(ctx context.Context, id string) (model.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// SessionHandler handles session requests.
type SessionHandler struct {
	deps SessionDependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

type createSessionRequest struct {
	Name     string `json:"name"`
	Activity string `json:"activity"`
}

// HandleListActivities handles GET /activities requests.
func (h *SessionHandler) HandleListActivities(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Activities())
}

// HandleCreateSession handles POST /sessions requests.
func (h *SessionHandler) HandleCreateSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"
	var req createSessionRequest
	if err := decode(w, r, op, &req); err != nil {
		writeFailure(w, op, err)
		return
	}
	if req.Activity == "" {
		writeFailure(w, op, NewKind(op, ErrBadRequest))
		return
	}
	doc, err := h.deps.CreateSession(r.Context(), req.Name, req.Activity)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+doc.ID)
	writeJSON(w, http.StatusCreated, doc)
}

// HandleListSessions handles GET /sessions requests.
func (h *SessionHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_sessions"
	list, err := h.deps.Sessions(r.Context())
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleGetSession handles GET /sessions/{id} requests.
func (h *SessionHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_session"
	doc, err := h.deps.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// HandleDeleteSession handles DELETE /sessions/{id} requests.
func (h *SessionHandler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_session"
	if err := h.deps.DeleteSession(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
