package api

import (
	"context"
	"net/http"

	service "github.com/okian/matchup/internal/app"
	"github.com/okian/matchup/internal/domain/model"
)

// PlayerDependencies defines the interface for roster operations.
type PlayerDependencies interface {
	AddPlayer(ctx context.Context, sessionID, name string, positions []string) (model.Player, error)
	Players(ctx context.Context, sessionID string) ([]model.Player, error)
	Player(ctx context.Context, sessionID, idOrName string) (model.Player, error)
	UpdatePlayer(ctx context.Context, sessionID, idOrName string, patch service.PlayerPatch) (model.Player, error)
	RemovePlayer(ctx context.Context, sessionID, idOrName string) error
	ResetPlayer(ctx context.Context, sessionID, idOrName string, positions ...string) (model.Player, error)
}

// PlayerHandler handles roster requests.
type PlayerHandler struct {
	deps PlayerDependencies
}

// NewPlayerHandler creates a new player handler.
func NewPlayerHandler(deps PlayerDependencies) *PlayerHandler {
	return &PlayerHandler{deps: deps}
}

type addPlayerRequest struct {
	Name      string   `json:"name"`
	Positions []string `json:"positions"`
}

type resetRequest struct {
	Positions []string `json:"positions"`
}

// HandleListPlayers handles GET /sessions/{id}/players requests.
func (h *PlayerHandler) HandleListPlayers(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_players"
	players, err := h.deps.Players(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

// HandleAddPlayer handles POST /sessions/{id}/players requests.
func (h *PlayerHandler) HandleAddPlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.add_player"
	var req addPlayerRequest
	if err := decode(w, r, op, &req); err != nil {
		writeFailure(w, op, err)
		return
	}
	p, err := h.deps.AddPlayer(r.Context(), r.PathValue("id"), req.Name, req.Positions)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleGetPlayer handles GET /sessions/{id}/players/{player} requests.
func (h *PlayerHandler) HandleGetPlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_player"
	p, err := h.deps.Player(r.Context(), r.PathValue("id"), r.PathValue("player"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleUpdatePlayer handles PATCH /sessions/{id}/players/{player} requests.
func (h *PlayerHandler) HandleUpdatePlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.update_player"
	var patch service.PlayerPatch
	if err := decode(w, r, op, &patch); err != nil {
		writeFailure(w, op, err)
		return
	}
	p, err := h.deps.UpdatePlayer(r.Context(), r.PathValue("id"), r.PathValue("player"), patch)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleRemovePlayer handles DELETE /sessions/{id}/players/{player} requests.
func (h *PlayerHandler) HandleRemovePlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.remove_player"
	if err := h.deps.RemovePlayer(r.Context(), r.PathValue("id"), r.PathValue("player")); err != nil {
		writeFailure(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleResetPlayer handles POST /sessions/{id}/players/{player}/reset
// requests. Without positions every track is reset.
func (h *PlayerHandler) HandleResetPlayer(w http.ResponseWriter, r *http.Request) {
	const op = "api.reset_player"
	var req resetRequest
	if err := decode(w, r, op, &req); err != nil {
		writeFailure(w, op, err)
		return
	}
	p, err := h.deps.ResetPlayer(r.Context(), r.PathValue("id"), r.PathValue("player"), req.Positions...)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
