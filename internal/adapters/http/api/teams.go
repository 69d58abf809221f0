package api

import (
	"context"
	"net/http"

	service "github.com/okian/matchup/internal/app"
)

// TeamDependencies defines the interface for team generation.
type TeamDependencies interface {
	GenerateTeams(ctx context.Context, sessionID string, req service.TeamRequest) (service.TeamsOutcome, error)
	SubmitTeamJob(ctx context.Context, sessionID string, req service.TeamRequest) (service.JobView, error)
	Job(ctx context.Context, id string) (service.JobView, error)
}

// TeamHandler handles team generation requests.
type TeamHandler struct {
	deps TeamDependencies
}

// NewTeamHandler creates a new team handler.
func NewTeamHandler(deps TeamDependencies) *TeamHandler {
	return &TeamHandler{deps: deps}
}

// HandleGenerate handles POST /sessions/{id}/teams requests.
func (h *TeamHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	const op = "api.generate_teams"
	var req service.TeamRequest
	if err := decode(w, r, op, &req); err != nil {
		writeFailure(w, op, err)
		return
	}
	out, err := h.deps.GenerateTeams(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleSubmitJob handles POST /sessions/{id}/teams/jobs requests.
func (h *TeamHandler) HandleSubmitJob(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_team_job"
	var req service.TeamRequest
	if err := decode(w, r, op, &req); err != nil {
		writeFailure(w, op, err)
		return
	}
	job, err := h.deps.SubmitTeamJob(r.Context(), r.PathValue("id"), req)
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	w.Header().Set("Location", "/jobs/"+job.ID)
	writeJSON(w, http.StatusAccepted, job)
}

// HandleGetJob handles GET /jobs/{id} requests.
func (h *TeamHandler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_job"
	job, err := h.deps.Job(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}
