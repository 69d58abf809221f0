package service

import (
	"maps"
	"sync"
	"time"

	"github.com/okian/matchup/internal/domain/model"
)

// JobView is the pollable state of an asynchronous team job.
type JobView struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"session_id"`
	Status      model.JobStatus `json:"status"`
	TeamCount   int             `json:"team_count,omitempty"`
	Composition map[string]int  `json:"composition,omitempty"`
	SubmittedAt time.Time       `json:"submitted_at"`
	StartedAt   *time.Time      `json:"started_at,omitempty"`
	FinishedAt  *time.Time      `json:"finished_at,omitempty"`
	Result      *TeamsOutcome   `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
}

// jobRegistry tracks jobs by id. Once full, the oldest job is forgotten.
type jobRegistry struct {
	mu    sync.RWMutex
	jobs  map[string]*JobView
	order []string
	max   int
}

func newJobRegistry(maxJobs int) *jobRegistry {
	return &jobRegistry{jobs: make(map[string]*JobView), max: maxJobs}
}

// Add registers job as pending.
func (r *jobRegistry) Add(job model.TeamJob) JobView { //nolint:gocritic // hugeParam: jobs travel by value
	r.mu.Lock()
	defer r.mu.Unlock()

	for r.max > 0 && len(r.order) >= r.max {
		delete(r.jobs, r.order[0])
		r.order = r.order[1:]
	}
	v := &JobView{
		ID:          job.ID,
		SessionID:   job.SessionID,
		Status:      model.JobPending,
		TeamCount:   job.TeamCount,
		Composition: maps.Clone(job.Composition),
		SubmittedAt: job.SubmittedAt,
	}
	r.jobs[job.ID] = v
	r.order = append(r.order, job.ID)
	return *v
}

// Remove forgets a job that never reached the queue.
func (r *jobRegistry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.jobs, id)
	for i, o := range r.order {
		if o == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

func (r *jobRegistry) Get(id string) (JobView, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.jobs[id]
	if !ok {
		return JobView{}, false
	}
	return *v, true
}

func (r *jobRegistry) Start(id string, at time.Time) {
	r.update(id, func(v *JobView) {
		v.Status = model.JobRunning
		v.StartedAt = &at
	})
}

func (r *jobRegistry) Finish(id string, at time.Time, out TeamsOutcome) {
	r.update(id, func(v *JobView) {
		v.Status = model.JobDone
		v.FinishedAt = &at
		v.Result = &out
	})
}

func (r *jobRegistry) Fail(id string, at time.Time, err error) {
	r.update(id, func(v *JobView) {
		v.Status = model.JobFailed
		v.FinishedAt = &at
		v.Error = err.Error()
	})
}

func (r *jobRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

func (r *jobRegistry) update(id string, fn func(*JobView)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.jobs[id]; ok {
		fn(v)
	}
}
