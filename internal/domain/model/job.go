package model

import "time"

// JobStatus tracks an asynchronous team-generation request.
type JobStatus string

// Job lifecycle states.
const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobFailed  JobStatus = "failed"
)

// TeamJob is the payload flowing through the job queue.
type TeamJob struct {
	ID          string         // unique job id
	SessionID   string         // roster to partition
	TeamCount   int            // number of teams requested
	Composition map[string]int // per-team composition; empty means activity default
	SubmittedAt time.Time
}
