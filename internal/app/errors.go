package service

import (
	"errors"

	"github.com/okian/matchup/internal/domain/model"
)

// Service-level error kinds. Domain kinds live in the model package.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrBackpressure    = errors.New("job queue full, retry later")
	ErrRequestInFlight = errors.New("request is still being processed")
)

// errorKind buckets err for the errors-by-component metric.
func errorKind(err error) string {
	switch {
	case model.IsNotFound(err):
		return "not_found"
	case errors.Is(err, model.ErrDuplicatePlayer), errors.Is(err, ErrRequestInFlight):
		return "conflict"
	case model.IsInvalidInput(err):
		return "invalid_input"
	case errors.Is(err, ErrBackpressure):
		return "backpressure"
	default:
		return "internal"
	}
}
