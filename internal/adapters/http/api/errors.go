package api

import (
	"errors"
	"net/http"

	service "github.com/okian/matchup/internal/app"
	"github.com/okian/matchup/internal/domain/model"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
)

// Error records the handler operation that failed together with the error
// kind and, optionally, its cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Kind != nil && e.Err != nil:
		return e.Op + ": " + e.Kind.Error() + ": " + e.Err.Error()
	case e.Kind != nil:
		return e.Op + ": " + e.Kind.Error()
	case e.Err != nil:
		return e.Op + ": " + e.Err.Error()
	default:
		return e.Op
	}
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	var out []error
	if e.Kind != nil {
		out = append(out, e.Kind)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// NewKind returns an error of kind raised by op.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind tags err with kind on behalf of op.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap attributes err to op without changing its kind.
func Wrap(op string, err error) error {
	return &Error{Op: op, Err: err}
}

// statusFor maps an error kind to an HTTP status and a stable error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrRequestInFlight):
		return http.StatusConflict, "request_in_flight"
	case errors.Is(err, model.ErrDuplicatePlayer):
		return http.StatusConflict, "duplicate_player"
	case errors.Is(err, model.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, model.ErrPlayerNotFound):
		return http.StatusNotFound, "player_not_found"
	case errors.Is(err, model.ErrActivityNotFound):
		return http.StatusNotFound, "activity_not_found"
	case errors.Is(err, model.ErrJobNotFound):
		return http.StatusNotFound, "job_not_found"
	case errors.Is(err, model.ErrInvalidPosition):
		return http.StatusUnprocessableEntity, "invalid_position"
	case errors.Is(err, model.ErrInsufficientPlayers):
		return http.StatusUnprocessableEntity, "insufficient_players"
	case model.IsInvalidInput(err):
		return http.StatusBadRequest, "invalid_input"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
