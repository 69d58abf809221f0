package model

import "errors"

// Sentinel error kinds shared by the engine and its hosts. NotFound kinds
// identify unknown ids; the rest are InvalidInput.
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrActivityNotFound = errors.New("activity not found")
	ErrJobNotFound      = errors.New("job not found")

	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidPosition     = errors.New("invalid position")
	ErrInsufficientPlayers = errors.New("not enough eligible players")
	ErrDuplicatePlayer     = errors.New("player name already taken")
)

// IsNotFound reports whether err is one of the NotFound kinds.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrPlayerNotFound) ||
		errors.Is(err, ErrActivityNotFound) ||
		errors.Is(err, ErrJobNotFound)
}

// IsInvalidInput reports whether err is one of the InvalidInput kinds.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidPosition) ||
		errors.Is(err, ErrInsufficientPlayers) ||
		errors.Is(err, ErrDuplicatePlayer)
}
