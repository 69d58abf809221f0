package repository

import "errors"

// Sentinel kinds for storage errors.
var (
	ErrSessionExists = errors.New("session already exists")
	ErrPersist       = errors.New("persist session failed")
)
