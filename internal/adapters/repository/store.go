// Package repository stores session documents: a roster together with its
// comparison history.
package repository

import (
	"context"

	"github.com/okian/matchup/internal/domain/model"
)

// Store provides read/write access to sessions. Values returned are deep
// copies; callers never share state with the store.
type Store interface {
	// CreateSession stores a new session. Returns ErrSessionExists when the
	// id is taken.
	CreateSession(ctx context.Context, s model.Session) error

	// Session returns the session with id or model.ErrSessionNotFound.
	Session(ctx context.Context, id string) (model.Session, error)

	// Sessions lists every session, oldest first.
	Sessions(ctx context.Context) ([]model.Session, error)

	DeleteSession(ctx context.Context, id string) error

	// Update applies fn to a copy of the session and stores the result when
	// fn returns nil. Updates of one store are serialized, so fn observes
	// every earlier write.
	Update(ctx context.Context, id string, fn func(*model.Session) error) (model.Session, error)

	Players(ctx context.Context, sessionID string) ([]model.Player, error)

	// Player looks a player up by id, or by case-insensitive name.
	Player(ctx context.Context, sessionID, idOrName string) (model.Player, error)

	Comparisons(ctx context.Context, sessionID string) ([]model.Comparison, error)

	// Count returns the number of sessions and players stored.
	Count(ctx context.Context) (sessions, players int)
}
