package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/okian/matchup/internal/domain/model"
	"github.com/okian/matchup/pkg/metrics"
)

const documentExt = ".json"

// DocumentStore is an in-memory Store with optional JSON file persistence.
type DocumentStore struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
	dataDir  string
}

// NewDocumentStore constructs a store and, when a data dir is configured,
// loads every session document found there.
func NewDocumentStore(ctx context.Context, opts ...Option) (*DocumentStore, error) {
	s := &DocumentStore{sessions: make(map[string]model.Session)}
	for _, opt := range opts {
		opt(s)
	}
	if s.dataDir != "" {
		if err := s.load(ctx); err != nil {
			return nil, err
		}
	}
	s.updateMetrics()
	return s, nil
}

func (s *DocumentStore) load(_ context.Context) error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	paths, err := filepath.Glob(filepath.Join(s.dataDir, "*"+documentExt))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	for _, path := range paths {
		b, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%w: read %s: %w", ErrPersist, path, err)
		}
		var doc model.Session
		if err := json.Unmarshal(b, &doc); err != nil {
			return fmt.Errorf("%w: decode %s: %w", ErrPersist, path, err)
		}
		if doc.ID == "" {
			continue
		}
		s.sessions[doc.ID] = doc
	}
	return nil
}

// CreateSession implements Store.
func (s *DocumentStore) CreateSession(_ context.Context, doc model.Session) error {
	if err := validID(doc.ID); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[doc.ID]; ok {
		return fmt.Errorf("%w: %s", ErrSessionExists, doc.ID)
	}
	doc = doc.Clone()
	if err := s.persist(doc); err != nil {
		return err
	}
	s.sessions[doc.ID] = doc
	s.updateMetricsLocked()
	return nil
}

// Session implements Store.
func (s *DocumentStore) Session(_ context.Context, id string) (model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.sessions[id]
	if !ok {
		return model.Session{}, fmt.Errorf("%w: %s", model.ErrSessionNotFound, id)
	}
	return doc.Clone(), nil
}

// Sessions implements Store.
func (s *DocumentStore) Sessions(_ context.Context) ([]model.Session, error) {
	s.mu.RLock()
	out := make([]model.Session, 0, len(s.sessions))
	for _, doc := range s.sessions {
		out = append(out, doc.Clone())
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// DeleteSession implements Store.
func (s *DocumentStore) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", model.ErrSessionNotFound, id)
	}
	if s.dataDir != "" {
		if err := os.Remove(s.path(id)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %w", ErrPersist, err)
		}
	}
	delete(s.sessions, id)
	s.updateMetricsLocked()
	return nil
}

// Update implements Store. The document is written to disk before the
// in-memory copy is replaced, so a failed write leaves the old state intact.
func (s *DocumentStore) Update(ctx context.Context, id string, fn func(*model.Session) error) (model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return model.Session{}, err
	}
	cur, ok := s.sessions[id]
	if !ok {
		return model.Session{}, fmt.Errorf("%w: %s", model.ErrSessionNotFound, id)
	}
	next := cur.Clone()
	if err := fn(&next); err != nil {
		return model.Session{}, err
	}
	next.ID = id
	if err := s.persist(next); err != nil {
		return model.Session{}, err
	}
	s.sessions[id] = next
	s.updateMetricsLocked()
	return next.Clone(), nil
}

// Players implements Store.
func (s *DocumentStore) Players(ctx context.Context, sessionID string) ([]model.Player, error) {
	doc, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return doc.Players, nil
}

// Player implements Store.
func (s *DocumentStore) Player(ctx context.Context, sessionID, idOrName string) (model.Player, error) {
	doc, err := s.Session(ctx, sessionID)
	if err != nil {
		return model.Player{}, err
	}
	p, _, ok := doc.FindPlayer(idOrName)
	if !ok {
		return model.Player{}, fmt.Errorf("%w: %s", model.ErrPlayerNotFound, idOrName)
	}
	return p, nil
}

// Comparisons implements Store.
func (s *DocumentStore) Comparisons(ctx context.Context, sessionID string) ([]model.Comparison, error) {
	doc, err := s.Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return doc.Comparisons, nil
}

// Count implements Store.
func (s *DocumentStore) Count(_ context.Context) (int, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countLocked()
}

func (s *DocumentStore) countLocked() (int, int) {
	players := 0
	for _, doc := range s.sessions {
		players += len(doc.Players)
	}
	return len(s.sessions), players
}

// persist writes doc atomically through a temp file. Must be called with
// s.mu held.
func (s *DocumentStore) persist(doc model.Session) error {
	if s.dataDir == "" {
		return nil
	}
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrPersist, doc.ID, err)
	}
	tmp, err := os.CreateTemp(s.dataDir, doc.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(body); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := os.Rename(tmp.Name(), s.path(doc.ID)); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}

func (s *DocumentStore) path(id string) string {
	return filepath.Join(s.dataDir, id+documentExt)
}

func (s *DocumentStore) updateMetrics() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.updateMetricsLocked()
}

func (s *DocumentStore) updateMetricsLocked() {
	metrics.UpdateInventory(s.countLocked())
}

// validID rejects ids that cannot double as file names.
func validID(id string) error {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return fmt.Errorf("%w: session id %q", model.ErrInvalidInput, id)
	}
	return nil
}
