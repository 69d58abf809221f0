package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/okian/matchup/internal/domain/model"
	"github.com/okian/matchup/pkg/logger"
)

// SessionSummary is the list view of a session.
type SessionSummary struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	ActivityID      string    `json:"activity_id"`
	PlayerCount     int       `json:"player_count"`
	ComparisonCount int       `json:"comparison_count"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func summarize(doc model.Session) SessionSummary {
	return SessionSummary{
		ID:              doc.ID,
		Name:            doc.Name,
		ActivityID:      doc.ActivityID,
		PlayerCount:     len(doc.Players),
		ComparisonCount: len(doc.Comparisons),
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
}

// PlayerPatch lists the player fields to change. Nil fields are left as
// they are.
type PlayerPatch struct {
	Name      *string  `json:"name,omitempty"`
	Positions []string `json:"positions,omitempty"`
}

// CreateSession opens an empty roster for activityID. An empty name falls
// back to the activity's display name.
func (s *Service) CreateSession(ctx context.Context, name, activityID string) (model.Session, error) {
	if err := s.ready(); err != nil {
		return model.Session{}, err
	}
	act, err := s.catalog.Activity(activityID)
	if err != nil {
		return model.Session{}, s.fail(ctx, "create session", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = act.Name
	}

	now := s.now()
	doc := model.Session{
		ID:          s.newID(),
		Name:        name,
		ActivityID:  act.ID,
		Players:     []model.Player{},
		Comparisons: []model.Comparison{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateSession(ctx, doc); err != nil {
		return model.Session{}, s.fail(ctx, "create session", err)
	}

	s.logger.Info(ctx, "session created",
		logger.String("sessionID", doc.ID),
		logger.String("activity", doc.ActivityID),
		logger.String("name", doc.Name),
	)
	return doc, nil
}

// Sessions lists every session, oldest first.
func (s *Service) Sessions(ctx context.Context) ([]SessionSummary, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	docs, err := s.store.Sessions(ctx)
	if err != nil {
		return nil, s.fail(ctx, "list sessions", err)
	}
	return lo.Map(docs, func(d model.Session, _ int) SessionSummary { return summarize(d) }), nil
}

// Session returns the full session document.
func (s *Service) Session(ctx context.Context, id string) (model.Session, error) {
	if err := s.ready(); err != nil {
		return model.Session{}, err
	}
	doc, err := s.store.Session(ctx, id)
	if err != nil {
		return model.Session{}, s.fail(ctx, "get session", err)
	}
	return doc, nil
}

// DeleteSession removes a session with its roster and history.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.store.DeleteSession(ctx, id); err != nil {
		return s.fail(ctx, "delete session", err)
	}
	s.logger.Info(ctx, "session deleted", logger.String("sessionID", id))
	return nil
}

// AddPlayer adds a player eligible for positions, starting at the initial
// rating everywhere. Names are unique per session, ignoring case.
func (s *Service) AddPlayer(ctx context.Context, sessionID, name string, positions []string) (model.Player, error) {
	if err := s.ready(); err != nil {
		return model.Player{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Player{}, s.fail(ctx, "add player", fmt.Errorf("%w: player name is required", model.ErrInvalidInput))
	}

	var added model.Player
	_, err := s.store.Update(ctx, sessionID, func(doc *model.Session) error {
		if err := s.checkPositions(doc.ActivityID, positions); err != nil {
			return err
		}
		if taken(doc.Players, name, "") {
			return fmt.Errorf("%w: %q", model.ErrDuplicatePlayer, name)
		}
		now := s.now()
		added = model.NewPlayer(s.newID(), name, positions, s.model.Params().InitialRating, now)
		if err := added.Validate(); err != nil {
			return err
		}
		doc.Players = append(doc.Players, added)
		doc.UpdatedAt = now
		return nil
	})
	if err != nil {
		return model.Player{}, s.fail(ctx, "add player", err)
	}

	s.logger.Info(ctx, "player added",
		logger.String("sessionID", sessionID),
		logger.String("playerID", added.ID),
		logger.String("name", added.Name),
		logger.Any("positions", added.Positions),
	)
	return added, nil
}

// Players lists the roster in insertion order.
func (s *Service) Players(ctx context.Context, sessionID string) ([]model.Player, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	players, err := s.store.Players(ctx, sessionID)
	if err != nil {
		return nil, s.fail(ctx, "list players", err)
	}
	return players, nil
}

// Player looks a player up by id or name.
func (s *Service) Player(ctx context.Context, sessionID, idOrName string) (model.Player, error) {
	if err := s.ready(); err != nil {
		return model.Player{}, err
	}
	p, err := s.store.Player(ctx, sessionID, idOrName)
	if err != nil {
		return model.Player{}, s.fail(ctx, "get player", err)
	}
	return p, nil
}

// UpdatePlayer renames a player or replaces their positions. Tracks at
// kept positions survive; added positions start fresh.
func (s *Service) UpdatePlayer(ctx context.Context, sessionID, idOrName string, patch PlayerPatch) (model.Player, error) {
	if err := s.ready(); err != nil {
		return model.Player{}, err
	}

	var updated model.Player
	_, err := s.store.Update(ctx, sessionID, func(doc *model.Session) error {
		p, _, ok := doc.FindPlayer(idOrName)
		if !ok {
			return fmt.Errorf("%w: %s", model.ErrPlayerNotFound, idOrName)
		}
		now := s.now()
		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return fmt.Errorf("%w: player name is required", model.ErrInvalidInput)
			}
			if taken(doc.Players, name, p.ID) {
				return fmt.Errorf("%w: %q", model.ErrDuplicatePlayer, name)
			}
			p = p.Clone()
			p.Name = name
			p.UpdatedAt = now
		}
		if patch.Positions != nil {
			if err := s.checkPositions(doc.ActivityID, patch.Positions); err != nil {
				return err
			}
			p = p.WithPositions(patch.Positions, s.model.Params().InitialRating, now)
		}
		if err := p.Validate(); err != nil {
			return err
		}
		doc.ReplacePlayer(p)
		doc.UpdatedAt = now
		updated = p
		return nil
	})
	if err != nil {
		return model.Player{}, s.fail(ctx, "update player", err)
	}

	s.logger.Info(ctx, "player updated",
		logger.String("sessionID", sessionID),
		logger.String("playerID", updated.ID),
		logger.Any("positions", updated.Positions),
	)
	return updated, nil
}

// RemovePlayer drops a player from the roster. Comparison history that
// mentions the player is kept.
func (s *Service) RemovePlayer(ctx context.Context, sessionID, idOrName string) error {
	if err := s.ready(); err != nil {
		return err
	}
	var removed string
	_, err := s.store.Update(ctx, sessionID, func(doc *model.Session) error {
		p, _, ok := doc.FindPlayer(idOrName)
		if !ok {
			return fmt.Errorf("%w: %s", model.ErrPlayerNotFound, idOrName)
		}
		doc.RemovePlayer(p.ID)
		doc.UpdatedAt = s.now()
		removed = p.ID
		return nil
	})
	if err != nil {
		return s.fail(ctx, "remove player", err)
	}
	s.logger.Info(ctx, "player removed", logger.String("sessionID", sessionID), logger.String("playerID", removed))
	return nil
}

// ResetPlayer restores the rating track at positions, or at every
// position when none are given, to the initial rating.
func (s *Service) ResetPlayer(ctx context.Context, sessionID, idOrName string, positions ...string) (model.Player, error) {
	if err := s.ready(); err != nil {
		return model.Player{}, err
	}
	var reset model.Player
	_, err := s.store.Update(ctx, sessionID, func(doc *model.Session) error {
		p, _, ok := doc.FindPlayer(idOrName)
		if !ok {
			return fmt.Errorf("%w: %s", model.ErrPlayerNotFound, idOrName)
		}
		for _, pos := range positions {
			if !p.Eligible(pos) {
				return fmt.Errorf("%w: %s does not play %q", model.ErrInvalidPosition, p.Name, pos)
			}
		}
		now := s.now()
		reset = p.Reset(s.model.Params().InitialRating, now, positions...)
		doc.ReplacePlayer(reset)
		doc.UpdatedAt = now
		return nil
	})
	if err != nil {
		return model.Player{}, s.fail(ctx, "reset player", err)
	}
	s.logger.Info(ctx, "player ratings reset",
		logger.String("sessionID", sessionID),
		logger.String("playerID", reset.ID),
		logger.Any("positions", positions),
	)
	return reset, nil
}

// checkPositions requires at least one position, each declared by the
// session's activity.
func (s *Service) checkPositions(activityID string, positions []string) error {
	act, err := s.catalog.Activity(activityID)
	if err != nil {
		return err
	}
	codes := lo.Filter(positions, func(p string, _ int) bool { return strings.TrimSpace(p) != "" })
	if len(codes) == 0 {
		return fmt.Errorf("%w: at least one position is required", model.ErrInvalidInput)
	}
	for _, pos := range codes {
		if !act.HasPosition(strings.TrimSpace(pos)) {
			return fmt.Errorf("%w: %q is not a %s position", model.ErrInvalidPosition, pos, act.Name)
		}
	}
	return nil
}

// checkPosition validates an optional position filter.
func (s *Service) checkPosition(activityID, position string) error {
	if position == "" {
		return nil
	}
	return s.checkPositions(activityID, []string{position})
}

// taken reports whether another player than exceptID already uses name.
func taken(players []model.Player, name, exceptID string) bool {
	return lo.ContainsBy(players, func(p model.Player) bool {
		return p.ID != exceptID && model.SameName(p.Name, name)
	})
}
