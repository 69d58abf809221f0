package model

import (
	"slices"
	"time"
)

// Session is the storage document: one roster with its comparison history.
type Session struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	ActivityID  string       `json:"activity_id"`
	Players     []Player     `json:"players"`
	Comparisons []Comparison `json:"comparisons"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Clone returns a deep copy of the session document.
func (s Session) Clone() Session {
	c := s
	c.Players = make([]Player, len(s.Players))
	for i, p := range s.Players {
		c.Players[i] = p.Clone()
	}
	c.Comparisons = slices.Clone(s.Comparisons)
	return c
}

// FindPlayer looks a player up by id, or by case-insensitive name.
func (s Session) FindPlayer(idOrName string) (Player, int, bool) {
	for i, p := range s.Players {
		if p.ID == idOrName {
			return p, i, true
		}
	}
	for i, p := range s.Players {
		if SameName(p.Name, idOrName) {
			return p, i, true
		}
	}
	return Player{}, -1, false
}

// ReplacePlayer swaps in an updated player value with the same id.
func (s *Session) ReplacePlayer(p Player) bool {
	for i := range s.Players {
		if s.Players[i].ID == p.ID {
			s.Players[i] = p
			return true
		}
	}
	return false
}

// RemovePlayer drops the player with id from the roster.
func (s *Session) RemovePlayer(id string) bool {
	n := len(s.Players)
	s.Players = slices.DeleteFunc(s.Players, func(p Player) bool { return p.ID == id })
	return len(s.Players) != n
}

// EligibleCount returns how many of players may play position.
func EligibleCount(players []Player, position string) int {
	n := 0
	for _, p := range players {
		if p.Eligible(position) {
			n++
		}
	}
	return n
}
