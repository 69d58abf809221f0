package model

import "time"

// SideChange captures one side of a recorded comparison.
type SideChange struct {
	PlayerID  string  `json:"player_id"`
	OldRating float64 `json:"old_rating"`
	NewRating float64 `json:"new_rating"`
	Delta     float64 `json:"delta"`
	KFactor   float64 `json:"k_factor"`
	Expected  float64 `json:"expected"`
}

// Comparison is an append-only history record of one head-to-head judgment.
// WinnerID is nil for a draw.
type Comparison struct {
	ID        string     `json:"id"`
	Player1ID string     `json:"player1_id"`
	Player2ID string     `json:"player2_id"`
	Position  string     `json:"position"`
	WinnerID  *string    `json:"winner_id"`
	Timestamp time.Time  `json:"timestamp"`
	Player1   SideChange `json:"player1"`
	Player2   SideChange `json:"player2"`
}

// IsDraw reports whether the comparison ended without a winner.
func (c Comparison) IsDraw() bool { return c.WinnerID == nil }

// Involves reports whether playerID took part in the comparison.
func (c Comparison) Involves(playerID string) bool {
	return c.Player1ID == playerID || c.Player2ID == playerID
}
