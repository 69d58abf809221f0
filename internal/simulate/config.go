package simulate

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Activity    string        // Activity the session is created for
	Players     int           // Number of simulated players
	Comparisons int           // Number of comparisons to record
	Workers     int           // Number of concurrent workers
	Timeout     time.Duration // HTTP request timeout
	Seed        uint64        // Seed for hidden skills and outcomes
	Spread      float64       // Standard deviation of hidden skill around the initial rating
	DrawRate    float64       // Probability a comparison is recorded as a draw
	ReplayRate  float64       // Probability a comparison is resubmitted with the same request id
	Teams       int           // Number of teams to generate at the end (0 skips)
	MinCorr     float64       // Minimum rank correlation per position (0 disables the check)
	OutputFile  string        // Report file (default: simulation_TIMESTAMP.json)
	LogFile     string        // Log file for run output
	Verbose     bool          // Enable verbose logging
}

// Activity mirrors the activity catalog entry served by the API.
type Activity struct {
	ID                 string            `json:"id"`
	Name               string            `json:"name"`
	PositionOrder      []string          `json:"position_order"`
	PositionNames      map[string]string `json:"position_names"`
	DefaultComposition map[string]int    `json:"default_composition"`
}

// Player is a simulated player with a hidden true skill.
type Player struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Positions []string           `json:"positions"`
	Skill     map[string]float64 `json:"skill"`
}

// Suggestion is the next-comparison payload.
type Suggestion struct {
	Player1  struct{ ID string } `json:"player1"`
	Player2  struct{ ID string } `json:"player2"`
	Position string              `json:"position"`
	Reason   string              `json:"reason"`
}

// Ranking is one position's leaderboard.
type Ranking struct {
	Position string `json:"position"`
	Rankings []struct {
		ID     string  `json:"id"`
		Name   string  `json:"name"`
		Rating float64 `json:"rating"`
		Rank   int     `json:"rank"`
	} `json:"rankings"`
}

// TeamsOutcome is the subset of the team generation result the run checks.
type TeamsOutcome struct {
	TeamCount int `json:"team_count"`
	Teams     []struct {
		TotalRating float64 `json:"total_rating"`
		PlayerCount int     `json:"player_count"`
	} `json:"teams"`
	Quality struct {
		Balance       float64 `json:"balance"`
		MaxDifference float64 `json:"max_difference"`
		IsBalanced    bool    `json:"is_balanced"`
	} `json:"quality"`
}

// Job is the async team job payload.
type Job struct {
	ID     string        `json:"id"`
	Status string        `json:"status"`
	Result *TeamsOutcome `json:"result"`
	Error  string        `json:"error"`
}

// Stats holds run statistics.
type Stats struct {
	SessionID           string             `json:"session_id"`
	PlayersAdded        int                `json:"players_added"`
	ComparisonsSent     int                `json:"comparisons_sent"`
	ComparisonsRecorded int                `json:"comparisons_recorded"`
	Duplicates          int                `json:"duplicates"`
	Conflicts           int                `json:"conflicts"`
	Failed              int                `json:"failed"`
	Reasons             map[string]int     `json:"reasons"`
	Correlation         map[string]float64 `json:"correlation"`
	SyncTeams           *TeamsOutcome      `json:"sync_teams,omitempty"`
	AsyncTeams          *TeamsOutcome      `json:"async_teams,omitempty"`
	StartTime           time.Time          `json:"start_time"`
	EndTime             time.Time          `json:"end_time"`
	Duration            time.Duration      `json:"duration"`
}
