package mcp

import (
	"context"
	"fmt"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	service "github.com/okian/matchup/internal/app"
)

// ListActivitiesArgs is the input schema for list_activities (no parameters).
type ListActivitiesArgs struct{}

// CreateSessionArgs is the input schema for create_session.
type CreateSessionArgs struct {
	Activity string `json:"activity" jsonschema:"Activity id, e.g. volleyball or league"`
	Name     string `json:"name,omitempty" jsonschema:"Display name (defaults to the activity name)"`
}

// AddPlayerArgs is the input schema for add_player.
type AddPlayerArgs struct {
	SessionID string   `json:"session_id" jsonschema:"Session id"`
	Name      string   `json:"name" jsonschema:"Player name, unique within the session ignoring case"`
	Positions []string `json:"positions" jsonschema:"Position codes the player can play"`
}

// SessionArgs is the input schema for tools that only need a session.
type SessionArgs struct {
	SessionID string `json:"session_id" jsonschema:"Session id"`
}

// PositionArgs is the input schema for tools with an optional position.
type PositionArgs struct {
	SessionID string `json:"session_id" jsonschema:"Session id"`
	Position  string `json:"position,omitempty" jsonschema:"Position code (empty = all positions)"`
}

// RecordComparisonArgs is the input schema for record_comparison.
type RecordComparisonArgs struct {
	SessionID string  `json:"session_id" jsonschema:"Session id"`
	Player1   string  `json:"player1" jsonschema:"First player id or name"`
	Player2   string  `json:"player2" jsonschema:"Second player id or name"`
	Winner    *string `json:"winner,omitempty" jsonschema:"Winning player id or name (omit for a draw)"`
	Position  string  `json:"position" jsonschema:"Position the players were compared at"`
	RequestID string  `json:"request_id,omitempty" jsonschema:"Idempotency key; a repeated key is not applied twice"`
}

// GenerateTeamsArgs is the input schema for generate_teams.
type GenerateTeamsArgs struct {
	SessionID   string         `json:"session_id" jsonschema:"Session id"`
	TeamCount   int            `json:"team_count,omitempty" jsonschema:"Number of teams (default 2)"`
	Composition map[string]int `json:"composition,omitempty" jsonschema:"Players per position per team (default: activity composition)"`
}

func (s *Server) registerTools() {
	addTool(s, &sdk.Tool{
		Name:        "list_activities",
		Description: "Activities sessions can be created for, with their positions and default team composition",
	}, func(ctx context.Context, _ *sdk.CallToolRequest, _ ListActivitiesArgs) (*sdk.CallToolResult, any, error) {
		return s.toolJSON(ctx, "list_activities", s.deps.Activities(), nil)
	})

	addTool(s, &sdk.Tool{
		Name:        "create_session",
		Description: "Create an empty roster for an activity",
	}, func(ctx context.Context, _ *sdk.CallToolRequest, args CreateSessionArgs) (*sdk.CallToolResult, any, error) {
		if args.Activity == "" {
			return s.toolError(ctx, "create_session", fmt.Errorf("activity is required")), nil, nil
		}
		doc, err := s.deps.CreateSession(ctx, args.Name, args.Activity)
		return s.toolJSON(ctx, "create_session", doc, err)
	})

	addTool(s, &sdk.Tool{
		Name:        "add_player",
		Description: "Add a player with the positions they can play; every position starts at the initial rating",
	}, func(ctx context.Context, _ *sdk.CallToolRequest, args AddPlayerArgs) (*sdk.CallToolResult, any, error) {
		p, err := s.deps.AddPlayer(ctx, args.SessionID, args.Name, args.Positions)
		return s.toolJSON(ctx, "add_player", p, err)
	})

	addTool(s, &sdk.Tool{
		Name:        "list_players",
		Description: "Roster with per-position ratings and comparison counts",
	}, func(ctx context.Context, _ *sdk.CallToolRequest, args SessionArgs) (*sdk.CallToolResult, any, error) {
		players, err := s.deps.Players(ctx, args.SessionID)
		return s.toolJSON(ctx, "list_players", players, err)
	})

	addTool(s, &sdk.Tool{
		Name:        "next_comparison",
		Description: "Suggest the most informative pair to compare next, with the reason",
	}, func(ctx context.Context, _ *sdk.CallToolRequest, args PositionArgs) (*sdk.CallToolResult, any, error) {
		sug, err := s.deps.NextComparison(ctx, args.SessionID, args.Position)
		return s.toolJSON(ctx, "next_comparison", sug, err)
	})

	addTool(s, &sdk.Tool{
		Name:        "record_comparison",
		Description: "Record which of two players is better at a position, or a draw, and update both ratings",
	}, func(ctx context.Context, _ *sdk.CallToolRequest, args RecordComparisonArgs) (*sdk.CallToolResult, any, error) {
		res, err := s.deps.RecordComparison(ctx, args.SessionID, service.ComparisonInput{
			Player1:   args.Player1,
			Player2:   args.Player2,
			Winner:    args.Winner,
			Position:  args.Position,
			RequestID: args.RequestID,
		})
		return s.toolJSON(ctx, "record_comparison", res, err)
	})

	addTool(s, &sdk.Tool{
		Name:        "rankings",
		Description: "Players ordered by rating at each position",
	}, func(ctx context.Context, _ *sdk.CallToolRequest, args PositionArgs) (*sdk.CallToolResult, any, error) {
		ranks, err := s.deps.Rankings(ctx, args.SessionID, args.Position)
		return s.toolJSON(ctx, "rankings", ranks, err)
	})

	addTool(s, &sdk.Tool{
		Name:        "comparison_stats",
		Description: "How many distinct pairs have been compared out of all possible pairs, per position",
	}, func(ctx context.Context, _ *sdk.CallToolRequest, args SessionArgs) (*sdk.CallToolResult, any, error) {
		st, err := s.deps.Stats(ctx, args.SessionID)
		return s.toolJSON(ctx, "comparison_stats", st, err)
	})

	addTool(s, &sdk.Tool{
		Name:        "generate_teams",
		Description: "Split the roster into balanced teams that respect the position composition",
	}, func(ctx context.Context, _ *sdk.CallToolRequest, args GenerateTeamsArgs) (*sdk.CallToolResult, any, error) {
		out, err := s.deps.GenerateTeams(ctx, args.SessionID, service.TeamRequest{
			TeamCount:   args.TeamCount,
			Composition: args.Composition,
		})
		return s.toolJSON(ctx, "generate_teams", out, err)
	})
}
