package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/relaychat/relay-server/internal/domain"
)

func (s *Server) registerTeamRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getTeamStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/teams/{teamID}/stats",
		Summary:     "Get team stats",
		Description: "Returns member counts for a team",
		Tags:        []string{"Teams"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetTeamStats)
}

// TeamStatsInput identifies the team.
type TeamStatsInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	TeamID        string `path:"teamID" doc:"Team ID"`
}

// TeamStatsOutput wraps the team stats.
type TeamStatsOutput struct {
	Body domain.TeamStats
}

func (s *Server) handleGetTeamStats(ctx context.Context, input *TeamStatsInput) (*TeamStatsOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	stats, err := s.services.Channel.TeamStats(ctx, input.TeamID)
	if err != nil {
		return nil, err
	}
	return &TeamStatsOutput{Body: *stats}, nil
}
