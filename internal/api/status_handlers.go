package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/relaychat/relay-server/internal/domain"
	domainerrors "github.com/relaychat/relay-server/internal/errors"
)

func (s *Server) registerStatusRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getStatusesByIDs",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/statuses/ids",
		Summary:     "Get statuses by IDs",
		Description: "Returns presence for the given user IDs",
		Tags:        []string{"Status"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetStatusesByIDs)

	huma.Register(s.api, huma.Operation{
		OperationID: "setMyStatus",
		Method:      http.MethodPut,
		Path:        "/api/v1/users/me/status",
		Summary:     "Set my status",
		Description: "Sets the authenticated user's presence",
		Tags:        []string{"Status"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetMyStatus)
}

// StatusesByIDsInput contains the user IDs to look up.
type StatusesByIDsInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	Body          struct {
		UserIDs []string `json:"user_ids" minItems:"1" maxItems:"200" doc:"Users to fetch presence for"`
	}
}

// StatusListOutput wraps a list of statuses.
type StatusListOutput struct {
	Body struct {
		Statuses []domain.Status `json:"statuses" doc:"Presence entries"`
	}
}

// SetStatusInput contains the new presence state.
type SetStatusInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	Body          struct {
		State  string `json:"state" enum:"online,away,dnd,offline" doc:"Presence state"`
		Manual bool   `json:"manual,omitempty" doc:"Whether the user set this explicitly"`
	}
}

// StatusOutput wraps a single status.
type StatusOutput struct {
	Body domain.Status
}

func (s *Server) handleGetStatusesByIDs(ctx context.Context, input *StatusesByIDsInput) (*StatusListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	statuses, err := s.services.Presence.GetStatusesByIDs(ctx, input.Body.UserIDs)
	if err != nil {
		return nil, err
	}

	out := &StatusListOutput{}
	out.Body.Statuses = statuses
	return out, nil
}

func (s *Server) handleSetMyStatus(ctx context.Context, input *SetStatusInput) (*StatusOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	state := domain.PresenceState(input.Body.State)
	switch state {
	case domain.PresenceOnline, domain.PresenceAway, domain.PresenceDND, domain.PresenceOffline:
	default:
		return nil, domainerrors.Validationf("unknown presence state %q", input.Body.State)
	}

	status, err := s.services.Presence.SetStatus(ctx, userID, state, input.Body.Manual)
	if err != nil {
		return nil, err
	}
	return &StatusOutput{Body: *status}, nil
}
