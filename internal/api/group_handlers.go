package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/relaychat/relay-server/internal/domain"
	"github.com/relaychat/relay-server/internal/service"
)

func (s *Server) registerGroupRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "autocompleteGroups",
		Method:      http.MethodGet,
		Path:        "/api/v1/teams/{teamID}/groups/autocomplete",
		Summary:     "Autocomplete groups",
		Description: "Returns groups matching a name prefix",
		Tags:        []string{"Groups"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAutocompleteGroups)

	huma.Register(s.api, huma.Operation{
		OperationID: "getGroupMembers",
		Method:      http.MethodGet,
		Path:        "/api/v1/groups/{groupID}/members",
		Summary:     "Get group members",
		Description: "Returns the active members of a group, for expanding a group selection",
		Tags:        []string{"Groups"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetGroupMembers)
}

// AutocompleteGroupsInput carries the search term and optional channel
// filter.
type AutocompleteGroupsInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	TeamID        string `path:"teamID" doc:"Team ID"`
	Term          string `query:"term" doc:"Name prefix to match"`
	InChannel     string `query:"in_channel" doc:"Restrict to groups associated with this channel"`
	Limit         int    `query:"limit" doc:"Maximum results" default:"20"`
}

// GroupListOutput wraps a list of groups.
type GroupListOutput struct {
	Body struct {
		Groups []domain.Group `json:"groups" doc:"Matching groups"`
	}
}

// GroupMembersInput identifies the group.
type GroupMembersInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	GroupID       string `path:"groupID" doc:"Group ID"`
}

// UserListOutput wraps a list of users.
type UserListOutput struct {
	Body struct {
		Users []domain.User `json:"users" doc:"Users"`
	}
}

func (s *Server) handleAutocompleteGroups(ctx context.Context, input *AutocompleteGroupsInput) (*GroupListOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.checkSearchRateLimit(userID); err != nil {
		return nil, err
	}

	groups, err := s.services.Group.SearchGroups(ctx, input.Term, service.SearchGroupsOptions{
		FilterChannelID: input.InChannel,
		Limit:           input.Limit,
	})
	if err != nil {
		return nil, err
	}

	out := &GroupListOutput{}
	out.Body.Groups = groups
	return out, nil
}

func (s *Server) handleGetGroupMembers(ctx context.Context, input *GroupMembersInput) (*UserListOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	users, err := s.services.Group.GroupMembers(ctx, input.GroupID)
	if err != nil {
		return nil, err
	}

	out := &UserListOutput{}
	out.Body.Users = users
	return out, nil
}
