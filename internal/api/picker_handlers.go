package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/relaychat/relay-server/internal/domain"
	"github.com/relaychat/relay-server/internal/picker"
	"github.com/relaychat/relay-server/internal/service"
)

func (s *Server) registerChannelRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getInviteOptions",
		Method:      http.MethodGet,
		Path:        "/api/v1/channels/{channelID}/invite/options",
		Summary:     "Get invite options",
		Description: "Returns the ranked option list for inviting users to a channel",
		Tags:        []string{"Channels"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetInviteOptions)

	huma.Register(s.api, huma.Operation{
		OperationID: "addChannelMembers",
		Method:      http.MethodPost,
		Path:        "/api/v1/channels/{channelID}/members",
		Summary:     "Add channel members",
		Description: "Adds the given users to the channel",
		Tags:        []string{"Channels"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddChannelMembers)
}

// InviteOptionsInput identifies the channel and search state.
type InviteOptionsInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ChannelID     string `path:"channelID" doc:"Channel ID"`
	Term          string `query:"term" doc:"Search term, empty for the base list"`
	Page          int    `query:"page" doc:"Page of the invitable-user pool" default:"0" minimum:"0"`
}

// OptionResponse is one entry in the option list. Exactly one of User and
// Group is set, matching Type.
type OptionResponse struct {
	Type  string        `json:"type" enum:"user,group" doc:"Option kind"`
	User  *domain.User  `json:"user,omitempty" doc:"User payload for type=user"`
	Group *domain.Group `json:"group,omitempty" doc:"Group payload for type=group"`
}

// InviteOptionsOutput wraps the option list.
type InviteOptionsOutput struct {
	Body struct {
		Options []OptionResponse `json:"options" doc:"Ranked invite options"`
	}
}

// AddMembersInput contains the users to add.
type AddMembersInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ChannelID     string `path:"channelID" doc:"Channel ID"`
	Body          struct {
		UserIDs []string `json:"user_ids" minItems:"1" doc:"Users to add to the channel"`
	}
}

// AddMembersOutput confirms the membership change.
type AddMembersOutput struct {
	Body struct {
		ChannelID string   `json:"channel_id" doc:"Channel the users were added to"`
		UserIDs   []string `json:"user_ids" doc:"Users that are now members"`
	}
}

func (s *Server) handleGetInviteOptions(ctx context.Context, input *InviteOptionsInput) (*InviteOptionsOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if input.Term != "" {
		if err := s.checkSearchRateLimit(userID); err != nil {
			return nil, err
		}
	}

	channel, err := s.services.Channel.GetChannel(ctx, input.ChannelID)
	if err != nil {
		return nil, err
	}

	options, err := s.services.Picker.Options(ctx, service.SessionParams{
		TeamID:           channel.TeamID,
		ChannelID:        channel.ID,
		UserID:           userID,
		GroupConstrained: channel.GroupConstrained,
	}, input.Term, input.Page)
	if err != nil {
		return nil, err
	}

	out := &InviteOptionsOutput{}
	out.Body.Options = make([]OptionResponse, 0, len(options))
	for _, opt := range options {
		out.Body.Options = append(out.Body.Options, toOptionResponse(opt))
	}
	return out, nil
}

func (s *Server) handleAddChannelMembers(ctx context.Context, input *AddMembersInput) (*AddMembersOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Channel.AddUsersToChannel(ctx, userID, input.ChannelID, input.Body.UserIDs); err != nil {
		return nil, err
	}

	out := &AddMembersOutput{}
	out.Body.ChannelID = input.ChannelID
	out.Body.UserIDs = input.Body.UserIDs
	return out, nil
}

func toOptionResponse(opt picker.Option) OptionResponse {
	switch opt.Kind {
	case picker.OptionGroup:
		group := opt.Group
		return OptionResponse{Type: "group", Group: &group}
	default:
		user := opt.User.Sanitize()
		return OptionResponse{Type: "user", User: &user}
	}
}
