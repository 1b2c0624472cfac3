package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/relaychat/relay-server/internal/domain"
	"github.com/relaychat/relay-server/internal/picker"
	"github.com/relaychat/relay-server/internal/store"
)

// PickerService builds invite picker sessions wired to the rest of the
// server. The picker core itself is transport-agnostic; this service is the
// single place where its injected actions are bound to real storage, search,
// presence, and the membership commit.
type PickerService struct {
	store         *store.Store
	profiles      *ProfileService
	groups        *GroupService
	channels      *ChannelService
	presence      *PresenceService
	debounceDelay time.Duration
	perPage       int
	logger        *slog.Logger
}

// NewPickerService creates a new picker service.
func NewPickerService(
	store *store.Store,
	profiles *ProfileService,
	groups *GroupService,
	channels *ChannelService,
	presence *PresenceService,
	debounceDelay time.Duration,
	perPage int,
	logger *slog.Logger,
) *PickerService {
	return &PickerService{
		store:         store,
		profiles:      profiles,
		groups:        groups,
		channels:      channels,
		presence:      presence,
		debounceDelay: debounceDelay,
		perPage:       perPage,
		logger:        logger,
	}
}

// SessionParams identifies the channel and inviting user for a new picker
// session.
type SessionParams struct {
	TeamID           string
	ChannelID        string
	UserID           string
	GroupConstrained bool
	// Exclude lists user IDs the caller wants left out of the option list.
	Exclude []string
}

// NewSession creates a picker session for one invite interaction.
func (s *PickerService) NewSession(params SessionParams) *picker.Session {
	return picker.NewSession(picker.Config{
		TeamID:           params.TeamID,
		ChannelID:        params.ChannelID,
		UserID:           params.UserID,
		GroupConstrained: params.GroupConstrained,
		Exclude:          params.Exclude,
		PerPage:          s.perPage,
		DebounceDelay:    s.debounceDelay,
		Actions:          s.actions(params.UserID),
		Logger:           s.logger,
	})
}

// Options computes one option list synchronously, for stateless transports
// that keep the debounce on the client side. It draws from the same pools a
// live session would: base membership pools when the term is empty, search
// results otherwise.
func (s *PickerService) Options(ctx context.Context, params SessionParams, term string, page int) ([]picker.Option, error) {
	var pools picker.Pools
	var err error

	if term == "" {
		pools.NotInChannel, err = s.store.ProfilesNotInChannel(ctx,
			params.TeamID, params.ChannelID, params.GroupConstrained, page, s.perPage)
		if err != nil {
			return nil, fmt.Errorf("fetching invitable profiles: %w", err)
		}
		if params.UserID != "" {
			pools.RecentDMs, err = s.store.RecentContacts(ctx, params.UserID, picker.MaxRecentContacts)
			if err != nil {
				return nil, fmt.Errorf("fetching recent contacts: %w", err)
			}
		}
	} else {
		found, err := s.profiles.SearchProfiles(ctx, term, SearchProfilesOptions{})
		if err != nil {
			return nil, err
		}
		pools.NotInChannel, pools.NotInTeam, err = s.splitByTeam(ctx, params.TeamID, found)
		if err != nil {
			return nil, err
		}
		pools.InChannel, err = s.store.ProfilesInChannel(ctx, params.ChannelID, 0, s.perPage, true)
		if err != nil {
			return nil, fmt.Errorf("fetching channel profiles: %w", err)
		}
	}

	pools.Groups, err = s.groups.SearchGroups(ctx, term, SearchGroupsOptions{
		FilterChannelID: params.ChannelID,
	})
	if err != nil {
		return nil, err
	}

	return picker.ComputeOptions(pools, term, params.Exclude), nil
}

// splitByTeam partitions users into active team members and everyone else.
func (s *PickerService) splitByTeam(ctx context.Context, teamID string, users []domain.User) (members, notInTeam []domain.User, err error) {
	if len(users) == 0 {
		return nil, nil, nil
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	active, err := s.store.TeamMembersByIDs(ctx, teamID, ids)
	if err != nil {
		return nil, nil, fmt.Errorf("checking team membership: %w", err)
	}
	inTeam := make(map[string]bool, len(active))
	for _, m := range active {
		inTeam[m.UserID] = true
	}
	for _, u := range users {
		if inTeam[u.ID] {
			members = append(members, u)
		} else {
			notInTeam = append(notInTeam, u)
		}
	}
	return members, notInTeam, nil
}

func (s *PickerService) actions(actorID string) picker.Actions {
	return picker.Actions{
		FetchProfilesNotInChannel: s.store.ProfilesNotInChannel,
		FetchProfilesInChannel:    s.store.ProfilesInChannel,
		FetchRecentContacts:       s.store.RecentContacts,
		FetchTeamStats: func(ctx context.Context, teamID string) {
			if _, err := s.channels.TeamStats(ctx, teamID); err != nil {
				s.logger.Warn("team stats prefetch failed", "team_id", teamID, "error", err)
			}
		},
		LoadStatusesForProfiles: s.presence.WarmStatuses,
		SearchProfiles: func(ctx context.Context, term string, opts picker.SearchProfilesOptions) ([]domain.User, error) {
			return s.profiles.SearchProfiles(ctx, term, SearchProfilesOptions{
				AllowInactive: opts.AllowInactive,
				Limit:         opts.Limit,
			})
		},
		SearchGroups: func(ctx context.Context, term, _ string, opts picker.SearchGroupsOptions) ([]domain.Group, error) {
			return s.groups.SearchGroups(ctx, term, SearchGroupsOptions{
				FilterChannelID: opts.FilterChannelID,
				Limit:           opts.Limit,
			})
		},
		GetTeamMembersByIDs: s.store.TeamMembersByIDs,
		AddUsersToChannel: func(ctx context.Context, channelID string, userIDs []string) error {
			return s.channels.AddUsersToChannel(ctx, actorID, channelID, userIDs)
		},
	}
}
