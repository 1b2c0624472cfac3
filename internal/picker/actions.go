package picker

import (
	"context"

	"github.com/relaychat/relay-server/internal/domain"
)

// SearchProfilesOptions tunes a profile search dispatch.
type SearchProfilesOptions struct {
	TeamID        string
	AllowInactive bool
	Limit         int
}

// SearchGroupsOptions tunes a group search dispatch.
type SearchGroupsOptions struct {
	// FilterChannelID restricts results to groups associated with the
	// channel's team when set.
	FilterChannelID string
	Limit           int
}

// Actions are the injected capabilities the picker core calls out to. The
// core owns no persistence, networking, or search of its own; every lookup
// and the final membership commit go through these functions. Optional
// fields (FetchTeamStats, LoadStatusesForProfiles) may be nil.
type Actions struct {
	FetchProfilesNotInChannel func(ctx context.Context, teamID, channelID string, groupConstrained bool, page, perPage int) ([]domain.User, error)
	FetchProfilesInChannel    func(ctx context.Context, channelID string, page, perPage int, activeOnly bool) ([]domain.User, error)
	FetchRecentContacts       func(ctx context.Context, userID string, limit int) ([]domain.User, error)
	FetchTeamStats            func(ctx context.Context, teamID string)
	LoadStatusesForProfiles   func(users []domain.User)
	SearchProfiles            func(ctx context.Context, term string, opts SearchProfilesOptions) ([]domain.User, error)
	SearchGroups              func(ctx context.Context, term, teamID string, opts SearchGroupsOptions) ([]domain.Group, error)
	GetTeamMembersByIDs       func(ctx context.Context, teamID string, ids []string) ([]domain.TeamMember, error)
	AddUsersToChannel         func(ctx context.Context, channelID string, userIDs []string) error
}
