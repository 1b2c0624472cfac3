package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/relaychat/relay-server/internal/domain"
	domainerrors "github.com/relaychat/relay-server/internal/errors"
	"github.com/relaychat/relay-server/internal/search"
	"github.com/relaychat/relay-server/internal/store"
)

// GroupService provides group lookup and autocomplete.
type GroupService struct {
	store  *store.Store
	search *search.SearchIndex
	logger *slog.Logger
}

// NewGroupService creates a new group service.
func NewGroupService(store *store.Store, searchIndex *search.SearchIndex, logger *slog.Logger) *GroupService {
	return &GroupService{
		store:  store,
		search: searchIndex,
		logger: logger,
	}
}

// GetGroup returns a group by ID.
func (s *GroupService) GetGroup(ctx context.Context, id string) (*domain.Group, error) {
	group, err := s.store.GetGroup(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrGroupNotFound) {
			return nil, domainerrors.NotFoundf("group %s not found", id)
		}
		return nil, fmt.Errorf("getting group: %w", err)
	}
	return group, nil
}

// GroupMembers returns the hydrated active members of a group, for expanding
// a group selection into individual users.
func (s *GroupService) GroupMembers(ctx context.Context, groupID string) ([]domain.User, error) {
	ids, err := s.store.GroupMemberIDs(ctx, groupID)
	if err != nil {
		if errors.Is(err, store.ErrGroupNotFound) {
			return nil, domainerrors.NotFoundf("group %s not found", groupID)
		}
		return nil, fmt.Errorf("listing group members: %w", err)
	}
	users, err := s.store.GetProfilesByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("hydrating group members: %w", err)
	}
	active := users[:0]
	for _, u := range users {
		if u.IsActive() {
			active = append(active, u.Sanitize())
		}
	}
	return active, nil
}

// SearchGroupsOptions tunes SearchGroups.
type SearchGroupsOptions struct {
	// FilterChannelID restricts results to groups associated with the
	// channel, for group-constrained invite flows.
	FilterChannelID string
	// Limit caps the number of results. Zero means the search default.
	Limit int
}

// SearchGroups returns active groups matching term. An empty term lists all
// groups, which backs the initial picker pool.
func (s *GroupService) SearchGroups(ctx context.Context, term string, opts SearchGroupsOptions) ([]domain.Group, error) {
	var groups []domain.Group
	if term == "" {
		all, err := s.store.ListGroups(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing groups: %w", err)
		}
		groups = all
		if opts.Limit > 0 && len(groups) > opts.Limit {
			groups = groups[:opts.Limit]
		}
	} else {
		found, err := s.searchGroupsIndexed(ctx, term, opts.Limit)
		if err != nil {
			return nil, err
		}
		groups = found
	}

	if opts.FilterChannelID == "" {
		return groups, nil
	}
	channel, err := s.store.GetChannel(ctx, opts.FilterChannelID)
	if err != nil {
		if errors.Is(err, store.ErrChannelNotFound) {
			return nil, domainerrors.NotFoundf("channel %s not found", opts.FilterChannelID)
		}
		return nil, fmt.Errorf("getting channel: %w", err)
	}
	// The filter only bites on group-constrained channels; otherwise any
	// group may be offered.
	if !channel.GroupConstrained {
		return groups, nil
	}

	allowed, err := s.store.ChannelGroupIDs(ctx, opts.FilterChannelID)
	if err != nil {
		return nil, fmt.Errorf("listing channel groups: %w", err)
	}
	filtered := make([]domain.Group, 0, len(groups))
	for _, g := range groups {
		if slices.Contains(allowed, g.ID) {
			filtered = append(filtered, g)
		}
	}
	return filtered, nil
}

func (s *GroupService) searchGroupsIndexed(ctx context.Context, term string, limit int) ([]domain.Group, error) {
	params := search.DefaultSearchParams()
	params.Query = term
	params.Types = []string{string(search.DocTypeGroup)}
	if limit > 0 {
		params.Limit = limit
	}

	result, err := s.search.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("searching groups: %w", err)
	}

	groups := make([]domain.Group, 0, len(result.Hits))
	for _, hit := range result.Hits {
		group, err := s.store.GetGroup(ctx, hit.ID)
		if err != nil {
			if errors.Is(err, store.ErrGroupNotFound) {
				continue
			}
			return nil, fmt.Errorf("hydrating group %s: %w", hit.ID, err)
		}
		// The index may lag a delete; drop groups removed since indexing.
		if !group.IsActive() {
			continue
		}
		groups = append(groups, *group)
	}
	return groups, nil
}
