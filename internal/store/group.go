package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/relaychat/relay-server/internal/domain"
)

const groupPrefix = "group:"

// CreateGroup creates a user group and mirrors it into the search index.
func (s *Store) CreateGroup(ctx context.Context, group *domain.Group) error {
	group.MemberCount = len(group.MemberIDs)
	if err := s.set([]byte(groupPrefix+group.ID), group); err != nil {
		return err
	}
	s.indexGroup(ctx, group)
	return nil
}

// GetGroup retrieves a group by ID.
func (s *Store) GetGroup(_ context.Context, id string) (*domain.Group, error) {
	var group domain.Group
	if err := s.get([]byte(groupPrefix+id), &group); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("get group: %w", err)
	}
	return &group, nil
}

// UpdateGroup updates a group and keeps its derived member count current.
func (s *Store) UpdateGroup(ctx context.Context, group *domain.Group) error {
	if _, err := s.GetGroup(ctx, group.ID); err != nil {
		return err
	}
	group.UpdateAt = nowMillis()
	group.MemberCount = len(group.MemberIDs)
	if err := s.set([]byte(groupPrefix+group.ID), group); err != nil {
		return err
	}
	s.indexGroup(ctx, group)
	return nil
}

// ListGroups returns all active groups sorted by name.
func (s *Store) ListGroups(_ context.Context) ([]domain.Group, error) {
	var groups []domain.Group
	err := s.iteratePrefix([]byte(groupPrefix), func(val []byte) (bool, error) {
		var group domain.Group
		if err := json.Unmarshal(val, &group); err != nil {
			return true, nil
		}
		if group.IsActive() {
			groups = append(groups, group)
		}
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	slices.SortFunc(groups, func(a, b domain.Group) int {
		return strings.Compare(a.Name, b.Name)
	})
	return groups, nil
}

// GroupMemberIDs returns the member IDs of a group, used by picker
// sessions to expand group selections.
func (s *Store) GroupMemberIDs(ctx context.Context, groupID string) ([]string, error) {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(group.MemberIDs), nil
}

func (s *Store) indexGroup(ctx context.Context, group *domain.Group) {
	if err := s.searchIndexer.IndexGroup(ctx, group); err != nil && s.logger != nil {
		s.logger.Warn("index group failed", "group_id", group.ID, "error", err)
	}
}
