package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/relaychat/relay-server/internal/domain"
)

const (
	teamPrefix       = "team:"
	teamMemberPrefix = "tmember:" // tmember:{teamID}:{userID}
)

func teamMemberKey(teamID, userID string) []byte {
	return []byte(teamMemberPrefix + teamID + ":" + userID)
}

// CreateTeam creates a new team.
func (s *Store) CreateTeam(_ context.Context, team *domain.Team) error {
	return s.set([]byte(teamPrefix+team.ID), team)
}

// GetTeam retrieves a team by ID.
func (s *Store) GetTeam(_ context.Context, id string) (*domain.Team, error) {
	var team domain.Team
	if err := s.get([]byte(teamPrefix+id), &team); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("get team: %w", err)
	}
	return &team, nil
}

// AddTeamMember adds a user to a team. Re-adding an existing active member
// is a no-op; a previously removed membership is reactivated.
func (s *Store) AddTeamMember(ctx context.Context, teamID, userID string) error {
	key := teamMemberKey(teamID, userID)

	existing, err := s.getTeamMember(teamID, userID)
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("check team member: %w", err)
	}
	if existing != nil && existing.IsActive() {
		return nil
	}

	member := domain.TeamMember{
		TeamID:   teamID,
		UserID:   userID,
		Roles:    domain.RoleTeamUser,
		CreateAt: nowMillis(),
	}
	if existing != nil {
		member.Roles = existing.Roles
		member.CreateAt = existing.CreateAt
	}
	return s.set(key, member)
}

// RemoveTeamMember soft-deletes a team membership.
func (s *Store) RemoveTeamMember(_ context.Context, teamID, userID string) error {
	member, err := s.getTeamMember(teamID, userID)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return fmt.Errorf("get team member: %w", err)
	}
	member.DeleteAt = nowMillis()
	return s.set(teamMemberKey(teamID, userID), member)
}

// TeamMembersByIDs returns active team memberships for the given user IDs.
// Users without an active membership are simply absent from the result.
func (s *Store) TeamMembersByIDs(_ context.Context, teamID string, userIDs []string) ([]domain.TeamMember, error) {
	members := make([]domain.TeamMember, 0, len(userIDs))
	for _, userID := range userIDs {
		member, err := s.getTeamMember(teamID, userID)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			return nil, fmt.Errorf("get team member: %w", err)
		}
		if member.IsActive() {
			members = append(members, *member)
		}
	}
	return members, nil
}

// TeamMemberIDs returns the user IDs of all active team members, sorted.
func (s *Store) TeamMemberIDs(_ context.Context, teamID string) ([]string, error) {
	var ids []string
	prefix := []byte(teamMemberPrefix + teamID + ":")
	err := s.iteratePrefix(prefix, func(val []byte) (bool, error) {
		var member domain.TeamMember
		if err := json.Unmarshal(val, &member); err != nil {
			return true, nil
		}
		if member.IsActive() {
			ids = append(ids, member.UserID)
		}
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	slices.Sort(ids)
	return ids, nil
}

// TeamStats computes member counts for a team. ActiveMemberCount excludes
// deactivated users, which is the figure pagination decisions rely on.
func (s *Store) TeamStats(ctx context.Context, teamID string) (*domain.TeamStats, error) {
	if _, err := s.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}

	memberIDs, err := s.TeamMemberIDs(ctx, teamID)
	if err != nil {
		return nil, err
	}

	stats := &domain.TeamStats{
		TeamID:           teamID,
		TotalMemberCount: len(memberIDs),
	}
	users, err := s.GetProfilesByIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if user.IsActive() {
			stats.ActiveMemberCount++
		}
	}
	return stats, nil
}

func (s *Store) getTeamMember(teamID, userID string) (*domain.TeamMember, error) {
	var member domain.TeamMember
	if err := s.get(teamMemberKey(teamID, userID), &member); err != nil {
		return nil, err
	}
	return &member, nil
}
