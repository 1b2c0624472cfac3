package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/relaychat/relay-server/internal/audit"
	"github.com/relaychat/relay-server/internal/domain"
	domainerrors "github.com/relaychat/relay-server/internal/errors"
	"github.com/relaychat/relay-server/internal/store"
)

// ChannelService manages channel membership changes.
type ChannelService struct {
	store  *store.Store
	audit  *audit.Log
	logger *slog.Logger
}

// NewChannelService creates a new channel service.
func NewChannelService(store *store.Store, auditLog *audit.Log, logger *slog.Logger) *ChannelService {
	return &ChannelService{
		store:  store,
		audit:  auditLog,
		logger: logger,
	}
}

// GetChannel returns a channel by ID.
func (s *ChannelService) GetChannel(ctx context.Context, id string) (*domain.Channel, error) {
	channel, err := s.store.GetChannel(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrChannelNotFound) {
			return nil, domainerrors.NotFoundf("channel %s not found", id)
		}
		return nil, fmt.Errorf("getting channel: %w", err)
	}
	return channel, nil
}

// AddUsersToChannel adds the given users to a channel as one atomic intent:
// every user must be an active member of the channel's team (and, for
// group-constrained channels, a member of an associated group) or the whole
// call fails before any membership is written. Successful and rejected
// attempts are both recorded in the audit log.
func (s *ChannelService) AddUsersToChannel(ctx context.Context, actorID, channelID string, userIDs []string) error {
	if len(userIDs) == 0 {
		return domainerrors.Validation("no users to add")
	}

	channel, err := s.store.GetChannel(ctx, channelID)
	if err != nil {
		if errors.Is(err, store.ErrChannelNotFound) {
			return domainerrors.NotFoundf("channel %s not found", channelID)
		}
		return fmt.Errorf("getting channel: %w", err)
	}
	if channel.DeleteAt != 0 {
		return domainerrors.Conflictf("channel %s is archived", channelID)
	}

	rejected, err := s.ineligibleUsers(ctx, channel, userIDs)
	if err != nil {
		return err
	}
	if len(rejected) > 0 {
		s.recordAudit(ctx, audit.ActionInviteFailed, actorID, channel, userIDs,
			"not eligible: "+strings.Join(rejected, ", "))
		return domainerrors.Validationf("users not eligible for channel: %s", strings.Join(rejected, ", ")).
			WithDetails(map[string]any{"user_ids": rejected})
	}

	if err := s.store.AddChannelMembers(ctx, channelID, userIDs); err != nil {
		return fmt.Errorf("adding channel members: %w", err)
	}

	s.recordAudit(ctx, audit.ActionMembersInvited, actorID, channel, userIDs, "")
	s.logger.Info("users added to channel",
		"channel_id", channelID,
		"actor_id", actorID,
		"count", len(userIDs))
	return nil
}

// ineligibleUsers returns the IDs from userIDs that may not join the
// channel: non-members of the team, and for group-constrained channels,
// users outside every associated group.
func (s *ChannelService) ineligibleUsers(ctx context.Context, channel *domain.Channel, userIDs []string) ([]string, error) {
	members, err := s.store.TeamMembersByIDs(ctx, channel.TeamID, userIDs)
	if err != nil {
		return nil, fmt.Errorf("checking team membership: %w", err)
	}
	inTeam := make(map[string]bool, len(members))
	for _, m := range members {
		inTeam[m.UserID] = true
	}

	var inGroups map[string]bool
	if channel.GroupConstrained {
		inGroups, err = s.channelGroupMembers(ctx, channel.ID)
		if err != nil {
			return nil, err
		}
	}

	var rejected []string
	for _, id := range userIDs {
		if !inTeam[id] || (channel.GroupConstrained && !inGroups[id]) {
			rejected = append(rejected, id)
		}
	}
	return rejected, nil
}

func (s *ChannelService) channelGroupMembers(ctx context.Context, channelID string) (map[string]bool, error) {
	groupIDs, err := s.store.ChannelGroupIDs(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("listing channel groups: %w", err)
	}
	members := make(map[string]bool)
	for _, groupID := range groupIDs {
		ids, err := s.store.GroupMemberIDs(ctx, groupID)
		if err != nil {
			if errors.Is(err, store.ErrGroupNotFound) {
				continue
			}
			return nil, fmt.Errorf("listing group members: %w", err)
		}
		for _, id := range ids {
			members[id] = true
		}
	}
	return members, nil
}

// TeamStats returns member counts for a team.
func (s *ChannelService) TeamStats(ctx context.Context, teamID string) (*domain.TeamStats, error) {
	stats, err := s.store.TeamStats(ctx, teamID)
	if err != nil {
		if errors.Is(err, store.ErrTeamNotFound) {
			return nil, domainerrors.NotFoundf("team %s not found", teamID)
		}
		return nil, fmt.Errorf("getting team stats: %w", err)
	}
	return stats, nil
}

func (s *ChannelService) recordAudit(ctx context.Context, action audit.Action, actorID string, channel *domain.Channel, userIDs []string, detail string) {
	if s.audit == nil {
		return
	}
	entry := &audit.Entry{
		Action:    action,
		ActorID:   actorID,
		ChannelID: channel.ID,
		TeamID:    channel.TeamID,
		UserIDs:   userIDs,
		Detail:    detail,
	}
	if err := s.audit.Record(ctx, entry); err != nil {
		s.logger.Error("failed to write audit entry", "action", action, "channel_id", channel.ID, "error", err)
	}
}
