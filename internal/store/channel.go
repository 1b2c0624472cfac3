package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/relaychat/relay-server/internal/domain"
	"github.com/relaychat/relay-server/internal/sse"
)

const (
	channelPrefix       = "channel:"
	channelMemberPrefix = "chmember:" // chmember:{channelID}:{userID}
	channelGroupPrefix  = "chgroup:"  // chgroup:{channelID}:{groupID}
)

func channelMemberKey(channelID, userID string) []byte {
	return []byte(channelMemberPrefix + channelID + ":" + userID)
}

// CreateChannel creates a new channel.
func (s *Store) CreateChannel(_ context.Context, channel *domain.Channel) error {
	key := []byte(channelPrefix + channel.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check channel exists: %w", err)
	}
	if exists {
		return ErrChannelExists
	}
	return s.set(key, channel)
}

// GetChannel retrieves a channel by ID.
func (s *Store) GetChannel(_ context.Context, id string) (*domain.Channel, error) {
	var channel domain.Channel
	if err := s.get([]byte(channelPrefix+id), &channel); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, fmt.Errorf("get channel: %w", err)
	}
	return &channel, nil
}

// AddChannelMember adds a user to a channel. Adding an existing member is a
// no-op; the stored membership keeps its original JoinedAt.
func (s *Store) AddChannelMember(_ context.Context, channelID, userID string) error {
	key := channelMemberKey(channelID, userID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check channel member: %w", err)
	}
	if exists {
		return nil
	}

	member := domain.ChannelMember{
		ChannelID: channelID,
		UserID:    userID,
		Roles:     domain.RoleChannelUser,
		JoinedAt:  nowMillis(),
	}
	return s.set(key, member)
}

// AddChannelMembers adds several users to a channel and broadcasts a single
// member_added event for the ones that were actually new.
func (s *Store) AddChannelMembers(ctx context.Context, channelID string, userIDs []string) error {
	added := make([]string, 0, len(userIDs))
	for _, userID := range userIDs {
		isMember, err := s.IsChannelMember(ctx, channelID, userID)
		if err != nil {
			return err
		}
		if isMember {
			continue
		}
		if err := s.AddChannelMember(ctx, channelID, userID); err != nil {
			return fmt.Errorf("add channel member %s: %w", userID, err)
		}
		added = append(added, userID)
	}

	if len(added) > 0 && s.eventEmitter != nil {
		s.eventEmitter.Emit(sse.NewMemberAddedEvent(channelID, added))
	}
	return nil
}

// RemoveChannelMember removes a user from a channel. Removing a non-member
// is a no-op.
func (s *Store) RemoveChannelMember(_ context.Context, channelID, userID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(channelMemberKey(channelID, userID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// IsChannelMember reports whether the user belongs to the channel.
func (s *Store) IsChannelMember(_ context.Context, channelID, userID string) (bool, error) {
	return s.exists(channelMemberKey(channelID, userID))
}

// ChannelMemberIDs returns the user IDs of all channel members, sorted.
func (s *Store) ChannelMemberIDs(_ context.Context, channelID string) ([]string, error) {
	var ids []string
	prefix := []byte(channelMemberPrefix + channelID + ":")
	err := s.iteratePrefix(prefix, func(val []byte) (bool, error) {
		var member domain.ChannelMember
		if err := json.Unmarshal(val, &member); err != nil {
			return true, nil
		}
		ids = append(ids, member.UserID)
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list channel members: %w", err)
	}
	slices.Sort(ids)
	return ids, nil
}

// AssociateChannelGroup links a group to a group-constrained channel.
func (s *Store) AssociateChannelGroup(_ context.Context, channelID, groupID string) error {
	return s.set([]byte(channelGroupPrefix+channelID+":"+groupID), groupID)
}

// ChannelGroupIDs returns the IDs of groups associated with the channel.
func (s *Store) ChannelGroupIDs(_ context.Context, channelID string) ([]string, error) {
	var ids []string
	prefix := []byte(channelGroupPrefix + channelID + ":")
	err := s.iteratePrefix(prefix, func(val []byte) (bool, error) {
		var groupID string
		if err := json.Unmarshal(val, &groupID); err != nil {
			return true, nil
		}
		ids = append(ids, groupID)
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list channel groups: %w", err)
	}
	return ids, nil
}

// channelGroupMemberIDs returns the union of member IDs across the groups
// associated with a group-constrained channel.
func (s *Store) channelGroupMemberIDs(ctx context.Context, channelID string) (map[string]bool, error) {
	groupIDs, err := s.ChannelGroupIDs(ctx, channelID)
	if err != nil {
		return nil, err
	}
	allowed := make(map[string]bool)
	for _, groupID := range groupIDs {
		group, err := s.GetGroup(ctx, groupID)
		if err != nil {
			if errors.Is(err, ErrGroupNotFound) {
				continue
			}
			return nil, err
		}
		for _, memberID := range group.MemberIDs {
			allowed[memberID] = true
		}
	}
	return allowed, nil
}
