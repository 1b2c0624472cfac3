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
	"github.com/relaychat/relay-server/internal/sse"
)

const (
	profilePrefix           = "profile:"
	profileByUsernamePrefix = "idx:profiles:username:" // For username lookups
	profileByEmailPrefix    = "idx:profiles:email:"    // For login by email
)

// CreateProfile creates a new user profile and its username and email
// index entries.
func (s *Store) CreateProfile(ctx context.Context, user *domain.User) error {
	key := []byte(profilePrefix + user.ID)

	exists, err := s.exists(key)
	if err != nil {
		return fmt.Errorf("check profile exists: %w", err)
	}
	if exists {
		return ErrProfileExists
	}

	usernameKey := []byte(profileByUsernamePrefix + normalizeUsername(user.Username))
	emailKey := []byte(profileByEmailPrefix + normalizeEmail(user.Email))

	err = s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(usernameKey); err == nil {
			return ErrUsernameExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check username exists: %w", err)
		}
		if _, err := txn.Get(emailKey); err == nil {
			return ErrEmailExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check email exists: %w", err)
		}

		data, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("marshal profile: %w", err)
		}
		if err := txn.Set(key, data); err != nil {
			return err
		}
		if err := txn.Set(usernameKey, []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set(emailKey, []byte(user.ID))
	})
	if err != nil {
		return err
	}

	s.indexProfile(ctx, user)
	return nil
}

// GetProfile retrieves a user by ID. Deactivated users are returned as-is;
// callers filter on DeleteAt where it matters.
func (s *Store) GetProfile(_ context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := s.get([]byte(profilePrefix+id), &user); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &user, nil
}

// GetProfileByUsername retrieves a user by username.
func (s *Store) GetProfileByUsername(ctx context.Context, username string) (*domain.User, error) {
	usernameKey := []byte(profileByUsernamePrefix + normalizeUsername(username))

	var userID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(usernameKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			userID = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("lookup profile by username: %w", err)
	}

	return s.GetProfile(ctx, userID)
}

// GetProfileByEmail retrieves a user by email address.
func (s *Store) GetProfileByEmail(ctx context.Context, email string) (*domain.User, error) {
	emailKey := []byte(profileByEmailPrefix + normalizeEmail(email))

	var userID string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			userID = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("lookup profile by email: %w", err)
	}

	return s.GetProfile(ctx, userID)
}

// UpdateProfile updates an existing user and maintains the username and
// email indexes.
func (s *Store) UpdateProfile(ctx context.Context, user *domain.User) error {
	old, err := s.GetProfile(ctx, user.ID)
	if err != nil {
		return err
	}

	user.UpdateAt = nowMillis()

	err = s.db.Update(func(txn *badger.Txn) error {
		data, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("marshal profile: %w", err)
		}
		if err := txn.Set([]byte(profilePrefix+user.ID), data); err != nil {
			return err
		}

		if normalizeUsername(old.Username) != normalizeUsername(user.Username) {
			oldKey := []byte(profileByUsernamePrefix + normalizeUsername(old.Username))
			if err := txn.Delete(oldKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			newKey := []byte(profileByUsernamePrefix + normalizeUsername(user.Username))
			if _, err := txn.Get(newKey); err == nil {
				return ErrUsernameExists
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("check new username: %w", err)
			}
			if err := txn.Set(newKey, []byte(user.ID)); err != nil {
				return err
			}
		}

		if normalizeEmail(old.Email) != normalizeEmail(user.Email) {
			oldKey := []byte(profileByEmailPrefix + normalizeEmail(old.Email))
			if err := txn.Delete(oldKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			newKey := []byte(profileByEmailPrefix + normalizeEmail(user.Email))
			if _, err := txn.Get(newKey); err == nil {
				return ErrEmailExists
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("check new email: %w", err)
			}
			if err := txn.Set(newKey, []byte(user.ID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.indexProfile(ctx, user)
	if s.eventEmitter != nil {
		s.eventEmitter.Emit(sse.NewProfileUpdatedEvent(user))
	}
	return nil
}

// GetProfilesByIDs returns the profiles for the given ids, skipping unknown
// ids rather than failing the whole batch.
func (s *Store) GetProfilesByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	users := make([]domain.User, 0, len(ids))
	for _, id := range ids {
		user, err := s.GetProfile(ctx, id)
		if err != nil {
			if errors.Is(err, ErrProfileNotFound) {
				continue
			}
			return nil, err
		}
		users = append(users, *user)
	}
	return users, nil
}

// ListProfiles returns all profiles sorted by username.
func (s *Store) ListProfiles(_ context.Context) ([]domain.User, error) {
	var users []domain.User
	err := s.iteratePrefix([]byte(profilePrefix), func(val []byte) (bool, error) {
		var user domain.User
		if err := json.Unmarshal(val, &user); err != nil {
			// Skip malformed entries
			return true, nil
		}
		users = append(users, user)
		return true, nil
	})
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	sortProfilesByUsername(users)
	return users, nil
}

// ProfilesInChannel returns one page of a channel's members sorted by
// username. With activeOnly set, deactivated users are dropped before
// pagination.
func (s *Store) ProfilesInChannel(ctx context.Context, channelID string, page, perPage int, activeOnly bool) ([]domain.User, error) {
	memberIDs, err := s.ChannelMemberIDs(ctx, channelID)
	if err != nil {
		return nil, err
	}
	users, err := s.GetProfilesByIDs(ctx, memberIDs)
	if err != nil {
		return nil, err
	}
	if activeOnly {
		users = slices.DeleteFunc(users, func(u domain.User) bool { return !u.IsActive() })
	}
	sortProfilesByUsername(users)
	return paginateProfiles(users, page, perPage), nil
}

// ProfilesNotInChannel returns one page of active team members who are not
// members of the channel, sorted by username. When groupConstrained is set,
// only users belonging to the channel's associated groups are considered.
func (s *Store) ProfilesNotInChannel(ctx context.Context, teamID, channelID string, groupConstrained bool, page, perPage int) ([]domain.User, error) {
	teamMemberIDs, err := s.TeamMemberIDs(ctx, teamID)
	if err != nil {
		return nil, err
	}
	channelMemberIDs, err := s.ChannelMemberIDs(ctx, channelID)
	if err != nil {
		return nil, err
	}
	inChannel := make(map[string]bool, len(channelMemberIDs))
	for _, id := range channelMemberIDs {
		inChannel[id] = true
	}

	candidates := make([]string, 0, len(teamMemberIDs))
	for _, id := range teamMemberIDs {
		if !inChannel[id] {
			candidates = append(candidates, id)
		}
	}

	if groupConstrained {
		allowed, err := s.channelGroupMemberIDs(ctx, channelID)
		if err != nil {
			return nil, err
		}
		candidates = slices.DeleteFunc(candidates, func(id string) bool { return !allowed[id] })
	}

	users, err := s.GetProfilesByIDs(ctx, candidates)
	if err != nil {
		return nil, err
	}
	users = slices.DeleteFunc(users, func(u domain.User) bool { return !u.IsActive() })
	sortProfilesByUsername(users)
	return paginateProfiles(users, page, perPage), nil
}

// indexProfile mirrors a profile into the search index. Index failures are
// logged, not returned; the write already succeeded.
func (s *Store) indexProfile(ctx context.Context, user *domain.User) {
	if err := s.searchIndexer.IndexProfile(ctx, user); err != nil && s.logger != nil {
		s.logger.Warn("index profile failed", "user_id", user.ID, "error", err)
	}
}

func sortProfilesByUsername(users []domain.User) {
	slices.SortFunc(users, func(a, b domain.User) int {
		return strings.Compare(normalizeUsername(a.Username), normalizeUsername(b.Username))
	})
}

func paginateProfiles(users []domain.User, page, perPage int) []domain.User {
	if perPage <= 0 {
		return users
	}
	if page < 0 {
		page = 0
	}
	start := page * perPage
	if start >= len(users) {
		return nil
	}
	return users[start:min(start+perPage, len(users))]
}

// normalizeUsername normalizes a username for index lookups.
func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// normalizeEmail normalizes an email address for index lookups.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
