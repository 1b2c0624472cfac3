package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/relaychat/relay-server/internal/domain"
)

// dmRecentPrefix keys one recency map per user: contact user ID to the
// Unix-millisecond timestamp of the last direct message exchanged.
const dmRecentPrefix = "dmrecent:"

// TouchDirectContact records a direct-message interaction between two users,
// updating both sides' recency maps.
func (s *Store) TouchDirectContact(ctx context.Context, userID, otherID string) error {
	now := nowMillis()
	if err := s.touchOneDirection(ctx, userID, otherID, now); err != nil {
		return err
	}
	return s.touchOneDirection(ctx, otherID, userID, now)
}

func (s *Store) touchOneDirection(_ context.Context, userID, contactID string, at int64) error {
	key := []byte(dmRecentPrefix + userID)

	recents := map[string]int64{}
	if err := s.get(key, &recents); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("get dm recents: %w", err)
	}
	recents[contactID] = at
	return s.set(key, recents)
}

// RecentContacts returns up to limit of a user's direct-message contacts,
// most recent first. Deactivated contacts are excluded.
func (s *Store) RecentContacts(ctx context.Context, userID string, limit int) ([]domain.User, error) {
	recents := map[string]int64{}
	if err := s.get([]byte(dmRecentPrefix+userID), &recents); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get dm recents: %w", err)
	}

	type contact struct {
		id string
		at int64
	}
	contacts := make([]contact, 0, len(recents))
	for id, at := range recents {
		contacts = append(contacts, contact{id: id, at: at})
	}
	slices.SortFunc(contacts, func(a, b contact) int {
		if a.at != b.at {
			if a.at > b.at {
				return -1
			}
			return 1
		}
		// Stable tiebreak so equal timestamps order deterministically.
		if a.id < b.id {
			return -1
		}
		if a.id > b.id {
			return 1
		}
		return 0
	})

	users := make([]domain.User, 0, limit)
	for _, c := range contacts {
		user, err := s.GetProfile(ctx, c.id)
		if err != nil {
			if errors.Is(err, ErrProfileNotFound) {
				continue
			}
			return nil, err
		}
		if !user.IsActive() {
			continue
		}
		users = append(users, *user)
		if limit > 0 && len(users) >= limit {
			break
		}
	}
	return users, nil
}
