package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/relaychat/relay-server/internal/domain"
	"github.com/relaychat/relay-server/internal/sse"
)

const statusPrefix = "status:"

// SetStatus records a user's presence and broadcasts the change.
func (s *Store) SetStatus(_ context.Context, status *domain.Status) error {
	status.LastActivityAt = nowMillis()
	if err := s.set([]byte(statusPrefix+status.UserID), status); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	if s.eventEmitter != nil {
		s.eventEmitter.Emit(sse.NewStatusChangedEvent(status.UserID, status.State))
	}
	return nil
}

// GetStatus returns a user's presence. Users with no recorded presence are
// reported as offline rather than missing.
func (s *Store) GetStatus(_ context.Context, userID string) (*domain.Status, error) {
	var status domain.Status
	if err := s.get([]byte(statusPrefix+userID), &status); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return &domain.Status{UserID: userID, State: domain.PresenceOffline}, nil
		}
		return nil, fmt.Errorf("get status: %w", err)
	}
	return &status, nil
}

// GetStatusesByIDs returns presence for each of the given users, defaulting
// absent entries to offline.
func (s *Store) GetStatusesByIDs(ctx context.Context, userIDs []string) ([]domain.Status, error) {
	statuses := make([]domain.Status, 0, len(userIDs))
	for _, userID := range userIDs {
		status, err := s.GetStatus(ctx, userID)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, *status)
	}
	return statuses, nil
}
