package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/relaychat/relay-server/internal/domain"
	"github.com/relaychat/relay-server/internal/store"
)

// PresenceService tracks user presence. It keeps a small in-memory cache of
// recently read statuses so that option-list rendering can prefetch presence
// for a page of users without a store round trip per user.
type PresenceService struct {
	store  *store.Store
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]domain.Status
}

// NewPresenceService creates a new presence service.
func NewPresenceService(store *store.Store, logger *slog.Logger) *PresenceService {
	return &PresenceService{
		store:  store,
		logger: logger,
		cache:  make(map[string]domain.Status),
	}
}

// SetStatus records a user's presence state and invalidates the cache entry.
func (s *PresenceService) SetStatus(ctx context.Context, userID string, state domain.PresenceState, manual bool) (*domain.Status, error) {
	status := &domain.Status{
		UserID: userID,
		State:  state,
		Manual: manual,
	}
	if err := s.store.SetStatus(ctx, status); err != nil {
		return nil, fmt.Errorf("setting status: %w", err)
	}

	s.mu.Lock()
	s.cache[userID] = *status
	s.mu.Unlock()

	return status, nil
}

// GetStatus returns a user's presence, offline if never set.
func (s *PresenceService) GetStatus(ctx context.Context, userID string) (*domain.Status, error) {
	s.mu.RLock()
	cached, ok := s.cache[userID]
	s.mu.RUnlock()
	if ok {
		return &cached, nil
	}

	status, err := s.store.GetStatus(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("getting status: %w", err)
	}

	s.mu.Lock()
	s.cache[userID] = *status
	s.mu.Unlock()

	return status, nil
}

// GetStatusesByIDs returns the presence of each given user.
func (s *PresenceService) GetStatusesByIDs(ctx context.Context, userIDs []string) ([]domain.Status, error) {
	statuses, err := s.store.GetStatusesByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("getting statuses: %w", err)
	}

	s.mu.Lock()
	for _, status := range statuses {
		s.cache[status.UserID] = status
	}
	s.mu.Unlock()

	return statuses, nil
}

// WarmStatuses loads presence for the given users into the cache. Errors
// are logged, not returned; a cold cache only costs a later read.
func (s *PresenceService) WarmStatuses(users []domain.User) {
	if len(users) == 0 {
		return
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	if _, err := s.GetStatusesByIDs(context.Background(), ids); err != nil {
		s.logger.Warn("failed to warm status cache", "count", len(ids), "error", err)
	}
}
