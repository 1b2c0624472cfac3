package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/relaychat/relay-server/internal/domain"
	domainerrors "github.com/relaychat/relay-server/internal/errors"
	"github.com/relaychat/relay-server/internal/media/avatars"
	"github.com/relaychat/relay-server/internal/search"
	"github.com/relaychat/relay-server/internal/store"
)

// MaxAvatarSize is the maximum avatar image size in bytes (2MB).
const MaxAvatarSize = 2 * 1024 * 1024

// ProfileService provides user profile management and profile search.
type ProfileService struct {
	store   *store.Store
	search  *search.SearchIndex
	avatars *avatars.Storage
	logger  *slog.Logger
}

// NewProfileService creates a new profile service.
func NewProfileService(
	store *store.Store,
	searchIndex *search.SearchIndex,
	avatars *avatars.Storage,
	logger *slog.Logger,
) *ProfileService {
	return &ProfileService{
		store:   store,
		search:  searchIndex,
		avatars: avatars,
		logger:  logger,
	}
}

// GetProfile returns a user by ID with sensitive fields stripped.
func (s *ProfileService) GetProfile(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.store.GetProfile(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			return nil, domainerrors.NotFoundf("user %s not found", id)
		}
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	sanitized := user.Sanitize()
	return &sanitized, nil
}

// UpdateProfileRequest contains the editable profile fields. Nil pointers
// leave the current value untouched.
type UpdateProfileRequest struct {
	Nickname  *string `json:"nickname" validate:"omitempty,max=64"`
	FirstName *string `json:"first_name" validate:"omitempty,max=64"`
	LastName  *string `json:"last_name" validate:"omitempty,max=64"`
	Position  *string `json:"position" validate:"omitempty,max=128"`
}

// UpdateProfile applies a partial update to a user's profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*domain.User, error) {
	user, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			return nil, domainerrors.NotFoundf("user %s not found", userID)
		}
		return nil, fmt.Errorf("getting profile: %w", err)
	}

	if req.Nickname != nil {
		user.Nickname = *req.Nickname
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Position != nil {
		user.Position = *req.Position
	}

	if err := s.store.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	s.logger.Info("profile updated", "user_id", userID)
	sanitized := user.Sanitize()
	return &sanitized, nil
}

// UploadAvatar stores a new avatar image for the user, computes its blur
// hash placeholder, and bumps LastPictureUpdate so clients bust their
// caches.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID string, imgData []byte) (*domain.User, error) {
	if len(imgData) > MaxAvatarSize {
		return nil, domainerrors.Validationf("avatar exceeds maximum size of %d bytes", MaxAvatarSize)
	}

	user, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			return nil, domainerrors.NotFoundf("user %s not found", userID)
		}
		return nil, fmt.Errorf("getting profile: %w", err)
	}

	blurHash, err := avatars.ComputeBlurHash(imgData)
	if err != nil {
		return nil, domainerrors.Validation("avatar is not a valid image").WithCause(err)
	}

	if err := s.avatars.Save(userID, imgData); err != nil {
		return nil, fmt.Errorf("saving avatar: %w", err)
	}

	user.AvatarBlurHash = blurHash
	user.LastPictureUpdate = time.Now().UnixMilli()
	if err := s.store.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}

	s.logger.Info("avatar uploaded", "user_id", userID, "bytes", len(imgData))
	sanitized := user.Sanitize()
	return &sanitized, nil
}

// GetAvatar returns the raw avatar image and a content hash usable as an
// ETag.
func (s *ProfileService) GetAvatar(_ context.Context, userID string) ([]byte, string, error) {
	data, err := s.avatars.Get(userID)
	if err != nil {
		return nil, "", domainerrors.NotFoundf("no avatar for user %s", userID)
	}
	hash, err := s.avatars.Hash(userID)
	if err != nil {
		return nil, "", fmt.Errorf("hashing avatar: %w", err)
	}
	return data, hash, nil
}

// SearchProfilesOptions tunes SearchProfiles.
type SearchProfilesOptions struct {
	// AllowInactive includes deactivated accounts in the results.
	AllowInactive bool
	// Limit caps the number of results. Zero means the search default.
	Limit int
}

// SearchProfiles runs a name search over the profile index and hydrates the
// hits from the store, preserving relevance order. Index entries whose
// backing profile has vanished are skipped.
func (s *ProfileService) SearchProfiles(ctx context.Context, term string, opts SearchProfilesOptions) ([]domain.User, error) {
	params := search.DefaultSearchParams()
	params.Query = term
	params.Types = []string{string(search.DocTypeProfile)}
	params.AllowInactive = opts.AllowInactive
	if opts.Limit > 0 {
		params.Limit = opts.Limit
	}

	result, err := s.search.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("searching profiles: %w", err)
	}

	users := make([]domain.User, 0, len(result.Hits))
	for _, hit := range result.Hits {
		user, err := s.store.GetProfile(ctx, hit.ID)
		if err != nil {
			if errors.Is(err, store.ErrProfileNotFound) {
				continue
			}
			return nil, fmt.Errorf("hydrating profile %s: %w", hit.ID, err)
		}
		users = append(users, user.Sanitize())
	}
	return users, nil
}
