package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/relaychat/relay-server/internal/domain"
	"github.com/relaychat/relay-server/internal/http/response"
	"github.com/relaychat/relay-server/internal/service"
)

func (s *Server) registerProfileRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateMyProfile",
		Method:      http.MethodPatch,
		Path:        "/api/v1/users/me",
		Summary:     "Update my profile",
		Description: "Applies a partial update to the authenticated user's profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateMyProfile)

	huma.Register(s.api, huma.Operation{
		OperationID: "getUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/{userID}",
		Summary:     "Get user",
		Description: "Returns a user's profile by ID",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "uploadAvatar",
		Method:      http.MethodPost,
		Path:        "/api/v1/users/me/image",
		Summary:     "Upload avatar image",
		Description: "Uploads a new avatar image for the authenticated user",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUploadAvatar)

	// Avatar image serving (chi direct, not huma)
	s.router.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/api/v1/users/{userID}/image", s.handleServeAvatar)
	})
}

// AuthenticatedInput is the minimal input for operations that only need the
// bearer token.
type AuthenticatedInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
}

// UserOutput wraps a single user.
type UserOutput struct {
	Body domain.User
}

// UpdateProfileInput contains the editable profile fields.
type UpdateProfileInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	Body          struct {
		Nickname  *string `json:"nickname,omitempty" maxLength:"64" doc:"Display nickname"`
		FirstName *string `json:"first_name,omitempty" maxLength:"64" doc:"First name"`
		LastName  *string `json:"last_name,omitempty" maxLength:"64" doc:"Last name"`
		Position  *string `json:"position,omitempty" maxLength:"128" doc:"Job title or role"`
	}
}

// GetUserInput identifies a user.
type GetUserInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	UserID        string `path:"userID" doc:"User ID"`
}

// UploadAvatarInput contains the raw avatar image.
type UploadAvatarInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ContentType   string `header:"Content-Type" doc:"Image content type"`
	RawBody       []byte
}

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *AuthenticatedInput) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.services.Profile.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: *user}, nil
}

func (s *Server) handleUpdateMyProfile(ctx context.Context, input *UpdateProfileInput) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.services.Profile.UpdateProfile(ctx, userID, service.UpdateProfileRequest{
		Nickname:  input.Body.Nickname,
		FirstName: input.Body.FirstName,
		LastName:  input.Body.LastName,
		Position:  input.Body.Position,
	})
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: *user}, nil
}

func (s *Server) handleGetUser(ctx context.Context, input *GetUserInput) (*UserOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}
	user, err := s.services.Profile.GetProfile(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: *user}, nil
}

func (s *Server) handleUploadAvatar(ctx context.Context, input *UploadAvatarInput) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	if len(input.RawBody) == 0 {
		return nil, huma.Error400BadRequest("Image data is required")
	}
	user, err := s.services.Profile.UploadAvatar(ctx, userID, input.RawBody)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: *user}, nil
}

// handleServeAvatar streams the stored avatar with cache validation.
func (s *Server) handleServeAvatar(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if userID == "" {
		response.BadRequest(w, "User ID is required", s.logger)
		return
	}

	data, hash, err := s.services.Profile.GetAvatar(r.Context(), userID)
	if err != nil {
		response.NotFound(w, "Avatar not found", s.logger)
		return
	}

	etag := `"` + hash + `"`
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", CacheOneDayPrivate)
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("failed to write avatar response", "user_id", userID, "error", err)
	}
}
