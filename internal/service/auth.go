package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/relaychat/relay-server/internal/auth"
	"github.com/relaychat/relay-server/internal/domain"
	domainerrors "github.com/relaychat/relay-server/internal/errors"
	"github.com/relaychat/relay-server/internal/store"
	"github.com/relaychat/relay-server/internal/validation"
)

// validate is the shared request validator for the service layer.
var validate = validation.New()

// AuthService handles user authentication. Session lifecycle is delegated
// to SessionService.
type AuthService struct {
	store          *store.Store
	tokenService   *auth.TokenService
	sessionService *SessionService
	logger         *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store *store.Store,
	tokenService *auth.TokenService,
	sessionService *SessionService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:          store,
		tokenService:   tokenService,
		sessionService: sessionService,
		logger:         logger,
	}
}

// LoginRequest contains user credentials. LoginID is a username or an email
// address.
type LoginRequest struct {
	LoginID   string `json:"login_id" validate:"required"`
	Password  string `json:"password" validate:"required"`
	IPAddress string `json:"-"` // Extracted from request by handler
}

// RefreshRequest contains the refresh token to rotate.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse contains authentication tokens and the logged-in user.
type AuthResponse struct {
	User *domain.User `json:"user"`
	SessionResponse
}

// Login verifies credentials and creates a session. Failures never reveal
// whether the login ID or the password was wrong.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.lookupUser(ctx, req.LoginID)
	if err != nil {
		if errors.Is(err, store.ErrProfileNotFound) {
			return nil, domainerrors.InvalidCredentials("invalid login or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive() {
		return nil, domainerrors.InvalidCredentials("invalid login or password")
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		s.logger.Info("failed login attempt", "login_id", req.LoginID, "ip", req.IPAddress)
		return nil, domainerrors.InvalidCredentials("invalid login or password")
	}

	sessionResp, err := s.sessionService.CreateSession(ctx, user, req.IPAddress)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID, "ip", req.IPAddress)
	sanitized := user.Sanitize()
	return &AuthResponse{
		User:            &sanitized,
		SessionResponse: *sessionResp,
	}, nil
}

// Refresh rotates the session tokens.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	sessionResp, user, err := s.sessionService.RefreshSession(ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}

	sanitized := user.Sanitize()
	return &AuthResponse{
		User:            &sanitized,
		SessionResponse: *sessionResp,
	}, nil
}

// Logout revokes the session holding the given refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	return s.sessionService.RevokeSession(ctx, refreshToken)
}

// VerifyAccessToken validates a bearer token and returns its claims.
func (s *AuthService) VerifyAccessToken(token string) (*auth.AccessClaims, error) {
	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired token")
	}
	return claims, nil
}

func (s *AuthService) lookupUser(ctx context.Context, loginID string) (*domain.User, error) {
	if strings.Contains(loginID, "@") {
		return s.store.GetProfileByEmail(ctx, loginID)
	}
	return s.store.GetProfileByUsername(ctx, loginID)
}
