package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/relaychat/relay-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Log in",
		Description: "Authenticates with a username or email and password",
		Tags:        []string{"Auth"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refreshToken",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/refresh",
		Summary:     "Refresh tokens",
		Description: "Rotates the refresh token and issues a new access token",
		Tags:        []string{"Auth"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Log out",
		Description: "Revokes the session holding the given refresh token",
		Tags:        []string{"Auth"},
	}, s.handleLogout)
}

// LoginInput contains user credentials.
type LoginInput struct {
	Body struct {
		LoginID  string `json:"login_id" doc:"Username or email address"`
		Password string `json:"password" doc:"Account password"`
	}
}

// AuthOutput wraps tokens and the logged-in user.
type AuthOutput struct {
	Body service.AuthResponse
}

// RefreshInput contains the refresh token to rotate.
type RefreshInput struct {
	Body struct {
		RefreshToken string `json:"refresh_token" doc:"Refresh token from login"`
	}
}

// LogoutInput contains the refresh token to revoke.
type LogoutInput struct {
	Body struct {
		RefreshToken string `json:"refresh_token" doc:"Refresh token to revoke"`
	}
}

// MessageOutput wraps a simple confirmation message.
type MessageOutput struct {
	Body struct {
		Message string `json:"message" doc:"Confirmation message"`
	}
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		LoginID:  input.Body.LoginID,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: *resp}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Refresh(ctx, service.RefreshRequest{
		RefreshToken: input.Body.RefreshToken,
	})
	if err != nil {
		return nil, err
	}
	return &AuthOutput{Body: *resp}, nil
}

func (s *Server) handleLogout(ctx context.Context, input *LogoutInput) (*MessageOutput, error) {
	if err := s.services.Auth.Logout(ctx, input.Body.RefreshToken); err != nil {
		return nil, err
	}
	out := &MessageOutput{}
	out.Body.Message = "logged out"
	return out, nil
}
