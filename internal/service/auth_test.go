package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relaychat/relay-server/internal/auth"
	"github.com/relaychat/relay-server/internal/domain"
	"github.com/relaychat/relay-server/internal/store"
)

// testTokenKey is a fixed 32-byte key, hex encoded.
const testTokenKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func setupTestAuthService(t *testing.T) (*AuthService, *store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "auth-service-test-*")
	require.NoError(t, err)

	testStore, err := store.New(filepath.Join(tmpDir, "store"), nil, store.NoopEmitter{})
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(testTokenKey, 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessions := NewSessionService(testStore, tokenService, logger)
	svc := NewAuthService(testStore, tokenService, sessions, logger)

	cleanup := func() {
		testStore.Close()
		os.RemoveAll(tmpDir)
	}
	return svc, testStore, cleanup
}

func createTestAccount(t *testing.T, s *store.Store, username, password string) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user := &domain.User{
		ID:           "user-" + username,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
		Roles:        domain.RoleSystemUser,
	}
	require.NoError(t, s.CreateProfile(context.Background(), user))
	return user
}

func TestLogin(t *testing.T) {
	svc, s, cleanup := setupTestAuthService(t)
	defer cleanup()
	ctx := context.Background()
	createTestAccount(t, s, "alice", "correct horse battery")

	t.Run("by username", func(t *testing.T) {
		resp, err := svc.Login(ctx, LoginRequest{LoginID: "alice", Password: "correct horse battery"})
		require.NoError(t, err)
		assert.Equal(t, "user-alice", resp.User.ID)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.Empty(t, resp.User.PasswordHash, "password hash must not leak")
	})

	t.Run("by email", func(t *testing.T) {
		resp, err := svc.Login(ctx, LoginRequest{LoginID: "alice@example.com", Password: "correct horse battery"})
		require.NoError(t, err)
		assert.Equal(t, "user-alice", resp.User.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{LoginID: "alice", Password: "nope"})
		require.Error(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(ctx, LoginRequest{LoginID: "nobody", Password: "whatever"})
		require.Error(t, err)
	})
}

func TestLogin_DeactivatedAccount(t *testing.T) {
	svc, s, cleanup := setupTestAuthService(t)
	defer cleanup()
	ctx := context.Background()

	user := createTestAccount(t, s, "bob", "hunter2hunter2")
	user.DeleteAt = time.Now().UnixMilli()
	require.NoError(t, s.UpdateProfile(ctx, user))

	_, err := svc.Login(ctx, LoginRequest{LoginID: "bob", Password: "hunter2hunter2"})
	require.Error(t, err)
}

func TestRefresh_RotatesToken(t *testing.T) {
	svc, s, cleanup := setupTestAuthService(t)
	defer cleanup()
	ctx := context.Background()
	createTestAccount(t, s, "alice", "correct horse battery")

	login, err := svc.Login(ctx, LoginRequest{LoginID: "alice", Password: "correct horse battery"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)
	assert.Equal(t, login.SessionID, refreshed.SessionID)

	// the old token is single-use
	_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
}

func TestLogout(t *testing.T) {
	svc, s, cleanup := setupTestAuthService(t)
	defer cleanup()
	ctx := context.Background()
	createTestAccount(t, s, "alice", "correct horse battery")

	login, err := svc.Login(ctx, LoginRequest{LoginID: "alice", Password: "correct horse battery"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, login.RefreshToken))
	_, err = svc.Refresh(ctx, RefreshRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)

	// logging out twice is fine
	require.NoError(t, svc.Logout(ctx, login.RefreshToken))
}

func TestVerifyAccessToken(t *testing.T) {
	svc, s, cleanup := setupTestAuthService(t)
	defer cleanup()
	ctx := context.Background()
	createTestAccount(t, s, "alice", "correct horse battery")

	login, err := svc.Login(ctx, LoginRequest{LoginID: "alice", Password: "correct horse battery"})
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken(login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-alice", claims.UserID)

	_, err = svc.VerifyAccessToken("v4.local.garbage")
	require.Error(t, err)
}
