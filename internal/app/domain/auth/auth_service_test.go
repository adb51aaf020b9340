package auth

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/session"
	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
	"github.com/mxchestnut/workshelf-sub001/internal/pkg/config"
)

// MockUpstream is a mock implementation of the UpstreamAPI interface
type MockUpstream struct {
	mock.Mock
}

func (m *MockUpstream) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenPair), args.Error(1)
}

func (m *MockUpstream) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TokenPair), args.Error(1)
}

func (m *MockUpstream) Logout(ctx context.Context, tok session.TokenStore) error {
	return m.Called(ctx, tok).Error(0)
}

func (m *MockUpstream) CurrentUser(ctx context.Context, tok session.TokenStore) (*models.UserAccount, error) {
	args := m.Called(ctx, tok)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserAccount), args.Error(1)
}

// signedToken builds a real JWT so the sub and exp claims parse.
func signedToken(t *testing.T, sub string, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(expiresIn).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return raw
}

var testCfg = config.SessionConfig{CookieTTL: time.Hour}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a session record keyed by a fresh id", func(t *testing.T) {
		upstream := new(MockUpstream)
		repo := session.NewMemoryRepo(time.Minute)
		svc := NewAuthService(upstream, repo, testCfg, zap.NewNop())

		access := signedToken(t, "user-42", time.Hour)
		upstream.On("Login", ctx, "reader@example.com", "hunter2").
			Return(&models.TokenPair{AccessToken: access, RefreshToken: "r1"}, nil)

		rec, err := svc.Login(ctx, "reader@example.com", "hunter2")
		require.NoError(t, err)
		assert.NotEmpty(t, rec.ID)
		assert.Equal(t, "user-42", rec.UserID)

		stored, err := repo.Get(ctx, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, access, stored.AccessToken)
	})

	t.Run("bad credentials pass the sentinel through", func(t *testing.T) {
		upstream := new(MockUpstream)
		svc := NewAuthService(upstream, session.NewMemoryRepo(time.Minute), testCfg, zap.NewNop())

		upstream.On("Login", ctx, "reader@example.com", "wrong").
			Return(nil, fmt.Errorf("POST /auth/login: %w", models.ErrUnauthenticated))

		_, err := svc.Login(ctx, "reader@example.com", "wrong")
		assert.ErrorIs(t, err, models.ErrUnauthenticated)
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("rotates tokens in place", func(t *testing.T) {
		upstream := new(MockUpstream)
		repo := session.NewMemoryRepo(time.Minute)
		svc := NewAuthService(upstream, repo, testCfg, zap.NewNop())

		rec := &models.SessionRecord{ID: "s1", AccessToken: "old-a", RefreshToken: "old-r", ExpiresAt: time.Now().Add(time.Hour)}
		require.NoError(t, repo.Save(ctx, rec))

		upstream.On("Refresh", ctx, "old-r").
			Return(&models.TokenPair{AccessToken: "new-a", RefreshToken: "new-r"}, nil)

		rotated, err := svc.Refresh(ctx, rec)
		require.NoError(t, err)
		assert.Equal(t, "new-a", rotated.AccessToken)

		stored, err := repo.Get(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "new-r", stored.RefreshToken)
	})

	t.Run("rejected refresh ends the session", func(t *testing.T) {
		upstream := new(MockUpstream)
		repo := session.NewMemoryRepo(time.Minute)
		svc := NewAuthService(upstream, repo, testCfg, zap.NewNop())

		rec := &models.SessionRecord{ID: "s2", AccessToken: "a", RefreshToken: "dead", ExpiresAt: time.Now().Add(time.Hour)}
		require.NoError(t, repo.Save(ctx, rec))

		upstream.On("Refresh", ctx, "dead").
			Return(nil, fmt.Errorf("POST /auth/refresh: %w", models.ErrUnauthenticated))

		_, err := svc.Refresh(ctx, rec)
		assert.ErrorIs(t, err, models.ErrUnauthenticated)

		_, err = repo.Get(ctx, "s2")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes the record and invalidates upstream", func(t *testing.T) {
		upstream := new(MockUpstream)
		repo := session.NewMemoryRepo(time.Minute)
		svc := NewAuthService(upstream, repo, testCfg, zap.NewNop())

		rec := &models.SessionRecord{ID: "s1", AccessToken: "a", RefreshToken: "r", ExpiresAt: time.Now().Add(time.Hour)}
		require.NoError(t, repo.Save(ctx, rec))
		upstream.On("Logout", ctx, mock.Anything).Return(nil)

		require.NoError(t, svc.Logout(ctx, "s1"))

		_, err := repo.Get(ctx, "s1")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("unknown session is a no-op", func(t *testing.T) {
		upstream := new(MockUpstream)
		svc := NewAuthService(upstream, session.NewMemoryRepo(time.Minute), testCfg, zap.NewNop())

		require.NoError(t, svc.Logout(ctx, "missing"))
		upstream.AssertNotCalled(t, "Logout")
	})
}
