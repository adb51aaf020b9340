// Package auth binds the browser session to a server-side token record:
// login, logout, and silent refresh when the access token nears expiry.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/session"
	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
	"github.com/mxchestnut/workshelf-sub001/internal/pkg/config"
)

// Ensure implementation satisfies the interface
var _ AuthService = (*AuthServiceImpl)(nil)

// UpstreamAPI is the slice of the backend client the auth flow needs.
type UpstreamAPI interface {
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
	Logout(ctx context.Context, tok session.TokenStore) error
	CurrentUser(ctx context.Context, tok session.TokenStore) (*models.UserAccount, error)
}

// AuthService defines the business logic contract.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.SessionRecord, error)
	Logout(ctx context.Context, sessionID string) error
	Refresh(ctx context.Context, rec *models.SessionRecord) (*models.SessionRecord, error)
	CurrentUser(ctx context.Context, tok session.TokenStore) (*models.UserAccount, error)
}

// AuthServiceImpl provides the implementation for AuthService.
type AuthServiceImpl struct {
	logger   *zap.Logger
	upstream UpstreamAPI
	repo     session.Repo
	cfg      config.SessionConfig
}

// NewAuthService creates a new authentication service instance.
func NewAuthService(upstream UpstreamAPI, repo session.Repo, cfg config.SessionConfig, logger *zap.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{logger: logger, upstream: upstream, repo: repo, cfg: cfg}
}

// Login exchanges credentials for a token pair and stores it server-side
// under a fresh opaque session id. Only that id ever reaches the browser.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*models.SessionRecord, error) {
	l := s.logger.With(zap.String("method", "Login"), zap.String("email", email))
	l.Debug("Attempting login")

	pair, err := s.upstream.Login(ctx, email, password)
	if err != nil {
		l.Warn("Upstream login failed", zap.Error(err))
		return nil, err
	}

	now := time.Now()
	rec := &models.SessionRecord{
		ID:           uuid.NewString(),
		UserID:       session.TokenSubject(pair.AccessToken),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    s.sessionExpiry(now),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Save(ctx, rec); err != nil {
		l.Error("Failed to store session", zap.Error(err))
		return nil, fmt.Errorf("storing session: %w", err)
	}

	l.Info("Login successful", zap.String("sessionID", rec.ID), zap.String("userID", rec.UserID))
	return rec, nil
}

// Logout invalidates the upstream token pair and deletes the session
// record. Logging out an unknown session is not an error.
func (s *AuthServiceImpl) Logout(ctx context.Context, sessionID string) error {
	l := s.logger.With(zap.String("method", "Logout"), zap.String("sessionID", sessionID))

	rec, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil
		}
		return err
	}

	// Best effort; the local record is removed either way.
	if err := s.upstream.Logout(ctx, session.NewStore(rec.AccessToken, rec.RefreshToken)); err != nil {
		l.Warn("Upstream logout failed", zap.Error(err))
	}

	if err := s.repo.Delete(ctx, sessionID); err != nil {
		l.Error("Failed to delete session", zap.Error(err))
		return err
	}

	l.Info("Logout complete")
	return nil
}

// Refresh rotates the token pair on the existing session record. A refresh
// the backend rejects ends the session.
func (s *AuthServiceImpl) Refresh(ctx context.Context, rec *models.SessionRecord) (*models.SessionRecord, error) {
	l := s.logger.With(zap.String("method", "Refresh"), zap.String("sessionID", rec.ID))

	pair, err := s.upstream.Refresh(ctx, rec.RefreshToken)
	if err != nil {
		if errors.Is(err, models.ErrUnauthenticated) {
			l.Info("Refresh token rejected, ending session")
			_ = s.repo.Delete(ctx, rec.ID)
		}
		return nil, err
	}

	now := time.Now()
	rec.AccessToken = pair.AccessToken
	rec.RefreshToken = pair.RefreshToken
	rec.ExpiresAt = s.sessionExpiry(now)
	rec.UpdatedAt = now

	if err := s.repo.Save(ctx, rec); err != nil {
		l.Error("Failed to store rotated session", zap.Error(err))
		return nil, fmt.Errorf("storing session: %w", err)
	}

	l.Debug("Session refreshed")
	return rec, nil
}

func (s *AuthServiceImpl) CurrentUser(ctx context.Context, tok session.TokenStore) (*models.UserAccount, error) {
	return s.upstream.CurrentUser(ctx, tok)
}

func (s *AuthServiceImpl) sessionExpiry(now time.Time) time.Time {
	ttl := s.cfg.CookieTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return now.Add(ttl)
}
