package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/session"
	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
	"github.com/mxchestnut/workshelf-sub001/internal/pkg/cache"
)

// Keys used in the gin context and the cookie session.
const (
	SessionIDKey   = "sid"
	UserContextKey = "user"
	tokenStoreKey  = "tokenStore"
)

// refreshLeeway is how close to expiry the access token may get before the
// middleware rotates it ahead of the request.
const refreshLeeway = 30 * time.Second

// Authenticator is the slice of the auth service the middleware needs to
// rotate tokens and resolve the current user.
type Authenticator interface {
	Refresh(ctx context.Context, rec *models.SessionRecord) (*models.SessionRecord, error)
	CurrentUser(ctx context.Context, tok session.TokenStore) (*models.UserAccount, error)
}

// SessionAuth resolves the cookie session into a per-request token store
// and the authenticated user. Requests without a valid session proceed
// anonymously; route guards decide what anonymous may reach.
type SessionAuth struct {
	logger *zap.Logger
	repo   session.Repo
	auth   Authenticator
	users  *cache.UserCache
}

func NewSessionAuth(authService Authenticator, repo session.Repo, users *cache.UserCache, logger *zap.Logger) *SessionAuth {
	return &SessionAuth{logger: logger, repo: repo, auth: authService, users: users}
}

func (m *SessionAuth) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		// Every request gets a store, empty when anonymous.
		store := session.NewStore("", "")
		c.Set(tokenStoreKey, store)

		sid, ok := sessions.Default(c).Get(SessionIDKey).(string)
		if !ok || sid == "" {
			c.Next()
			return
		}

		rec, err := m.repo.Get(ctx, sid)
		if err != nil {
			if !errors.Is(err, models.ErrNotFound) {
				m.logger.Warn("Session lookup failed", zap.String("sessionID", sid), zap.Error(err))
			}
			c.Next()
			return
		}

		if session.Expiring(rec.AccessToken, refreshLeeway) {
			rec, err = m.auth.Refresh(ctx, rec)
			if err != nil {
				m.users.Invalidate(sid)
				c.Next()
				return
			}
		}

		store.SetTokens(rec.AccessToken, rec.RefreshToken)

		user := m.users.Get(sid)
		if user == nil {
			user, err = m.auth.CurrentUser(ctx, store)
			if err != nil {
				if errors.Is(err, models.ErrUnauthenticated) {
					// The backend no longer honors the token; fall back
					// to anonymous for this and future requests.
					store.ClearTokens()
					_ = m.repo.Delete(ctx, sid)
					m.users.Invalidate(sid)
				} else {
					m.logger.Warn("Fetching current user failed", zap.String("sessionID", sid), zap.Error(err))
				}
				c.Next()
				return
			}
			m.users.Set(sid, user)
		}

		c.Set(UserContextKey, user)
		c.Next()

		// A 401 written by a handler means the upstream rejected the
		// token mid-request; the session is dead. Tear it down so the
		// next request starts anonymous instead of replaying the token.
		if c.Writer.Status() == http.StatusUnauthorized {
			store.ClearTokens()
			_ = m.repo.Delete(ctx, sid)
			m.users.Invalidate(sid)
		}
	}
}

// RequireUser aborts requests that reach a protected route anonymously.
// Browser navigations are redirected to the sign-in page; API calls get a
// plain 401.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserFromContext(c) != nil {
			c.Next()
			return
		}
		if c.GetHeader("Accept") == "application/json" || c.ContentType() == "application/json" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Authentication required"})
			return
		}
		c.Redirect(http.StatusFound, "/auth/signin")
		c.Abort()
	}
}

// TokenStoreFrom returns the request's token store. Always non-nil; an
// anonymous request carries an empty store.
func TokenStoreFrom(c *gin.Context) session.TokenStore {
	if v, exists := c.Get(tokenStoreKey); exists {
		if store, ok := v.(session.TokenStore); ok {
			return store
		}
	}
	return session.NewStore("", "")
}

// GetUserFromContext extracts the authenticated user from the Gin context.
func GetUserFromContext(c *gin.Context) *models.UserAccount {
	v, exists := c.Get(UserContextKey)
	if !exists {
		return nil
	}
	user, ok := v.(*models.UserAccount)
	if !ok {
		return nil
	}
	return user
}

// CORSMiddleware handles CORS headers
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// SecurityMiddleware adds security headers
func SecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		c.Writer.Header().Set("X-XSS-Protection", "1; mode=block")
		c.Writer.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		csp := "default-src 'self'; " +
			"script-src 'self'; " +
			"style-src 'self' 'unsafe-inline'; " +
			"img-src 'self' data: https:; " +
			"connect-src 'self'"
		c.Writer.Header().Set("Content-Security-Policy", csp)

		c.Next()
	}
}
