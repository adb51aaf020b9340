package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mxchestnut/workshelf-sub001/internal/app/domain"
	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/session"
	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
	"github.com/mxchestnut/workshelf-sub001/internal/pkg/cache"
)

// MockAuthenticator is a mock implementation of the Authenticator interface
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Refresh(ctx context.Context, rec *models.SessionRecord) (*models.SessionRecord, error) {
	args := m.Called(ctx, rec)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SessionRecord), args.Error(1)
}

func (m *MockAuthenticator) CurrentUser(ctx context.Context, tok session.TokenStore) (*models.UserAccount, error) {
	args := m.Called(ctx, tok)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserAccount), args.Error(1)
}

func signedToken(t *testing.T, expiresIn time.Duration) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(expiresIn).Unix(),
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return raw
}

// newTestRouter wires the middleware behind a cookie session the way the
// real router does, plus a helper route that plants a session id.
func newTestRouter(t *testing.T, m *SessionAuth) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("workshelf_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(m.Handler())
	r.POST("/test-login/:sid", func(c *gin.Context) {
		s := sessions.Default(c)
		s.Set(SessionIDKey, c.Param("sid"))
		require.NoError(t, s.Save())
		c.Status(http.StatusNoContent)
	})
	r.GET("/me", func(c *gin.Context) {
		if user := GetUserFromContext(c); user != nil {
			c.JSON(http.StatusOK, gin.H{"id": user.ID, "token": TokenStoreFrom(c).GetAccessToken()})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "anonymous"})
	})
	base := domain.NewBaseHandler(zap.NewNop())
	r.GET("/expired", func(c *gin.Context) {
		base.RespondError(c, fmt.Errorf("GET /documents: %w", models.ErrUnauthenticated))
	})
	return r
}

// loginCookies returns the cookies the session middleware issues for sid.
func loginCookies(t *testing.T, r *gin.Engine, sid string) []*http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/test-login/"+sid, nil)
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	return rec.Result().Cookies()
}

func getMe(r *gin.Engine, cookies []*http.Cookie) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	r.ServeHTTP(rec, req)
	return rec
}

func TestSessionAuth(t *testing.T) {
	ctx := context.Background()

	t.Run("no cookie means anonymous", func(t *testing.T) {
		auth := new(MockAuthenticator)
		m := NewSessionAuth(auth, session.NewMemoryRepo(time.Minute), cache.NewUserCache(time.Minute, nil), zap.NewNop())
		r := newTestRouter(t, m)

		rec := getMe(r, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		auth.AssertNotCalled(t, "CurrentUser")
	})

	t.Run("resolves the user once and serves the cache after", func(t *testing.T) {
		auth := new(MockAuthenticator)
		repo := session.NewMemoryRepo(time.Minute)
		m := NewSessionAuth(auth, repo, cache.NewUserCache(time.Minute, nil), zap.NewNop())
		r := newTestRouter(t, m)

		access := signedToken(t, time.Hour)
		require.NoError(t, repo.Save(ctx, &models.SessionRecord{
			ID: "s1", UserID: "user-1", AccessToken: access, RefreshToken: "r1",
			ExpiresAt: time.Now().Add(time.Hour),
		}))
		auth.On("CurrentUser", mock.Anything, mock.Anything).
			Return(&models.UserAccount{ID: "user-1"}, nil).Once()

		cookies := loginCookies(t, r, "s1")

		rec := getMe(r, cookies)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), access)

		rec = getMe(r, cookies)
		assert.Equal(t, http.StatusOK, rec.Code)
		auth.AssertNumberOfCalls(t, "CurrentUser", 1)
	})

	t.Run("rotates a token inside the leeway window", func(t *testing.T) {
		auth := new(MockAuthenticator)
		repo := session.NewMemoryRepo(time.Minute)
		m := NewSessionAuth(auth, repo, cache.NewUserCache(time.Minute, nil), zap.NewNop())
		r := newTestRouter(t, m)

		require.NoError(t, repo.Save(ctx, &models.SessionRecord{
			ID: "s1", UserID: "user-1", AccessToken: signedToken(t, 5*time.Second), RefreshToken: "r1",
			ExpiresAt: time.Now().Add(time.Hour),
		}))
		fresh := signedToken(t, time.Hour)
		auth.On("Refresh", mock.Anything, mock.Anything).
			Return(&models.SessionRecord{ID: "s1", UserID: "user-1", AccessToken: fresh, RefreshToken: "r2"}, nil)
		auth.On("CurrentUser", mock.Anything, mock.Anything).
			Return(&models.UserAccount{ID: "user-1"}, nil)

		rec := getMe(r, loginCookies(t, r, "s1"))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), fresh)
		auth.AssertCalled(t, "Refresh", mock.Anything, mock.Anything)
	})

	t.Run("failed refresh falls back to anonymous", func(t *testing.T) {
		auth := new(MockAuthenticator)
		repo := session.NewMemoryRepo(time.Minute)
		m := NewSessionAuth(auth, repo, cache.NewUserCache(time.Minute, nil), zap.NewNop())
		r := newTestRouter(t, m)

		require.NoError(t, repo.Save(ctx, &models.SessionRecord{
			ID: "s1", UserID: "user-1", AccessToken: "not-a-jwt", RefreshToken: "dead",
			ExpiresAt: time.Now().Add(time.Hour),
		}))
		auth.On("Refresh", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("POST /auth/refresh: %w", models.ErrUnauthenticated))

		rec := getMe(r, loginCookies(t, r, "s1"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		auth.AssertNotCalled(t, "CurrentUser")
	})

	t.Run("handler 401 tears the whole session down", func(t *testing.T) {
		auth := new(MockAuthenticator)
		repo := session.NewMemoryRepo(time.Minute)
		m := NewSessionAuth(auth, repo, cache.NewUserCache(time.Minute, nil), zap.NewNop())
		r := newTestRouter(t, m)

		require.NoError(t, repo.Save(ctx, &models.SessionRecord{
			ID: "s1", UserID: "user-1", AccessToken: signedToken(t, time.Hour), RefreshToken: "r1",
			ExpiresAt: time.Now().Add(time.Hour),
		}))
		auth.On("CurrentUser", mock.Anything, mock.Anything).
			Return(&models.UserAccount{ID: "user-1"}, nil).Once()

		cookies := loginCookies(t, r, "s1")
		require.Equal(t, http.StatusOK, getMe(r, cookies).Code)

		// A domain handler surfaces an upstream 401 for this session.
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/expired", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		r.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		_, err := repo.Get(ctx, "s1")
		assert.ErrorIs(t, err, models.ErrNotFound)

		// The cached user is gone too; the next request is anonymous
		// without asking upstream again.
		assert.Equal(t, http.StatusUnauthorized, getMe(r, cookies).Code)
		auth.AssertNumberOfCalls(t, "CurrentUser", 1)
	})

	t.Run("rejected token deletes the session record", func(t *testing.T) {
		auth := new(MockAuthenticator)
		repo := session.NewMemoryRepo(time.Minute)
		m := NewSessionAuth(auth, repo, cache.NewUserCache(time.Minute, nil), zap.NewNop())
		r := newTestRouter(t, m)

		require.NoError(t, repo.Save(ctx, &models.SessionRecord{
			ID: "s1", UserID: "user-1", AccessToken: signedToken(t, time.Hour), RefreshToken: "r1",
			ExpiresAt: time.Now().Add(time.Hour),
		}))
		auth.On("CurrentUser", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("GET /users/me: %w", models.ErrUnauthenticated))

		rec := getMe(r, loginCookies(t, r, "s1"))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		_, err := repo.Get(ctx, "s1")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestRequireUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/guarded", RequireUser(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	t.Run("api request gets a 401", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		req.Header.Set("Accept", "application/json")
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Authentication required")
	})

	t.Run("browser navigation is redirected to sign-in", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusFound, rec.Code)
		assert.Equal(t, "/auth/signin", rec.Header().Get("Location"))
	})
}
