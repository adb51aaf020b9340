package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mxchestnut/workshelf-sub001/internal/app/domain"
	"github.com/mxchestnut/workshelf-sub001/internal/app/middleware"
	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthHandlers struct {
	*domain.BaseHandler
	service AuthService
}

func NewAuthHandlers(service AuthService, base *domain.BaseHandler) *AuthHandlers {
	return &AuthHandlers{BaseHandler: base, service: service}
}

// Login exchanges credentials for a server-side session and puts the
// session id in the cookie. Tokens never travel to the browser.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		h.RespondError(c, &models.ValidationError{Detail: "Email and password are required."})
		return
	}

	rec, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	sess := sessions.Default(c)
	sess.Set(middleware.SessionIDKey, rec.ID)
	if err := sess.Save(); err != nil {
		h.Logger.Error("Failed to save cookie session", zap.Error(err))
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user_id": rec.UserID})
}

// Logout drops the server-side record and clears the cookie. Safe to call
// when already logged out.
func (h *AuthHandlers) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	if sid, ok := sess.Get(middleware.SessionIDKey).(string); ok && sid != "" {
		if err := h.service.Logout(c.Request.Context(), sid); err != nil {
			h.Logger.Warn("Logout cleanup failed", zap.String("sessionID", sid), zap.Error(err))
		}
	}

	sess.Clear()
	if err := sess.Save(); err != nil {
		h.Logger.Error("Failed to clear cookie session", zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"logged_out": true})
}

// Me returns the authenticated user the middleware resolved, or 401.
func (h *AuthHandlers) Me(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		h.RespondError(c, models.ErrUnauthenticated)
		return
	}
	c.JSON(http.StatusOK, user)
}
