package payouts

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mxchestnut/workshelf-sub001/internal/app/domain"
	"github.com/mxchestnut/workshelf-sub001/internal/app/middleware"
	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
)

type OnboardRequest struct {
	Country string `json:"country"`
}

type PayoutsHandlers struct {
	*domain.BaseHandler
	service Service
}

func NewPayoutsHandlers(service Service, base *domain.BaseHandler) *PayoutsHandlers {
	return &PayoutsHandlers{BaseHandler: base, service: service}
}

func (h *PayoutsHandlers) Onboard(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		h.RespondError(c, models.ErrUnauthenticated)
		return
	}

	var req OnboardRequest
	// Body is optional; country defaults inside the provider.
	_ = c.ShouldBindJSON(&req)

	acct, err := h.service.Onboard(c.Request.Context(), user, req.Country)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, acct)
}

func (h *PayoutsHandlers) Status(c *gin.Context) {
	acct, err := h.service.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, acct)
}

func (h *PayoutsHandlers) DashboardLink(c *gin.Context) {
	link, err := h.service.DashboardLink(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": link})
}
