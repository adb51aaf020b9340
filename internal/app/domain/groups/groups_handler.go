package groups

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mxchestnut/workshelf-sub001/internal/app/domain"
	"github.com/mxchestnut/workshelf-sub001/internal/app/middleware"
	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
)

type InviteRequest struct {
	Invitee string `json:"invitee"`
}

type GroupsHandlers struct {
	*domain.BaseHandler
	service Service
}

func NewGroupsHandlers(service Service, base *domain.BaseHandler) *GroupsHandlers {
	return &GroupsHandlers{BaseHandler: base, service: service}
}

func (h *GroupsHandlers) MyGroups(c *gin.Context) {
	groups, err := h.service.Memberships(c.Request.Context(), middleware.TokenStoreFrom(c))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *GroupsHandlers) SendInvitation(c *gin.Context) {
	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondError(c, models.ErrBadRequest)
		return
	}

	inv, err := h.service.Invite(c.Request.Context(), middleware.TokenStoreFrom(c), c.Param("id"), req.Invitee)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *GroupsHandlers) GroupInvitations(c *gin.Context) {
	invs, err := h.service.GroupInvitations(c.Request.Context(), middleware.TokenStoreFrom(c), c.Param("id"))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invs)
}

func (h *GroupsHandlers) PendingInvitations(c *gin.Context) {
	invs, err := h.service.PendingInvitations(c.Request.Context(), middleware.TokenStoreFrom(c))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invs)
}

func (h *GroupsHandlers) AcceptInvitation(c *gin.Context) {
	if err := h.service.Accept(c.Request.Context(), middleware.TokenStoreFrom(c), c.Param("id")); err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": string(models.InvitationAccepted)})
}

func (h *GroupsHandlers) DeclineInvitation(c *gin.Context) {
	if err := h.service.Decline(c.Request.Context(), middleware.TokenStoreFrom(c), c.Param("id")); err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": string(models.InvitationDeclined)})
}

func (h *GroupsHandlers) RevokeInvitation(c *gin.Context) {
	if err := h.service.Revoke(c.Request.Context(), middleware.TokenStoreFrom(c), c.Param("id")); err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": string(models.InvitationRevoked)})
}
