package staff

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mxchestnut/workshelf-sub001/internal/app/domain"
	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/rolegate"
	"github.com/mxchestnut/workshelf-sub001/internal/app/middleware"
	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
)

// panelTabs is everything the panel can offer; the gate trims it per user.
var panelTabs = []string{
	rolegate.TabOverview,
	rolegate.TabMembers,
	rolegate.TabInvitations,
	rolegate.TabSiteAdmin,
	rolegate.TabUserApproval,
}

type StaffHandlers struct {
	*domain.BaseHandler
	service Service
}

func NewStaffHandlers(service Service, base *domain.BaseHandler) *StaffHandlers {
	return &StaffHandlers{BaseHandler: base, service: service}
}

// Panel renders the admin surface: the gated tab layout plus the overview
// data for the default tab. Users with no admin standing are redirected
// home instead of seeing an error page.
func (h *StaffHandlers) Panel(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/auth/signin")
		return
	}

	gate := rolegate.Evaluate(rolegate.Input{
		IsStaff:                user.IsStaff,
		AdministeredGroupCount: user.AdministeredGroupCount(),
		RequestedPath:          c.Request.URL.Path,
		AvailableTabs:          panelTabs,
	})
	if !gate.Allowed {
		c.Redirect(http.StatusFound, "/")
		return
	}

	overview, err := h.service.Overview(c.Request.Context(), middleware.TokenStoreFrom(c), user.IsStaff)
	if err != nil {
		h.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tabs":        gate.VisibleTabs,
		"default_tab": gate.DefaultTab,
		"overview":    overview,
	})
}

// PendingUsers lists accounts awaiting approval. Staff only; group admins
// never see this tab.
func (h *StaffHandlers) PendingUsers(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	if user == nil || !user.IsStaff {
		h.RespondError(c, models.ErrForbidden)
		return
	}

	users, err := h.service.PendingUsers(c.Request.Context(), middleware.TokenStoreFrom(c))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *StaffHandlers) ApproveUser(c *gin.Context) {
	user := middleware.GetUserFromContext(c)
	if user == nil || !user.IsStaff {
		h.RespondError(c, models.ErrForbidden)
		return
	}

	if err := h.service.ApproveUser(c.Request.Context(), middleware.TokenStoreFrom(c), c.Param("id")); err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"approved": c.Param("id")})
}
