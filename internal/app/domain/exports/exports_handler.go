package exports

import (
	"github.com/gin-gonic/gin"

	"github.com/mxchestnut/workshelf-sub001/internal/app/domain"
	"github.com/mxchestnut/workshelf-sub001/internal/app/middleware"
)

type ExportsHandlers struct {
	*domain.BaseHandler
	service Service
}

func NewExportsHandlers(service Service, base *domain.BaseHandler) *ExportsHandlers {
	return &ExportsHandlers{BaseHandler: base, service: service}
}

// RequestExport blocks until the export job finishes. The success response
// carries the job's result URL for the archive download.
func (h *ExportsHandlers) RequestExport(c *gin.Context) {
	res := h.service.Request(c.Request.Context(), middleware.TokenStoreFrom(c))
	h.RespondJob(c, res)
}
