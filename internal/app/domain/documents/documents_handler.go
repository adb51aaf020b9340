package documents

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mxchestnut/workshelf-sub001/internal/app/domain"
	"github.com/mxchestnut/workshelf-sub001/internal/app/middleware"
	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
)

type PublishRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type PreflightRequest struct {
	Content string `json:"content"`
}

type DocumentsHandlers struct {
	*domain.BaseHandler
	service Service
}

func NewDocumentsHandlers(service Service, base *domain.BaseHandler) *DocumentsHandlers {
	return &DocumentsHandlers{BaseHandler: base, service: service}
}

func (h *DocumentsHandlers) ListDocuments(c *gin.Context) {
	docs, err := h.service.List(c.Request.Context(), middleware.TokenStoreFrom(c))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}

// PreflightDocument runs the content check without publishing, so the
// editor can warn before the user commits.
func (h *DocumentsHandlers) PreflightDocument(c *gin.Context) {
	var req PreflightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondError(c, models.ErrBadRequest)
		return
	}

	result, err := h.service.Preflight(req.Content)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *DocumentsHandlers) PublishDocument(c *gin.Context) {
	var req PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondError(c, models.ErrBadRequest)
		return
	}

	doc, err := h.service.Publish(c.Request.Context(), middleware.TokenStoreFrom(c), req.Title, req.Content)
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// UploadEpub accepts the file, hands it to the verification pipeline and
// blocks until the job reaches a terminal state or the budget runs out.
func (h *DocumentsHandlers) UploadEpub(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		h.RespondError(c, models.ErrBadRequest)
		return
	}

	file, err := header.Open()
	if err != nil {
		h.Logger.Error("Opening uploaded file failed", zap.String("filename", header.Filename), zap.Error(err))
		h.RespondError(c, models.ErrBadRequest)
		return
	}
	defer file.Close()

	res := h.service.Upload(c.Request.Context(), middleware.TokenStoreFrom(c), header.Filename, file)
	h.RespondJob(c, res)
}
