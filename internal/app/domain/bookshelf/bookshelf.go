// Package bookshelf proxies the user's saved-documents shelf.
package bookshelf

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mxchestnut/workshelf-sub001/internal/app/domain"
	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/session"
	"github.com/mxchestnut/workshelf-sub001/internal/app/middleware"
	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
)

type UpstreamAPI interface {
	ListShelf(ctx context.Context, tok session.TokenStore) ([]models.ShelfEntry, error)
	AddToShelf(ctx context.Context, tok session.TokenStore, documentID string) error
	RemoveFromShelf(ctx context.Context, tok session.TokenStore, documentID string) error
}

type AddRequest struct {
	DocumentID string `json:"document_id"`
}

type BookshelfHandlers struct {
	*domain.BaseHandler
	upstream UpstreamAPI
}

func NewBookshelfHandlers(upstream UpstreamAPI, base *domain.BaseHandler) *BookshelfHandlers {
	return &BookshelfHandlers{BaseHandler: base, upstream: upstream}
}

func (h *BookshelfHandlers) ListShelf(c *gin.Context) {
	entries, err := h.upstream.ListShelf(c.Request.Context(), middleware.TokenStoreFrom(c))
	if err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *BookshelfHandlers) AddToShelf(c *gin.Context) {
	var req AddRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.DocumentID == "" {
		h.RespondError(c, models.ErrBadRequest)
		return
	}

	if err := h.upstream.AddToShelf(c.Request.Context(), middleware.TokenStoreFrom(c), req.DocumentID); err != nil {
		h.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"document_id": req.DocumentID})
}

func (h *BookshelfHandlers) RemoveFromShelf(c *gin.Context) {
	if err := h.upstream.RemoveFromShelf(c.Request.Context(), middleware.TokenStoreFrom(c), c.Param("id")); err != nil {
		h.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
