package upstream

import (
	"context"
	"fmt"
	"net/url"

	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/session"
	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
)

type createDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Excerpt string `json:"excerpt,omitempty"`
}

// ListDocuments returns the user's documents.
func (c *Client) ListDocuments(ctx context.Context, tok session.TokenStore) ([]models.Document, error) {
	var docs []models.Document
	if err := c.getJSON(ctx, tok, "/documents", &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// CreateDocument stores a new document.
func (c *Client) CreateDocument(ctx context.Context, tok session.TokenStore, title, content, excerpt string) (*models.Document, error) {
	var doc models.Document
	req := createDocumentRequest{Title: title, Content: content, Excerpt: excerpt}
	if err := c.postJSON(ctx, tok, "/documents", req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListShelf returns the user's bookshelf.
func (c *Client) ListShelf(ctx context.Context, tok session.TokenStore) ([]models.ShelfEntry, error) {
	var shelf []models.ShelfEntry
	if err := c.getJSON(ctx, tok, "/bookshelf", &shelf); err != nil {
		return nil, err
	}
	return shelf, nil
}

type shelfRequest struct {
	DocumentID string `json:"document_id"`
}

// AddToShelf pins a document to the user's bookshelf.
func (c *Client) AddToShelf(ctx context.Context, tok session.TokenStore, documentID string) error {
	return c.postJSON(ctx, tok, "/bookshelf", shelfRequest{DocumentID: documentID}, nil)
}

// RemoveFromShelf unpins a document.
func (c *Client) RemoveFromShelf(ctx context.Context, tok session.TokenStore, documentID string) error {
	path := fmt.Sprintf("/bookshelf/%s", url.PathEscape(documentID))
	return c.do(ctx, tok, "DELETE", path, "", nil, nil)
}
