package upstream

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/session"
	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
)

// SubmitEpubUpload streams an EPUB to the verification endpoint as
// multipart/form-data and returns the created job.
func (c *Client) SubmitEpubUpload(ctx context.Context, tok session.TokenStore, filename string, file io.Reader) (*models.AsyncJob, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("building upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("reading upload payload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing upload form: %w", err)
	}

	var job models.AsyncJob
	if err := c.do(ctx, tok, http.MethodPost, "/epub-uploads/upload", mw.FormDataContentType(), &buf, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// EpubUploadStatus reads the current verification state of an upload job.
// Idempotent; safe to call on every poll tick.
func (c *Client) EpubUploadStatus(ctx context.Context, tok session.TokenStore, id int64) (*models.AsyncJob, error) {
	var job models.AsyncJob
	if err := c.getJSON(ctx, tok, fmt.Sprintf("/epub-uploads/%d", id), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// RequestGDPRExport asks the backend to assemble the user's data archive.
// The response may already be terminal when a prior export is still fresh.
func (c *Client) RequestGDPRExport(ctx context.Context, tok session.TokenStore) (*models.AsyncJob, error) {
	var job models.AsyncJob
	if err := c.postJSON(ctx, tok, "/export/gdpr", nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// GDPRExportStatus reads the state of an export job.
func (c *Client) GDPRExportStatus(ctx context.Context, tok session.TokenStore, id int64) (*models.AsyncJob, error) {
	var job models.AsyncJob
	if err := c.getJSON(ctx, tok, fmt.Sprintf("/export/gdpr/%d", id), &job); err != nil {
		return nil, err
	}
	return &job, nil
}
