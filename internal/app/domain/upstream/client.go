// Package upstream is the typed client for the platform REST backend. It is
// the only place that talks HTTP to the backend; services above it deal in
// domain models and the shared error taxonomy.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/session"
	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
	appmetrics "github.com/mxchestnut/workshelf-sub001/internal/app/observability/metrics"
	"github.com/mxchestnut/workshelf-sub001/internal/pkg/config"
)

// Client issues requests against the platform backend. Safe for concurrent
// use; per-user credentials travel in the TokenStore argument, never in the
// client itself.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

func NewClient(cfg config.UpstreamConfig, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
	}
}

// detailEnvelope is the backend's error body: {"detail": "..."}.
type detailEnvelope struct {
	Detail string `json:"detail"`
}

// do performs one request and decodes the JSON response into out (skipped
// when out is nil). Errors map onto the shared taxonomy: network failures
// and non-JSON bodies wrap ErrUnavailable, 401 wraps ErrUnauthenticated,
// 4xx with a detail body becomes a ValidationError surfaced verbatim.
func (c *Client) do(ctx context.Context, tok session.TokenStore, method, path, contentType string, body io.Reader, out any) error {
	tracer := otel.Tracer("workshelf-upstream")
	ctx, span := tracer.Start(ctx, method+" "+path)
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("building %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok != nil {
		for k, v := range tok.AuthorizedHeaders() {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport failure")
		c.countRequest(method, path, 0)
		c.logger.Warn("Upstream request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return fmt.Errorf("%s %s: %v: %w", method, path, err, models.ErrUnavailable)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	c.countRequest(method, path, resp.StatusCode)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			span.RecordError(err)
			return fmt.Errorf("%s %s: decoding response: %v: %w", method, path, err, models.ErrUnavailable)
		}
		return nil
	}

	return c.statusError(resp, method, path)
}

func (c *Client) statusError(resp *http.Response, method, path string) error {
	var env detailEnvelope
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(raw, &env)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%s %s: %w", method, path, models.ErrUnauthenticated)
	case resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%s %s: %w", method, path, models.ErrForbidden)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, models.ErrNotFound)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// The server's reason is surfaced to the user verbatim.
		return &models.ValidationError{Detail: env.Detail}
	default:
		c.logger.Error("Upstream server error",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("detail", env.Detail))
		return fmt.Errorf("%s %s: status %d: %w", method, path, resp.StatusCode, models.ErrUnavailable)
	}
}

func (c *Client) getJSON(ctx context.Context, tok session.TokenStore, path string, out any) error {
	return c.do(ctx, tok, http.MethodGet, path, "", nil, out)
}

func (c *Client) postJSON(ctx context.Context, tok session.TokenStore, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding %s body: %w", path, err)
		}
		body = bytes.NewReader(payload)
	}
	return c.do(ctx, tok, http.MethodPost, path, "application/json", body, out)
}

func (c *Client) countRequest(method, path string, status int) {
	m := appmetrics.Get()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	)
	m.UpstreamRequestsTotal.Add(context.Background(), 1, attrs)
	if status == 0 || status >= 500 {
		m.UpstreamErrorsTotal.Add(context.Background(), 1, attrs)
	}
}

// --- Identity ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Login exchanges credentials for a token pair. The frontend forwards the
// login form and never persists the password.
func (c *Client) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	var pair models.TokenPair
	if err := c.postJSON(ctx, nil, "/auth/login", loginRequest{Email: email, Password: password}, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Refresh rotates the token pair using the refresh token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	var pair models.TokenPair
	if err := c.postJSON(ctx, nil, "/auth/refresh", refreshRequest{RefreshToken: refreshToken}, &pair); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Logout invalidates the session server-side. Best effort; local session
// teardown happens regardless.
func (c *Client) Logout(ctx context.Context, tok session.TokenStore) error {
	return c.postJSON(ctx, tok, "/auth/logout", nil, nil)
}

// CurrentUser fetches the authenticated user object, including the role
// information (is_staff, groups) the role gate consumes.
func (c *Client) CurrentUser(ctx context.Context, tok session.TokenStore) (*models.UserAccount, error) {
	var user models.UserAccount
	if err := c.getJSON(ctx, tok, "/users/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}
