// Package documents covers writing and publishing: listing a user's
// documents, the pre-publish content check, and the EPUB upload pipeline
// with its verification polling.
package documents

import (
	"context"
	"fmt"
	"io"
	"strings"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"
	"go.uber.org/zap"

	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/jobs"
	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/session"
	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// UpstreamAPI is the slice of the backend client this package needs.
type UpstreamAPI interface {
	ListDocuments(ctx context.Context, tok session.TokenStore) ([]models.Document, error)
	CreateDocument(ctx context.Context, tok session.TokenStore, title, content, excerpt string) (*models.Document, error)
	SubmitEpubUpload(ctx context.Context, tok session.TokenStore, filename string, file io.Reader) (*models.AsyncJob, error)
	EpubUploadStatus(ctx context.Context, tok session.TokenStore, id int64) (*models.AsyncJob, error)
}

// PreflightIssue is one blocked term found in submitted content, with byte
// offsets into the plain text.
type PreflightIssue struct {
	Term  string `json:"term"`
	Start int    `json:"start"`
	End   int    `json:"end"`
}

// PreflightResult is what the editor shows before publishing: the excerpt
// that will appear in listings and any terms that block publication.
type PreflightResult struct {
	Allowed bool             `json:"allowed"`
	Excerpt string           `json:"excerpt"`
	Issues  []PreflightIssue `json:"issues,omitempty"`
}

type Service interface {
	List(ctx context.Context, tok session.TokenStore) ([]models.Document, error)
	Preflight(contentHTML string) (*PreflightResult, error)
	Publish(ctx context.Context, tok session.TokenStore, title, contentHTML string) (*models.Document, error)
	Upload(ctx context.Context, tok session.TokenStore, filename string, file io.Reader) jobs.Result
}

// ServiceImpl provides the implementation for Service.
type ServiceImpl struct {
	logger   *zap.Logger
	upstream UpstreamAPI
	matcher  ahocorasick.AhoCorasick
	terms    []string
	pollOpts jobs.Options
}

// defaultBlockedTerms seeds the matcher when moderation gives us nothing.
var defaultBlockedTerms = []string{
	"buy followers",
	"crypto giveaway",
	"free nitro",
}

func NewService(upstream UpstreamAPI, blockedTerms []string, pollOpts jobs.Options, logger *zap.Logger) *ServiceImpl {
	if len(blockedTerms) == 0 {
		blockedTerms = defaultBlockedTerms
	}
	builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
		AsciiCaseInsensitive: true,
		MatchOnlyWholeWords:  true,
		MatchKind:            ahocorasick.LeftMostLongestMatch,
	})
	pollOpts.Kind = "epub-verification"
	return &ServiceImpl{
		logger:   logger,
		upstream: upstream,
		matcher:  builder.Build(blockedTerms),
		terms:    blockedTerms,
		pollOpts: pollOpts,
	}
}

func (s *ServiceImpl) List(ctx context.Context, tok session.TokenStore) ([]models.Document, error) {
	return s.upstream.ListDocuments(ctx, tok)
}

// Preflight strips the submitted HTML to text, scans it for blocked terms
// and derives the listing excerpt. It never talks to the backend.
func (s *ServiceImpl) Preflight(contentHTML string) (*PreflightResult, error) {
	text, excerpt, err := extractText(contentHTML)
	if err != nil {
		return nil, fmt.Errorf("parsing content: %w", models.ErrBadRequest)
	}

	var issues []PreflightIssue
	for _, m := range s.matcher.FindAll(text) {
		issues = append(issues, PreflightIssue{
			Term:  s.terms[m.Pattern()],
			Start: m.Start(),
			End:   m.End(),
		})
	}

	return &PreflightResult{
		Allowed: len(issues) == 0,
		Excerpt: excerpt,
		Issues:  issues,
	}, nil
}

// Publish runs the preflight check and, when it passes, creates the
// document upstream with the derived excerpt.
func (s *ServiceImpl) Publish(ctx context.Context, tok session.TokenStore, title, contentHTML string) (*models.Document, error) {
	l := s.logger.With(zap.String("method", "Publish"), zap.String("title", title))

	if strings.TrimSpace(title) == "" {
		return nil, &models.ValidationError{Detail: "Title is required."}
	}

	pf, err := s.Preflight(contentHTML)
	if err != nil {
		return nil, err
	}
	if !pf.Allowed {
		terms := make([]string, 0, len(pf.Issues))
		for _, issue := range pf.Issues {
			terms = append(terms, issue.Term)
		}
		l.Warn("Publish blocked by content check", zap.Strings("terms", terms))
		return nil, &models.ValidationError{
			Detail: "Content contains blocked terms: " + strings.Join(terms, ", "),
		}
	}

	doc, err := s.upstream.CreateDocument(ctx, tok, title, contentHTML, pf.Excerpt)
	if err != nil {
		l.Error("CreateDocument failed", zap.Error(err))
		return nil, err
	}

	l.Info("Document published", zap.String("documentID", doc.ID))
	return doc, nil
}

// Upload submits an EPUB and polls its verification job to a terminal
// state. The returned result carries the last job snapshot seen, including
// the verification score when one was reported.
func (s *ServiceImpl) Upload(ctx context.Context, tok session.TokenStore, filename string, file io.Reader) jobs.Result {
	l := s.logger.With(zap.String("method", "Upload"), zap.String("filename", filename))
	l.Info("Starting EPUB upload")

	poller := jobs.New(s.pollOpts)
	res := poller.Run(ctx,
		func(ctx context.Context) (*models.AsyncJob, error) {
			return s.upstream.SubmitEpubUpload(ctx, tok, filename, file)
		},
		func(ctx context.Context, id int64) (*models.AsyncJob, error) {
			return s.upstream.EpubUploadStatus(ctx, tok, id)
		},
	)

	l.Info("EPUB upload finished", zap.String("state", res.State.String()), zap.Error(res.Err))
	return res
}
