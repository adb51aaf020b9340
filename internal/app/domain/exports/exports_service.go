// Package exports drives the GDPR data export: request it, poll the job
// until the archive is ready, and hand the download link back.
package exports

import (
	"context"

	"go.uber.org/zap"

	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/jobs"
	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/session"
	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

type UpstreamAPI interface {
	RequestGDPRExport(ctx context.Context, tok session.TokenStore) (*models.AsyncJob, error)
	GDPRExportStatus(ctx context.Context, tok session.TokenStore, id int64) (*models.AsyncJob, error)
}

type Service interface {
	Request(ctx context.Context, tok session.TokenStore) jobs.Result
}

// ServiceImpl provides the implementation for Service.
type ServiceImpl struct {
	logger   *zap.Logger
	upstream UpstreamAPI
	pollOpts jobs.Options
}

func NewService(upstream UpstreamAPI, pollOpts jobs.Options, logger *zap.Logger) *ServiceImpl {
	pollOpts.Kind = "gdpr-export"
	return &ServiceImpl{
		logger:   logger,
		upstream: upstream,
		pollOpts: pollOpts,
	}
}

// Request asks the backend for an export and polls until the archive is
// ready. A repeat request while an archive is still fresh comes back from
// the backend already completed, and finishes without a single status poll.
func (s *ServiceImpl) Request(ctx context.Context, tok session.TokenStore) jobs.Result {
	l := s.logger.With(zap.String("method", "Request"))
	l.Info("Requesting data export")

	poller := jobs.New(s.pollOpts)
	res := poller.Run(ctx,
		func(ctx context.Context) (*models.AsyncJob, error) {
			return s.upstream.RequestGDPRExport(ctx, tok)
		},
		func(ctx context.Context, id int64) (*models.AsyncJob, error) {
			return s.upstream.GDPRExportStatus(ctx, tok, id)
		},
	)

	l.Info("Data export finished", zap.String("state", res.State.String()), zap.Error(res.Err))
	return res
}
