// Package staff is the staff and group-admin panel: tab layout, the
// aggregated overview, and pending-user approval.
package staff

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/session"
	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

type UpstreamAPI interface {
	PendingUsers(ctx context.Context, tok session.TokenStore) ([]models.PendingUser, error)
	ApprovePendingUser(ctx context.Context, tok session.TokenStore, userID string) error
	MyGroups(ctx context.Context, tok session.TokenStore) ([]models.GroupMembership, error)
	PendingInvitations(ctx context.Context, tok session.TokenStore) ([]models.Invitation, error)
}

// Overview aggregates what the panel's landing tab shows. PendingUsers is
// nil for non-staff admins; the other sections apply to both.
type Overview struct {
	PendingUsers       []models.PendingUser     `json:"pending_users,omitempty"`
	Groups             []models.GroupMembership `json:"groups"`
	PendingInvitations []models.Invitation      `json:"pending_invitations"`
}

type Service interface {
	Overview(ctx context.Context, tok session.TokenStore, isStaff bool) (*Overview, error)
	PendingUsers(ctx context.Context, tok session.TokenStore) ([]models.PendingUser, error)
	ApproveUser(ctx context.Context, tok session.TokenStore, userID string) error
}

// ServiceImpl provides the implementation for Service.
type ServiceImpl struct {
	logger   *zap.Logger
	upstream UpstreamAPI
}

func NewService(upstream UpstreamAPI, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, upstream: upstream}
}

// Overview fans out the panel's reads concurrently. The pending-user list
// is staff-only and skipped entirely for group admins.
func (s *ServiceImpl) Overview(ctx context.Context, tok session.TokenStore, isStaff bool) (*Overview, error) {
	l := s.logger.With(zap.String("method", "Overview"), zap.Bool("isStaff", isStaff))

	var out Overview
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		groups, err := s.upstream.MyGroups(ctx, tok)
		if err != nil {
			return err
		}
		out.Groups = groups
		return nil
	})

	g.Go(func() error {
		invs, err := s.upstream.PendingInvitations(ctx, tok)
		if err != nil {
			return err
		}
		out.PendingInvitations = invs
		return nil
	})

	if isStaff {
		g.Go(func() error {
			users, err := s.upstream.PendingUsers(ctx, tok)
			if err != nil {
				return err
			}
			out.PendingUsers = users
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		l.Warn("Overview aggregation failed", zap.Error(err))
		return nil, err
	}
	return &out, nil
}

func (s *ServiceImpl) PendingUsers(ctx context.Context, tok session.TokenStore) ([]models.PendingUser, error) {
	return s.upstream.PendingUsers(ctx, tok)
}

func (s *ServiceImpl) ApproveUser(ctx context.Context, tok session.TokenStore, userID string) error {
	err := s.upstream.ApprovePendingUser(ctx, tok, userID)
	if err != nil {
		s.logger.Warn("ApprovePendingUser failed", zap.String("userID", userID), zap.Error(err))
		return err
	}
	s.logger.Info("Pending user approved", zap.String("userID", userID))
	return nil
}
