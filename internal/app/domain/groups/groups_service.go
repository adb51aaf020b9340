// Package groups covers writing-group membership and the invitation
// lifecycle: send, accept, decline, revoke.
package groups

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/session"
	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

type UpstreamAPI interface {
	MyGroups(ctx context.Context, tok session.TokenStore) ([]models.GroupMembership, error)
	SendInvitation(ctx context.Context, tok session.TokenStore, groupID, invitee string) (*models.Invitation, error)
	GroupInvitations(ctx context.Context, tok session.TokenStore, groupID string) ([]models.Invitation, error)
	PendingInvitations(ctx context.Context, tok session.TokenStore) ([]models.Invitation, error)
	AcceptInvitation(ctx context.Context, tok session.TokenStore, invitationID string) error
	DeclineInvitation(ctx context.Context, tok session.TokenStore, invitationID string) error
	RevokeInvitation(ctx context.Context, tok session.TokenStore, invitationID string) error
}

type Service interface {
	Memberships(ctx context.Context, tok session.TokenStore) ([]models.GroupMembership, error)
	Invite(ctx context.Context, tok session.TokenStore, groupID, invitee string) (*models.Invitation, error)
	GroupInvitations(ctx context.Context, tok session.TokenStore, groupID string) ([]models.Invitation, error)
	PendingInvitations(ctx context.Context, tok session.TokenStore) ([]models.Invitation, error)
	Accept(ctx context.Context, tok session.TokenStore, invitationID string) error
	Decline(ctx context.Context, tok session.TokenStore, invitationID string) error
	Revoke(ctx context.Context, tok session.TokenStore, invitationID string) error
}

// ServiceImpl provides the implementation for Service.
type ServiceImpl struct {
	logger   *zap.Logger
	upstream UpstreamAPI
}

func NewService(upstream UpstreamAPI, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, upstream: upstream}
}

func (s *ServiceImpl) Memberships(ctx context.Context, tok session.TokenStore) ([]models.GroupMembership, error) {
	return s.upstream.MyGroups(ctx, tok)
}

// Invite sends a group invitation. The backend enforces that only group
// admins may invite; the service only rejects obviously empty input before
// spending a round trip.
func (s *ServiceImpl) Invite(ctx context.Context, tok session.TokenStore, groupID, invitee string) (*models.Invitation, error) {
	l := s.logger.With(zap.String("method", "Invite"), zap.String("groupID", groupID))

	invitee = strings.TrimSpace(invitee)
	if invitee == "" {
		return nil, &models.ValidationError{Detail: "Invitee username is required."}
	}

	inv, err := s.upstream.SendInvitation(ctx, tok, groupID, invitee)
	if err != nil {
		l.Warn("SendInvitation failed", zap.String("invitee", invitee), zap.Error(err))
		return nil, err
	}

	l.Info("Invitation sent", zap.String("invitationID", inv.ID), zap.String("invitee", invitee))
	return inv, nil
}

func (s *ServiceImpl) GroupInvitations(ctx context.Context, tok session.TokenStore, groupID string) ([]models.Invitation, error) {
	return s.upstream.GroupInvitations(ctx, tok, groupID)
}

func (s *ServiceImpl) PendingInvitations(ctx context.Context, tok session.TokenStore) ([]models.Invitation, error) {
	return s.upstream.PendingInvitations(ctx, tok)
}

func (s *ServiceImpl) Accept(ctx context.Context, tok session.TokenStore, invitationID string) error {
	err := s.upstream.AcceptInvitation(ctx, tok, invitationID)
	if err == nil {
		s.logger.Info("Invitation accepted", zap.String("invitationID", invitationID))
	}
	return err
}

func (s *ServiceImpl) Decline(ctx context.Context, tok session.TokenStore, invitationID string) error {
	err := s.upstream.DeclineInvitation(ctx, tok, invitationID)
	if err == nil {
		s.logger.Info("Invitation declined", zap.String("invitationID", invitationID))
	}
	return err
}

func (s *ServiceImpl) Revoke(ctx context.Context, tok session.TokenStore, invitationID string) error {
	err := s.upstream.RevokeInvitation(ctx, tok, invitationID)
	if err == nil {
		s.logger.Info("Invitation revoked", zap.String("invitationID", invitationID))
	}
	return err
}
