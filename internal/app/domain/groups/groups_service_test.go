package groups

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mxchestnut/workshelf-sub001/internal/app/domain/session"
	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
)

// MockUpstream is a mock implementation of the UpstreamAPI interface
type MockUpstream struct {
	mock.Mock
}

func (m *MockUpstream) MyGroups(ctx context.Context, tok session.TokenStore) ([]models.GroupMembership, error) {
	args := m.Called(ctx, tok)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GroupMembership), args.Error(1)
}

func (m *MockUpstream) SendInvitation(ctx context.Context, tok session.TokenStore, groupID, invitee string) (*models.Invitation, error) {
	args := m.Called(ctx, tok, groupID, invitee)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invitation), args.Error(1)
}

func (m *MockUpstream) GroupInvitations(ctx context.Context, tok session.TokenStore, groupID string) ([]models.Invitation, error) {
	args := m.Called(ctx, tok, groupID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invitation), args.Error(1)
}

func (m *MockUpstream) PendingInvitations(ctx context.Context, tok session.TokenStore) ([]models.Invitation, error) {
	args := m.Called(ctx, tok)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invitation), args.Error(1)
}

func (m *MockUpstream) AcceptInvitation(ctx context.Context, tok session.TokenStore, invitationID string) error {
	return m.Called(ctx, tok, invitationID).Error(0)
}

func (m *MockUpstream) DeclineInvitation(ctx context.Context, tok session.TokenStore, invitationID string) error {
	return m.Called(ctx, tok, invitationID).Error(0)
}

func (m *MockUpstream) RevokeInvitation(ctx context.Context, tok session.TokenStore, invitationID string) error {
	return m.Called(ctx, tok, invitationID).Error(0)
}

func TestInvite(t *testing.T) {
	ctx := context.Background()
	tok := session.NewStore("t", "r")

	t.Run("empty invitee rejected without a round trip", func(t *testing.T) {
		upstream := new(MockUpstream)
		svc := NewService(upstream, zap.NewNop())

		_, err := svc.Invite(ctx, tok, "g1", "   ")
		_, ok := models.AsValidation(err)
		assert.True(t, ok)
		upstream.AssertNotCalled(t, "SendInvitation")
	})

	t.Run("invitee is trimmed before sending", func(t *testing.T) {
		upstream := new(MockUpstream)
		svc := NewService(upstream, zap.NewNop())

		want := &models.Invitation{ID: "inv1", GroupID: "g1", Invitee: "friend", State: models.InvitationPending}
		upstream.On("SendInvitation", ctx, tok, "g1", "friend").Return(want, nil)

		inv, err := svc.Invite(ctx, tok, "g1", "  friend  ")
		require.NoError(t, err)
		assert.Equal(t, models.InvitationPending, inv.State)
		upstream.AssertExpectations(t)
	})

	t.Run("non-admin gets forbidden from the backend", func(t *testing.T) {
		upstream := new(MockUpstream)
		svc := NewService(upstream, zap.NewNop())

		upstream.On("SendInvitation", ctx, tok, "g1", "friend").
			Return(nil, fmt.Errorf("POST /groups/g1/invitations: %w", models.ErrForbidden))

		_, err := svc.Invite(ctx, tok, "g1", "friend")
		assert.ErrorIs(t, err, models.ErrForbidden)
	})
}

func TestInvitationLifecycle(t *testing.T) {
	ctx := context.Background()
	tok := session.NewStore("t", "r")

	upstream := new(MockUpstream)
	svc := NewService(upstream, zap.NewNop())

	upstream.On("AcceptInvitation", ctx, tok, "inv1").Return(nil)
	upstream.On("DeclineInvitation", ctx, tok, "inv2").Return(nil)
	upstream.On("RevokeInvitation", ctx, tok, "inv3").Return(nil)

	require.NoError(t, svc.Accept(ctx, tok, "inv1"))
	require.NoError(t, svc.Decline(ctx, tok, "inv2"))
	require.NoError(t, svc.Revoke(ctx, tok, "inv3"))
	upstream.AssertExpectations(t)
}

func TestMemberships(t *testing.T) {
	ctx := context.Background()
	tok := session.NewStore("t", "r")

	upstream := new(MockUpstream)
	svc := NewService(upstream, zap.NewNop())

	upstream.On("MyGroups", ctx, tok).Return([]models.GroupMembership{
		{GroupID: "g1", GroupName: "Poetry Circle", Role: "admin"},
		{GroupID: "g2", GroupName: "Novel Swap", Role: "member"},
	}, nil)

	groups, err := svc.Memberships(ctx, tok)
	require.NoError(t, err)
	assert.Len(t, groups, 2)
}
