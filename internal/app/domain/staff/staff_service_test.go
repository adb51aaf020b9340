package staff

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

func (m *MockUpstream) PendingUsers(ctx context.Context, tok session.TokenStore) ([]models.PendingUser, error) {
	args := m.Called(ctx, tok)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PendingUser), args.Error(1)
}

func (m *MockUpstream) ApprovePendingUser(ctx context.Context, tok session.TokenStore, userID string) error {
	return m.Called(ctx, tok, userID).Error(0)
}

func (m *MockUpstream) MyGroups(ctx context.Context, tok session.TokenStore) ([]models.GroupMembership, error) {
	args := m.Called(ctx, tok)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GroupMembership), args.Error(1)
}

func (m *MockUpstream) PendingInvitations(ctx context.Context, tok session.TokenStore) ([]models.Invitation, error) {
	args := m.Called(ctx, tok)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Invitation), args.Error(1)
}

func TestOverview(t *testing.T) {
	tok := session.NewStore("t", "r")

	t.Run("staff sees pending users alongside group data", func(t *testing.T) {
		upstream := new(MockUpstream)
		svc := NewService(upstream, zap.NewNop())

		upstream.On("MyGroups", mock.Anything, tok).Return([]models.GroupMembership{{GroupID: "g1", Role: "admin"}}, nil)
		upstream.On("PendingInvitations", mock.Anything, tok).Return([]models.Invitation{}, nil)
		upstream.On("PendingUsers", mock.Anything, tok).Return([]models.PendingUser{{ID: "u9"}}, nil)

		out, err := svc.Overview(context.Background(), tok, true)
		require.NoError(t, err)
		assert.Len(t, out.PendingUsers, 1)
		assert.Len(t, out.Groups, 1)
		upstream.AssertExpectations(t)
	})

	t.Run("group admin never requests the pending-user list", func(t *testing.T) {
		upstream := new(MockUpstream)
		svc := NewService(upstream, zap.NewNop())

		upstream.On("MyGroups", mock.Anything, tok).Return([]models.GroupMembership{{GroupID: "g1", Role: "admin"}}, nil)
		upstream.On("PendingInvitations", mock.Anything, tok).Return([]models.Invitation{{ID: "inv1"}}, nil)

		out, err := svc.Overview(context.Background(), tok, false)
		require.NoError(t, err)
		assert.Nil(t, out.PendingUsers)
		assert.Len(t, out.PendingInvitations, 1)
		upstream.AssertNotCalled(t, "PendingUsers")
	})

	t.Run("one failing read fails the aggregation", func(t *testing.T) {
		upstream := new(MockUpstream)
		svc := NewService(upstream, zap.NewNop())

		upstream.On("MyGroups", mock.Anything, tok).Return([]models.GroupMembership{}, nil).Maybe()
		upstream.On("PendingInvitations", mock.Anything, tok).
			Return(nil, fmt.Errorf("GET /invitations/pending: %w", models.ErrUnavailable))

		_, err := svc.Overview(context.Background(), tok, false)
		assert.ErrorIs(t, err, models.ErrUnavailable)
	})
}

func TestApproveUser(t *testing.T) {
	tok := session.NewStore("t", "r")
	upstream := new(MockUpstream)
	svc := NewService(upstream, zap.NewNop())

	upstream.On("ApprovePendingUser", mock.Anything, tok, "u9").Return(nil)

	require.NoError(t, svc.ApproveUser(context.Background(), tok, "u9"))
	upstream.AssertExpectations(t)
}
