package payouts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83"
	"go.uber.org/zap"

	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
	"github.com/mxchestnut/workshelf-sub001/internal/pkg/config"
)

// MockProvider is a mock implementation of the PaymentProvider interface
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) CreateConnectedAccount(userID, email, country string) (string, error) {
	args := m.Called(userID, email, country)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) CreateAccountLink(accountID, returnURL, refreshURL string) (string, error) {
	args := m.Called(accountID, returnURL, refreshURL)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) GetConnectedAccount(accountID string) (*stripe.Account, error) {
	args := m.Called(accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.Account), args.Error(1)
}

func (m *MockProvider) CreateLoginLink(accountID string) (string, error) {
	args := m.Called(accountID)
	return args.String(0), args.Error(1)
}

var testCfg = config.StripeConfig{
	PayoutPercent:     90,
	OnboardingBaseURL: "https://workshelf.example.com",
}

func TestOnboard(t *testing.T) {
	ctx := context.Background()
	user := &models.UserAccount{ID: "u1", Email: "writer@example.com"}

	t.Run("creates account and onboarding link", func(t *testing.T) {
		provider := new(MockProvider)
		svc := NewService(provider, testCfg, zap.NewNop())

		provider.On("CreateConnectedAccount", "u1", "writer@example.com", "PT").Return("acct_1", nil)
		provider.On("CreateAccountLink", "acct_1",
			"https://workshelf.example.com/payouts/return",
			"https://workshelf.example.com/payouts/refresh").Return("https://connect.stripe.com/setup/x", nil)

		acct, err := svc.Onboard(ctx, user, "PT")
		require.NoError(t, err)
		assert.Equal(t, "acct_1", acct.AccountID)
		assert.Equal(t, "https://connect.stripe.com/setup/x", acct.OnboardingURL)
		assert.Equal(t, 90.0, acct.PayoutPercent)
		provider.AssertExpectations(t)
	})

	t.Run("disabled without a provider", func(t *testing.T) {
		svc := NewService(nil, testCfg, zap.NewNop())
		_, err := svc.Onboard(ctx, user, "")
		assert.ErrorIs(t, err, models.ErrUnavailable)
	})
}

func TestStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("fully onboarded account", func(t *testing.T) {
		provider := new(MockProvider)
		svc := NewService(provider, testCfg, zap.NewNop())

		provider.On("GetConnectedAccount", "acct_1").Return(&stripe.Account{
			ID:               "acct_1",
			ChargesEnabled:   true,
			PayoutsEnabled:   true,
			DetailsSubmitted: true,
		}, nil)

		acct, err := svc.Status(ctx, "acct_1")
		require.NoError(t, err)
		assert.True(t, acct.PayoutsEnabled)
		assert.Equal(t, 90.0, acct.PayoutPercent)
		assert.Empty(t, acct.OnboardingURL)
	})

	t.Run("unfinished onboarding gets a resume link", func(t *testing.T) {
		provider := new(MockProvider)
		svc := NewService(provider, testCfg, zap.NewNop())

		provider.On("GetConnectedAccount", "acct_2").Return(&stripe.Account{ID: "acct_2"}, nil)
		provider.On("CreateAccountLink", "acct_2", mock.Anything, mock.Anything).
			Return("https://connect.stripe.com/setup/resume", nil)

		acct, err := svc.Status(ctx, "acct_2")
		require.NoError(t, err)
		assert.False(t, acct.PayoutsEnabled)
		assert.Equal(t, "https://connect.stripe.com/setup/resume", acct.OnboardingURL)
	})

	t.Run("missing account id is a validation error", func(t *testing.T) {
		svc := NewService(new(MockProvider), testCfg, zap.NewNop())
		_, err := svc.Status(ctx, "")
		_, ok := models.AsValidation(err)
		assert.True(t, ok)
	})
}

func TestDashboardLink(t *testing.T) {
	provider := new(MockProvider)
	svc := NewService(provider, testCfg, zap.NewNop())

	provider.On("CreateLoginLink", "acct_1").Return("https://connect.stripe.com/express/login", nil)

	link, err := svc.DashboardLink(context.Background(), "acct_1")
	require.NoError(t, err)
	assert.Equal(t, "https://connect.stripe.com/express/login", link)
}
