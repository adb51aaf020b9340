// Package payouts handles creator payout onboarding through Stripe Connect
// Express: account creation, the hosted onboarding flow, payout status and
// the Express Dashboard login link.
package payouts

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v83"
	"go.uber.org/zap"

	"github.com/mxchestnut/workshelf-sub001/internal/app/models"
	"github.com/mxchestnut/workshelf-sub001/internal/pkg/config"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// PaymentProvider is the payment backend contract. Stripe is the only
// implementation in production; tests substitute a mock.
type PaymentProvider interface {
	CreateConnectedAccount(userID, email, country string) (string, error)
	CreateAccountLink(accountID, returnURL, refreshURL string) (string, error)
	GetConnectedAccount(accountID string) (*stripe.Account, error)
	CreateLoginLink(accountID string) (string, error)
}

type Service interface {
	Enabled() bool
	Onboard(ctx context.Context, user *models.UserAccount, country string) (*models.PayoutAccount, error)
	Status(ctx context.Context, accountID string) (*models.PayoutAccount, error)
	DashboardLink(ctx context.Context, accountID string) (string, error)
}

// ServiceImpl provides the implementation for Service.
type ServiceImpl struct {
	logger   *zap.Logger
	provider PaymentProvider
	cfg      config.StripeConfig
}

// NewService builds the payout service. A nil provider (no Stripe key
// configured) disables payouts; handlers answer 503 instead of panicking.
func NewService(provider PaymentProvider, cfg config.StripeConfig, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, provider: provider, cfg: cfg}
}

func (s *ServiceImpl) Enabled() bool {
	return s.provider != nil
}

// Onboard creates a connected account for the user and returns the hosted
// onboarding URL to redirect them to.
func (s *ServiceImpl) Onboard(ctx context.Context, user *models.UserAccount, country string) (*models.PayoutAccount, error) {
	l := s.logger.With(zap.String("method", "Onboard"), zap.String("userID", user.ID))

	if !s.Enabled() {
		return nil, fmt.Errorf("payouts disabled: %w", models.ErrUnavailable)
	}

	accountID, err := s.provider.CreateConnectedAccount(user.ID, user.Email, country)
	if err != nil {
		l.Error("CreateConnectedAccount failed", zap.Error(err))
		return nil, fmt.Errorf("creating payout account: %w", models.ErrUnavailable)
	}

	onboardingURL, err := s.onboardingLink(accountID)
	if err != nil {
		l.Error("CreateAccountLink failed", zap.String("accountID", accountID), zap.Error(err))
		return nil, fmt.Errorf("creating onboarding link: %w", models.ErrUnavailable)
	}

	l.Info("Payout onboarding started", zap.String("accountID", accountID))
	return &models.PayoutAccount{
		AccountID:     accountID,
		PayoutPercent: s.cfg.PayoutPercent,
		OnboardingURL: onboardingURL,
	}, nil
}

// Status reports whether the connected account can take charges and receive
// payouts. An account that has not finished onboarding gets a fresh
// onboarding link so the user can resume.
func (s *ServiceImpl) Status(ctx context.Context, accountID string) (*models.PayoutAccount, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("payouts disabled: %w", models.ErrUnavailable)
	}
	if accountID == "" {
		return nil, &models.ValidationError{Detail: "Payout account id is required."}
	}

	acct, err := s.provider.GetConnectedAccount(accountID)
	if err != nil {
		s.logger.Warn("GetConnectedAccount failed", zap.String("accountID", accountID), zap.Error(err))
		return nil, fmt.Errorf("fetching payout account: %w", models.ErrUnavailable)
	}

	out := &models.PayoutAccount{
		AccountID:      acct.ID,
		ChargesEnabled: acct.ChargesEnabled,
		PayoutsEnabled: acct.PayoutsEnabled,
		PayoutPercent:  s.cfg.PayoutPercent,
	}

	if !acct.DetailsSubmitted {
		link, err := s.onboardingLink(acct.ID)
		if err != nil {
			s.logger.Warn("Resume onboarding link failed", zap.String("accountID", acct.ID), zap.Error(err))
		} else {
			out.OnboardingURL = link
		}
	}

	return out, nil
}

// DashboardLink returns a one-time Express Dashboard login URL.
func (s *ServiceImpl) DashboardLink(ctx context.Context, accountID string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("payouts disabled: %w", models.ErrUnavailable)
	}
	if accountID == "" {
		return "", &models.ValidationError{Detail: "Payout account id is required."}
	}

	link, err := s.provider.CreateLoginLink(accountID)
	if err != nil {
		s.logger.Warn("CreateLoginLink failed", zap.String("accountID", accountID), zap.Error(err))
		return "", fmt.Errorf("creating dashboard link: %w", models.ErrUnavailable)
	}
	return link, nil
}

func (s *ServiceImpl) onboardingLink(accountID string) (string, error) {
	return s.provider.CreateAccountLink(
		accountID,
		s.cfg.OnboardingBaseURL+"/payouts/return",
		s.cfg.OnboardingBaseURL+"/payouts/refresh",
	)
}
