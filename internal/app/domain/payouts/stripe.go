package payouts

import (
	"fmt"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/account"
	"github.com/stripe/stripe-go/v83/accountlink"
	"github.com/stripe/stripe-go/v83/loginlink"
)

// StripeProvider implements the PaymentProvider interface for Stripe
// Connect Express accounts.
type StripeProvider struct {
	apiKey string
}

// NewStripeProvider creates a new Stripe payment provider.
func NewStripeProvider(apiKey string) *StripeProvider {
	stripe.Key = apiKey
	return &StripeProvider{
		apiKey: apiKey,
	}
}

// CreateConnectedAccount creates a Stripe Connect Express account for a creator.
func (s *StripeProvider) CreateConnectedAccount(userID, email, country string) (string, error) {
	if country == "" {
		country = "US" // Default to US
	}

	params := &stripe.AccountParams{
		Type:    stripe.String("express"), // Express accounts are easier for creators
		Email:   stripe.String(email),
		Country: stripe.String(country),
		Capabilities: &stripe.AccountCapabilitiesParams{
			CardPayments: &stripe.AccountCapabilitiesCardPaymentsParams{
				Requested: stripe.Bool(true),
			},
			Transfers: &stripe.AccountCapabilitiesTransfersParams{
				Requested: stripe.Bool(true),
			},
		},
		Metadata: map[string]string{
			"user_id": userID,
		},
	}

	acct, err := account.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create connected account: %w", err)
	}

	return acct.ID, nil
}

// CreateAccountLink creates an onboarding link for a connected account.
func (s *StripeProvider) CreateAccountLink(accountID, returnURL, refreshURL string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(refreshURL),
		ReturnURL:  stripe.String(returnURL),
		Type:       stripe.String("account_onboarding"),
	}

	link, err := accountlink.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create account link: %w", err)
	}

	return link.URL, nil
}

// GetConnectedAccount retrieves a Stripe Connect account.
func (s *StripeProvider) GetConnectedAccount(accountID string) (*stripe.Account, error) {
	acct, err := account.GetByID(accountID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get connected account: %w", err)
	}

	return acct, nil
}

// CreateLoginLink creates a Stripe Express Dashboard login link for a connected account.
func (s *StripeProvider) CreateLoginLink(accountID string) (string, error) {
	params := &stripe.LoginLinkParams{
		Account: stripe.String(accountID),
	}

	link, err := loginlink.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create login link: %w", err)
	}

	return link.URL, nil
}
