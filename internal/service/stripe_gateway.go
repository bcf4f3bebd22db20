package service

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	customerpkg "github.com/stripe/stripe-go/v82/customer"
)

// StripeGateway is the subset of the Stripe API the billing flow calls.
type StripeGateway interface {
	GetCheckoutSessionWithLineItems(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error)
	CreateCustomer(ctx context.Context, params *stripe.CustomerParams) (*stripe.Customer, error)
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type stripeGateway struct{}

// NewStripeGateway sets the global Stripe key used by the stripe-go resource packages.
func NewStripeGateway(secretKey string) StripeGateway {
	stripe.Key = secretKey
	return stripeGateway{}
}

func (stripeGateway) GetCheckoutSessionWithLineItems(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.AddExpand("line_items")
	sess, err := checkoutsession.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("retrieve checkout session %s: %w", sessionID, err)
	}
	return sess, nil
}

func (stripeGateway) CreateCustomer(ctx context.Context, params *stripe.CustomerParams) (*stripe.Customer, error) {
	cust, err := customerpkg.New(params)
	if err != nil {
		return nil, fmt.Errorf("create stripe customer: %w", err)
	}
	return cust, nil
}

func (stripeGateway) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	sess, err := checkoutsession.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return sess, nil
}
