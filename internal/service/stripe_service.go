package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"clipper/internal/cache"
	"clipper/internal/model"
	"clipper/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// BillingService is the HTTP-facing side of credit purchases.
type BillingService interface {
	CreateCheckoutSession(ctx context.Context, userID, packName string) (string, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookOutcome, error)
}

// StripeService sells credit packs and applies Stripe checkout webhooks.
type StripeService struct {
	gateway       StripeGateway
	catalog       *CreditCatalog
	users         repository.UserRepository
	credits       repository.CreditRepository
	cache         cache.DashboardCache
	webhookSecret string
	appBaseURL    string
	logger        zerolog.Logger
}

func NewStripeService(
	gateway StripeGateway,
	catalog *CreditCatalog,
	users repository.UserRepository,
	credits repository.CreditRepository,
	dashboardCache cache.DashboardCache,
	webhookSecret string,
	appBaseURL string,
	logger zerolog.Logger,
) *StripeService {
	return &StripeService{
		gateway:       gateway,
		catalog:       catalog,
		users:         users,
		credits:       credits,
		cache:         dashboardCache,
		webhookSecret: webhookSecret,
		appBaseURL:    strings.TrimRight(appBaseURL, "/"),
		logger:        logger.With().Str("service", "StripeService").Logger(),
	}
}

// WebhookOutcome summarizes a processed webhook delivery.
type WebhookOutcome struct {
	EventID      string
	EventType    string
	Ignored      bool
	Duplicate    bool
	UserID       string
	CreditsAdded int
	Balance      int
}

// HandleWebhook verifies a raw webhook delivery and credits the buyer for a
// completed checkout. Other event types are acknowledged without action.
// Redelivery of an already applied event returns Duplicate=true and leaves
// the balance unchanged.
func (s *StripeService) HandleWebhook(ctx context.Context, payload []byte, signature string) (*WebhookOutcome, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		s.logger.Error().Err(err).Bool("signature_present", signature != "").Msg("Signature verification failed for Stripe webhook")
		return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}
	out := &WebhookOutcome{EventID: event.ID, EventType: string(event.Type)}
	s.logger.Info().Str("event_id", event.ID).Str("event_type", out.EventType).Msg("Stripe webhook received")

	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		s.logger.Debug().Str("event_type", out.EventType).Msg("Ignored webhook event type")
		out.Ignored = true
		return out, nil
	}
	if event.Data == nil || len(event.Data.Raw) == 0 {
		return nil, fmt.Errorf("%w: event %s has no data", ErrMalformedPayload, event.ID)
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		s.logger.Error().Err(err).Str("event_id", event.ID).Msg("Invalid checkout.session data")
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if cs.ID == "" {
		return nil, fmt.Errorf("%w: checkout session id missing", ErrMalformedPayload)
	}
	if cs.Customer == nil || cs.Customer.ID == "" {
		s.logger.Error().Str("checkout_session_id", cs.ID).Msg("Checkout session has no customer")
		return nil, fmt.Errorf("%w: checkout session %s has no customer", ErrMalformedPayload, cs.ID)
	}
	customerID := cs.Customer.ID

	// The event payload does not carry line items; fetch them.
	full, err := s.gateway.GetCheckoutSessionWithLineItems(ctx, cs.ID)
	if err != nil {
		s.logger.Error().Err(err).Str("checkout_session_id", cs.ID).Msg("Failed to retrieve checkout session line items")
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}
	if full.LineItems == nil || len(full.LineItems.Data) == 0 {
		s.logger.Error().Str("checkout_session_id", cs.ID).Msg("No line items found in session")
		return nil, fmt.Errorf("%w: checkout session %s has no line items", ErrMalformedPayload, cs.ID)
	}
	item := full.LineItems.Data[0]
	if item.Price == nil || item.Price.ID == "" {
		s.logger.Error().Str("checkout_session_id", cs.ID).Msg("No price ID found in line items")
		return nil, fmt.Errorf("%w: line item has no price", ErrMalformedPayload)
	}
	priceID := item.Price.ID

	pack, err := s.catalog.ByPriceID(priceID)
	if err != nil {
		s.logger.Error().Str("price_id", priceID).Str("checkout_session_id", cs.ID).Msg("Unknown price ID in checkout session")
		return nil, err
	}

	grant := &model.CreditGrant{
		EventID:           event.ID,
		EventType:         string(event.Type),
		CheckoutSessionID: cs.ID,
		CustomerID:        customerID,
		PriceID:           priceID,
		Credits:           pack.Credits,
	}
	res, err := s.credits.GrantCheckoutCredits(ctx, grant)
	if err != nil {
		s.logger.Error().Err(err).Str("event_id", event.ID).Str("stripe_customer_id", customerID).Msg("Failed to apply credit grant")
		return nil, fmt.Errorf("failed to apply credit grant: %w", err)
	}
	if res == nil {
		s.logger.Error().Str("stripe_customer_id", customerID).Msg("User not found for Stripe customer ID")
		return nil, fmt.Errorf("%w: stripe customer %s", ErrUserNotFound, customerID)
	}

	out.UserID = res.UserID
	out.Balance = res.Balance
	if !res.Applied {
		out.Duplicate = true
		s.logger.Info().Str("event_id", event.ID).Str("user_id", res.UserID).Msg("Checkout already credited, skipping duplicate delivery")
		return out, nil
	}
	out.CreditsAdded = pack.Credits

	if err := s.cache.Invalidate(ctx, res.UserID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", res.UserID).Msg("Failed to invalidate dashboard cache")
	}
	s.logger.Info().
		Str("event_id", event.ID).
		Str("user_id", res.UserID).
		Str("pack", pack.Name).
		Int("credits_added", pack.Credits).
		Int("balance", res.Balance).
		Msg("Credits added for checkout")
	return out, nil
}

// GetOrCreateCustomer returns the user's Stripe customer, creating and
// storing one on first purchase.
func (s *StripeService) GetOrCreateCustomer(ctx context.Context, user *model.User) (string, error) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}
	params := &stripe.CustomerParams{
		Email:    stripe.String(user.Email),
		Metadata: map[string]string{"user_id": user.ID},
	}
	if user.Name != "" {
		params.Name = stripe.String(user.Name)
	}
	cust, err := s.gateway.CreateCustomer(ctx, params)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to create Stripe customer")
		return "", fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}
	if err := s.users.UpdateStripeCustomerID(ctx, user.ID, cust.ID); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("Failed to store stripe customer id")
		return "", fmt.Errorf("store stripe customer id: %w", err)
	}
	return cust.ID, nil
}

// CreateCheckoutSession starts a one-time payment for a credit pack and
// returns the hosted checkout URL.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, userID, packName string) (string, error) {
	if userID == "" {
		return "", ErrUnauthorized
	}
	pack, err := s.catalog.ByName(packName)
	if err != nil {
		return "", err
	}
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch user for checkout session")
		return "", fmt.Errorf("fetch user: %w", err)
	}
	if user == nil {
		return "", fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	customerID, err := s.GetOrCreateCustomer(ctx, user)
	if err != nil {
		return "", err
	}

	params := &stripe.CheckoutSessionParams{
		Customer:          stripe.String(customerID),
		LineItems:         []*stripe.CheckoutSessionLineItemParams{{Price: stripe.String(pack.PriceID), Quantity: stripe.Int64(1)}},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.appBaseURL + "/dashboard?success=true"),
		CancelURL:         stripe.String(s.appBaseURL + "/dashboard/billing"),
		ClientReferenceID: stripe.String(userID),
		Metadata:          map[string]string{"user_id": userID, "pack": pack.Name},
	}
	sess, err := s.gateway.CreateCheckoutSession(ctx, params)
	if err != nil {
		s.logger.Error().Err(err).Str("pack", pack.Name).Msg("Failed to create Stripe checkout session")
		return "", fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}
	return sess.URL, nil
}
