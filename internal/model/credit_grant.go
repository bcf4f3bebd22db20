package model

import "time"

// CreditGrant is a credit purchase resolved from a Stripe checkout event.
// EventID and CheckoutSessionID are both unique in the ledger, which makes
// redelivered events no-ops.
type CreditGrant struct {
	EventID           string    `db:"event_id"`
	EventType         string    `db:"event_type"`
	CheckoutSessionID string    `db:"checkout_session_id"`
	CustomerID        string    `db:"stripe_customer_id"`
	PriceID           string    `db:"price_id"`
	Credits           int       `db:"credits"`
	UserID            string    `db:"user_id"`
	CreatedAt         time.Time `db:"created_at"`
}

// CreditGrantResult reports what a grant did to the ledger.
type CreditGrantResult struct {
	UserID string
	// Applied is false when the event had already been recorded.
	Applied bool
	Balance int
}
