package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clipper/internal/model"
)

// CreditRepository records Stripe credit purchases.
type CreditRepository interface {
	// GrantCheckoutCredits records the grant and increments the buyer's
	// balance in one transaction. A grant whose event or checkout session is
	// already recorded leaves the balance untouched and returns Applied=false.
	// It returns nil when no user owns grant.CustomerID.
	GrantCheckoutCredits(ctx context.Context, grant *model.CreditGrant) (*model.CreditGrantResult, error)
}

type creditRepo struct {
	db *sql.DB
}

func NewCreditRepo(db *sql.DB) CreditRepository {
	return &creditRepo{db: db}
}

func (r *creditRepo) GrantCheckoutCredits(ctx context.Context, grant *model.CreditGrant) (*model.CreditGrantResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var userID string
	var balance int
	err = tx.QueryRowContext(ctx,
		`SELECT id, credits FROM users WHERE stripe_customer_id = $1 FOR UPDATE`,
		grant.CustomerID,
	).Scan(&userID, &balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO stripe_webhook_events
			(event_id, event_type, checkout_session_id, stripe_customer_id, price_id, credits, user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT DO NOTHING
	`, grant.EventID, grant.EventType, grant.CheckoutSessionID, grant.CustomerID, grant.PriceID, grant.Credits, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to record webhook event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read insert result: %w", err)
	}
	if n == 0 {
		return &model.CreditGrantResult{UserID: userID, Applied: false, Balance: balance}, nil
	}

	if err := tx.QueryRowContext(ctx,
		`UPDATE users SET credits = credits + $1, updated_at = NOW() WHERE id = $2 RETURNING credits`,
		grant.Credits, userID,
	).Scan(&balance); err != nil {
		return nil, fmt.Errorf("failed to increment credits: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit credit grant: %w", err)
	}
	grant.UserID = userID
	return &model.CreditGrantResult{UserID: userID, Applied: true, Balance: balance}, nil
}
