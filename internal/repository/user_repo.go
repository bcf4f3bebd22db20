package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clipper/internal/model"
)

type UserRepository interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdateStripeCustomerID(ctx context.Context, userID, customerID string) error
	AddCredits(ctx context.Context, userID string, amount int) (*model.User, error)
}

type userRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) UserRepository {
	return &userRepo{db: db}
}

const userColumns = `id, email, name, credits, stripe_customer_id, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Credits, &u.StripeCustomerID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	u, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *userRepo) UpdateStripeCustomerID(ctx context.Context, userID, customerID string) error {
	query := `UPDATE users SET stripe_customer_id = $1, updated_at = NOW() WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, customerID, userID); err != nil {
		return fmt.Errorf("failed to update stripe customer id: %w", err)
	}
	return nil
}

// AddCredits increments the balance by amount and returns the updated user,
// or nil if the user does not exist. A negative amount that would take the
// balance below zero is rejected by the credits check constraint.
func (r *userRepo) AddCredits(ctx context.Context, userID string, amount int) (*model.User, error) {
	query := `
		UPDATE users
		SET credits = credits + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + userColumns
	u, err := scanUser(r.db.QueryRowContext(ctx, query, amount, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to add credits: %w", err)
	}
	return u, nil
}
