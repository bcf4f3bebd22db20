package pgmq

import (
	"context"
	"database/sql"
	"fmt"
)

// Client wraps a Postgres DB for pgmq queue operations.
type Client struct {
	db *sql.DB
}

// New returns a new PGMQ client backed by the given DB connection.
func New(db *sql.DB) *Client {
	return &Client{db: db}
}

// CreateQueue creates the queue if it does not exist yet.
func (c *Client) CreateQueue(ctx context.Context, queue string) error {
	if _, err := c.db.ExecContext(ctx, "SELECT pgmq.create($1)", queue); err != nil {
		return fmt.Errorf("pgmq create failed: %w", err)
	}
	return nil
}

// Send pushes a JSON payload into the given queue and returns its message id.
func (c *Client) Send(ctx context.Context, queue string, payload []byte) (int64, error) {
	var id int64
	query := "SELECT pgmq.send($1, $2::jsonb, 0)"
	if err := c.db.QueryRowContext(ctx, query, queue, string(payload)).Scan(&id); err != nil {
		return 0, fmt.Errorf("pgmq send failed: %w", err)
	}
	return id, nil
}
