package queue

import (
	"context"
	"database/sql"
	"fmt"

	"clipper/internal/config"
	"clipper/internal/pgmq"
	"clipper/internal/pubsub"
)

// Enqueuer is implemented by every queue backend.
type Enqueuer interface {
	EnqueueProcessVideo(ctx context.Context, ev ProcessVideoEvent) (string, error)
}

// Open builds the backend selected by JOB_QUEUE_BACKEND. The returned
// close func releases backend connections.
func Open(ctx context.Context, cfg *config.Config, db *sql.DB) (Enqueuer, func() error, error) {
	switch cfg.JobQueueBackend {
	case "pgmq":
		client := pgmq.New(db)
		if err := client.CreateQueue(ctx, cfg.PGMQProcessVideoQueue); err != nil {
			return nil, nil, fmt.Errorf("failed to create pgmq queue: %w", err)
		}
		return NewPGMQQueue(client, cfg.PGMQProcessVideoQueue), func() error { return nil }, nil
	case "pubsub", "":
		publisher, err := pubsub.NewPublisher(ctx, cfg.GCPProjectID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Pub/Sub publisher: %w", err)
		}
		return NewPubSubQueue(publisher, cfg.PubSubProcessVideoTopic), publisher.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown JOB_QUEUE_BACKEND %q", cfg.JobQueueBackend)
	}
}
