package service

import (
	"context"
	"time"

	"clipper/internal/queue"
)

// ObjectStore is the slice of the object storage service used by clips and uploads.
type ObjectStore interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	PresignPut(ctx context.Context, key, contentType string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// JobQueue accepts process-video jobs for the external clip pipeline.
type JobQueue interface {
	EnqueueProcessVideo(ctx context.Context, ev queue.ProcessVideoEvent) (string, error)
}
