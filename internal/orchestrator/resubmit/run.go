// Package resubmit retries submissions whose claim expired before the file
// was marked queued, for example after a crash between enqueue and mark.
package resubmit

import (
	"context"
	"time"

	"clipper/internal/repository"
	"clipper/internal/service"

	"github.com/rs/zerolog"
)

const batchSize = 50

// Sweep submits every file with a stale claim once and returns how many
// jobs were enqueued.
func Sweep(ctx context.Context, logger zerolog.Logger, files repository.UploadedFileRepository, processing service.ProcessingService, lease time.Duration) (int, error) {
	stale, err := files.ListStaleClaims(ctx, lease, batchSize)
	if err != nil {
		return 0, err
	}
	enqueued := 0
	for _, f := range stale {
		res, err := processing.Submit(ctx, f.UserID, f.ID)
		if err != nil {
			logger.Error().Err(err).Str("uploaded_file_id", f.ID).Msg("Resubmission failed")
			continue
		}
		if res.Enqueued {
			enqueued++
			logger.Info().Str("uploaded_file_id", f.ID).Str("message_id", res.MessageID).Msg("Resubmitted stale submission")
		}
	}
	return enqueued, nil
}

// Run sweeps every interval until ctx is cancelled.
func Run(ctx context.Context, logger zerolog.Logger, files repository.UploadedFileRepository, processing service.ProcessingService, lease, interval time.Duration) error {
	logger.Info().Dur("interval", interval).Msg("Starting resubmit orchestrator")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Shutting down resubmit orchestrator")
			return nil
		default:
		}

		if _, err := Sweep(ctx, logger, files, processing, lease); err != nil {
			logger.Error().Err(err).Msg("Error listing stale submissions")
		}

		select {
		case <-ctx.Done():
			logger.Info().Msg("Shutting down resubmit orchestrator")
			return nil
		case <-ticker.C:
		}
	}
}
