package service

import (
	"context"
	"fmt"
	"time"

	"clipper/internal/cache"
	"clipper/internal/queue"
	"clipper/internal/repository"

	"github.com/rs/zerolog"
)

// ProcessingService hands uploaded files to the clip pipeline.
type ProcessingService interface {
	Submit(ctx context.Context, userID, uploadedFileID string) (*SubmitResult, error)
}

// SubmitResult describes what a Submit call did. Enqueued is false when the
// file was already queued or another submission holds the claim.
type SubmitResult struct {
	Enqueued  bool
	MessageID string
}

type processingService struct {
	files  repository.UploadedFileRepository
	queue  JobQueue
	cache  cache.DashboardCache
	lease  time.Duration
	logger zerolog.Logger
}

func NewProcessingService(
	files repository.UploadedFileRepository,
	jobQueue JobQueue,
	dashboardCache cache.DashboardCache,
	claimLease time.Duration,
	logger zerolog.Logger,
) ProcessingService {
	return &processingService{
		files:  files,
		queue:  jobQueue,
		cache:  dashboardCache,
		lease:  claimLease,
		logger: logger.With().Str("service", "ProcessingService").Logger(),
	}
}

// Submit enqueues a process-video job for the file and then marks it queued.
// The job is sent before the flag is set: a crash in between leaves the file
// unmarked with an expiring claim, so a later call re-submits it instead of
// the job being lost.
func (s *processingService) Submit(ctx context.Context, userID, uploadedFileID string) (*SubmitResult, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	file, err := s.files.GetUploadedFileForUser(ctx, uploadedFileID, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("uploaded_file_id", uploadedFileID).Msg("Failed to load uploaded file for submission")
		return nil, fmt.Errorf("failed to load uploaded file: %w", err)
	}
	if file == nil {
		return nil, fmt.Errorf("%w: uploaded file %s", ErrNotFound, uploadedFileID)
	}
	if file.Uploaded {
		s.logger.Debug().Str("uploaded_file_id", uploadedFileID).Msg("Uploaded file already queued, skipping")
		return &SubmitResult{}, nil
	}

	claimed, err := s.files.ClaimForSubmission(ctx, file.ID, s.lease)
	if err != nil {
		s.logger.Error().Err(err).Str("uploaded_file_id", file.ID).Msg("Failed to claim uploaded file for submission")
		return nil, fmt.Errorf("failed to claim uploaded file: %w", err)
	}
	if !claimed {
		s.logger.Info().Str("uploaded_file_id", file.ID).Msg("Submission already in flight or completed, skipping")
		return &SubmitResult{}, nil
	}

	msgID, err := s.queue.EnqueueProcessVideo(ctx, queue.ProcessVideoEvent{
		UploadedFileID: file.ID,
		UserID:         file.UserID,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("uploaded_file_id", file.ID).Msg("Failed to enqueue process-video job")
		if relErr := s.files.ReleaseSubmissionClaim(ctx, file.ID); relErr != nil {
			s.logger.Error().Err(relErr).Str("uploaded_file_id", file.ID).Msg("Failed to release submission claim")
		}
		return nil, fmt.Errorf("%w: enqueue process-video job: %v", ErrUpstreamFailure, err)
	}

	if err := s.files.MarkQueued(ctx, file.ID); err != nil {
		// The job is out; the claim stays until it expires.
		s.logger.Error().Err(err).Str("uploaded_file_id", file.ID).Str("message_id", msgID).Msg("Job enqueued but failed to mark uploaded file queued")
		return nil, fmt.Errorf("failed to mark uploaded file queued: %w", err)
	}

	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to invalidate dashboard cache")
	}

	s.logger.Info().
		Str("uploaded_file_id", file.ID).
		Str("user_id", file.UserID).
		Str("message_id", msgID).
		Msg("Process-video job submitted")
	return &SubmitResult{Enqueued: true, MessageID: msgID}, nil
}
