package service

import (
	"context"
	"fmt"
	"time"

	"clipper/internal/cache"
	"clipper/internal/repository"

	"github.com/rs/zerolog"
)

// ClipService serves playback URLs for clips and deletes them.
type ClipService interface {
	GetPlaybackURL(ctx context.Context, clipID, userID string) (string, error)
	DeleteClip(ctx context.Context, clipID, userID string) (*ClipDeletion, error)
}

// ClipDeletion reports both phases of a delete. The record delete is the
// primary phase; the object delete is best-effort and its failure does not
// fail the operation.
type ClipDeletion struct {
	RecordDeleted       bool
	ObjectDeleted       bool
	ObjectErr           error
	UploadedFileDeleted bool
}

type clipService struct {
	clips       repository.ClipRepository
	files       repository.UploadedFileRepository
	store       ObjectStore
	cache       cache.DashboardCache
	playbackTTL time.Duration
	logger      zerolog.Logger
}

func NewClipService(
	clips repository.ClipRepository,
	files repository.UploadedFileRepository,
	store ObjectStore,
	dashboardCache cache.DashboardCache,
	playbackTTL time.Duration,
	logger zerolog.Logger,
) ClipService {
	return &clipService{
		clips:       clips,
		files:       files,
		store:       store,
		cache:       dashboardCache,
		playbackTTL: playbackTTL,
		logger:      logger.With().Str("service", "ClipService").Logger(),
	}
}

// GetPlaybackURL returns a signed GET URL for the caller's clip.
func (s *clipService) GetPlaybackURL(ctx context.Context, clipID, userID string) (string, error) {
	if userID == "" {
		return "", ErrUnauthorized
	}
	clip, err := s.clips.GetClipForUser(ctx, clipID, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("clip_id", clipID).Msg("Failed to load clip for playback")
		return "", fmt.Errorf("%w: load clip: %v", ErrUpstreamFailure, err)
	}
	if clip == nil {
		return "", fmt.Errorf("%w: clip %s", ErrNotFound, clipID)
	}

	url, err := s.store.PresignGet(ctx, clip.S3Key, s.playbackTTL)
	if err != nil {
		s.logger.Error().Err(err).Str("clip_id", clipID).Str("s3_key", clip.S3Key).Msg("Failed to presign clip playback URL")
		return "", fmt.Errorf("%w: %v", ErrPresignFailed, err)
	}
	return url, nil
}

// DeleteClip removes the clip's object (best-effort) and record, then drops
// the source upload once no clips reference it.
func (s *clipService) DeleteClip(ctx context.Context, clipID, userID string) (*ClipDeletion, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	clip, err := s.clips.GetClipForUser(ctx, clipID, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("clip_id", clipID).Msg("Failed to load clip for deletion")
		return nil, fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	if clip == nil {
		return nil, fmt.Errorf("%w: clip %s", ErrNotFound, clipID)
	}

	result := &ClipDeletion{}
	if err := s.store.Delete(ctx, clip.S3Key); err != nil {
		s.logger.Warn().Err(err).Str("clip_id", clipID).Str("s3_key", clip.S3Key).Msg("Failed to delete clip object, continuing with database deletion")
		result.ObjectErr = err
	} else {
		result.ObjectDeleted = true
	}

	deleted, err := s.clips.DeleteClipForUser(ctx, clipID, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("clip_id", clipID).Msg("Failed to delete clip record")
		return nil, fmt.Errorf("%w: %v", ErrDeleteFailed, err)
	}
	if !deleted {
		// Removed by a concurrent request between lookup and delete.
		return nil, fmt.Errorf("%w: clip %s", ErrNotFound, clipID)
	}
	result.RecordDeleted = true

	if clip.UploadedFileID != nil {
		fileID := *clip.UploadedFileID
		remaining, err := s.clips.CountClipsByUploadedFile(ctx, fileID, userID)
		if err != nil {
			s.logger.Error().Err(err).Str("uploaded_file_id", fileID).Msg("Failed to count remaining clips")
			return nil, fmt.Errorf("%w: %v", ErrDeleteFailed, err)
		}
		if remaining == 0 {
			removed, err := s.files.DeleteUploadedFileIfNoClips(ctx, fileID, userID)
			if err != nil {
				s.logger.Error().Err(err).Str("uploaded_file_id", fileID).Msg("Failed to delete uploaded file with no remaining clips")
				return nil, fmt.Errorf("%w: %v", ErrDeleteFailed, err)
			}
			result.UploadedFileDeleted = removed
			if removed {
				s.logger.Info().Str("uploaded_file_id", fileID).Msg("Deleted uploaded file record as no clips remain")
			}
		}
	}

	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to invalidate dashboard cache")
	}
	return result, nil
}
