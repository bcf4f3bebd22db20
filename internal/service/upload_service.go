package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"clipper/internal/cache"
	"clipper/internal/model"
	"clipper/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UploadService registers new source videos.
type UploadService interface {
	InitiateUpload(ctx context.Context, userID, filename, contentType string) (*model.UploadedFile, string, error)
}

type uploadService struct {
	files     repository.UploadedFileRepository
	store     ObjectStore
	cache     cache.DashboardCache
	uploadTTL time.Duration
	logger    zerolog.Logger
}

func NewUploadService(
	files repository.UploadedFileRepository,
	store ObjectStore,
	dashboardCache cache.DashboardCache,
	uploadTTL time.Duration,
	logger zerolog.Logger,
) UploadService {
	return &uploadService{
		files:     files,
		store:     store,
		cache:     dashboardCache,
		uploadTTL: uploadTTL,
		logger:    logger.With().Str("service", "UploadService").Logger(),
	}
}

// uploadKey returns the storage key for a new upload, keeping the source extension.
func uploadKey(id, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".mp4"
	}
	return fmt.Sprintf("uploads/%s/original%s", id, ext)
}

// InitiateUpload creates an uploaded-file record and returns a presigned URL
// the client PUTs the video to.
func (s *uploadService) InitiateUpload(ctx context.Context, userID, filename, contentType string) (*model.UploadedFile, string, error) {
	if userID == "" {
		return nil, "", ErrUnauthorized
	}
	id := uuid.NewString()
	file := &model.UploadedFile{
		ID:          id,
		UserID:      userID,
		S3Key:       uploadKey(id, filename),
		DisplayName: filename,
		Status:      model.UploadedFileStatusPending,
	}
	if err := s.files.CreateUploadedFile(ctx, file); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to create uploaded file record")
		return nil, "", fmt.Errorf("failed to create uploaded file: %w", err)
	}

	url, err := s.store.PresignPut(ctx, file.S3Key, contentType, s.uploadTTL)
	if err != nil {
		s.logger.Error().Err(err).Str("uploaded_file_id", id).Msg("Failed to generate presigned PUT URL")
		if _, delErr := s.files.DeleteUploadedFileIfNoClips(ctx, id, userID); delErr != nil {
			s.logger.Error().Err(delErr).Str("uploaded_file_id", id).Msg("Failed to clean up uploaded file record")
		}
		return nil, "", fmt.Errorf("%w: presign upload: %v", ErrUpstreamFailure, err)
	}

	if err := s.cache.Invalidate(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to invalidate dashboard cache")
	}
	return file, url, nil
}
