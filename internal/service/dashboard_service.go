package service

import (
	"context"
	"fmt"

	"clipper/internal/cache"
	"clipper/internal/model"
	"clipper/internal/repository"

	"github.com/rs/zerolog"
)

type DashboardService interface {
	GetDashboard(ctx context.Context, userID string) (*model.Dashboard, error)
}

type dashboardService struct {
	users  repository.UserRepository
	files  repository.UploadedFileRepository
	clips  repository.ClipRepository
	cache  cache.DashboardCache
	logger zerolog.Logger
}

func NewDashboardService(
	users repository.UserRepository,
	files repository.UploadedFileRepository,
	clips repository.ClipRepository,
	dashboardCache cache.DashboardCache,
	logger zerolog.Logger,
) DashboardService {
	return &dashboardService{
		users:  users,
		files:  files,
		clips:  clips,
		cache:  dashboardCache,
		logger: logger.With().Str("service", "DashboardService").Logger(),
	}
}

// GetDashboard serves the cached listing when present and rebuilds it otherwise.
// Cache errors are logged and treated as misses.
func (s *dashboardService) GetDashboard(ctx context.Context, userID string) (*model.Dashboard, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	cached, err := s.cache.Get(ctx, userID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", userID).Msg("Dashboard cache read failed")
	}
	if cached != nil {
		return cached, nil
	}
	generation, genErr := s.cache.Generation(ctx, userID)
	if genErr != nil {
		s.logger.Warn().Err(genErr).Str("user_id", userID).Msg("Dashboard cache generation read failed")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to load user for dashboard")
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	files, err := s.files.ListUploadedFilesByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list uploaded files")
		return nil, fmt.Errorf("failed to list uploaded files: %w", err)
	}
	clips, err := s.clips.ListClipsByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list clips")
		return nil, fmt.Errorf("failed to list clips: %w", err)
	}

	d := &model.Dashboard{Credits: user.Credits, UploadedFiles: files, Clips: clips}
	if d.UploadedFiles == nil {
		d.UploadedFiles = []model.UploadedFileSummary{}
	}
	if d.Clips == nil {
		d.Clips = []model.Clip{}
	}
	if genErr == nil {
		stored, err := s.cache.Set(ctx, userID, generation, d)
		if err != nil {
			s.logger.Warn().Err(err).Str("user_id", userID).Msg("Dashboard cache write failed")
		} else if !stored {
			s.logger.Debug().Str("user_id", userID).Msg("Dashboard changed while loading, not cached")
		}
	}
	return d, nil
}
