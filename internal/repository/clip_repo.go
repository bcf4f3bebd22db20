package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"clipper/internal/model"
)

type ClipRepository interface {
	GetClipForUser(ctx context.Context, id, userID string) (*model.Clip, error)
	ListClipsByUser(ctx context.Context, userID string) ([]model.Clip, error)
	DeleteClipForUser(ctx context.Context, id, userID string) (bool, error)
	CountClipsByUploadedFile(ctx context.Context, uploadedFileID, userID string) (int, error)
}

type clipRepo struct {
	db *sql.DB
}

func NewClipRepo(db *sql.DB) ClipRepository {
	return &clipRepo{db: db}
}

func (r *clipRepo) GetClipForUser(ctx context.Context, id, userID string) (*model.Clip, error) {
	query := `
		SELECT id, user_id, s3_key, uploaded_file_id, created_at
		FROM clips
		WHERE id = $1 AND user_id = $2
	`
	var c model.Clip
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(&c.ID, &c.UserID, &c.S3Key, &c.UploadedFileID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan clip row: %w", err)
	}
	return &c, nil
}

func (r *clipRepo) ListClipsByUser(ctx context.Context, userID string) ([]model.Clip, error) {
	query := `
		SELECT id, user_id, s3_key, uploaded_file_id, created_at
		FROM clips
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query clips: %w", err)
	}
	defer rows.Close()

	var clips []model.Clip
	for rows.Next() {
		var c model.Clip
		if err := rows.Scan(&c.ID, &c.UserID, &c.S3Key, &c.UploadedFileID, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan clip row: %w", err)
		}
		clips = append(clips, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return clips, nil
}

func (r *clipRepo) DeleteClipForUser(ctx context.Context, id, userID string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM clips WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete clip: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return n > 0, nil
}

func (r *clipRepo) CountClipsByUploadedFile(ctx context.Context, uploadedFileID, userID string) (int, error) {
	var n int
	query := `SELECT COUNT(*) FROM clips WHERE uploaded_file_id = $1 AND user_id = $2`
	if err := r.db.QueryRowContext(ctx, query, uploadedFileID, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count clips: %w", err)
	}
	return n, nil
}
