package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"clipper/internal/model"
)

type UploadedFileRepository interface {
	CreateUploadedFile(ctx context.Context, f *model.UploadedFile) error
	GetUploadedFileByID(ctx context.Context, id string) (*model.UploadedFile, error)
	GetUploadedFileForUser(ctx context.Context, id, userID string) (*model.UploadedFile, error)
	ListUploadedFilesByUser(ctx context.Context, userID string) ([]model.UploadedFileSummary, error)

	// ClaimForSubmission atomically reserves the file for a single submitter.
	// It succeeds only while the file is not yet queued and no other claim
	// younger than lease exists.
	ClaimForSubmission(ctx context.Context, id string, lease time.Duration) (bool, error)
	ReleaseSubmissionClaim(ctx context.Context, id string) error
	// ListStaleClaims returns unqueued files whose claim is older than lease.
	ListStaleClaims(ctx context.Context, lease time.Duration, limit int) ([]model.UploadedFile, error)
	MarkQueued(ctx context.Context, id string) error
	ResetQueued(ctx context.Context, id string) error

	// DeleteUploadedFileIfNoClips removes the file only while no clip
	// references it. It reports whether a row was deleted.
	DeleteUploadedFileIfNoClips(ctx context.Context, id, userID string) (bool, error)
}

type uploadedFileRepo struct {
	db *sql.DB
}

func NewUploadedFileRepo(db *sql.DB) UploadedFileRepository {
	return &uploadedFileRepo{db: db}
}

const uploadedFileColumns = `id, user_id, s3_key, display_name, uploaded, status, submit_claimed_at, created_at, updated_at`

func scanUploadedFile(row interface{ Scan(dest ...any) error }) (*model.UploadedFile, error) {
	var f model.UploadedFile
	if err := row.Scan(
		&f.ID,
		&f.UserID,
		&f.S3Key,
		&f.DisplayName,
		&f.Uploaded,
		&f.Status,
		&f.SubmitClaimedAt,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *uploadedFileRepo) CreateUploadedFile(ctx context.Context, f *model.UploadedFile) error {
	query := `
		INSERT INTO uploaded_files (id, user_id, s3_key, display_name, uploaded, status)
		VALUES ($1, $2, $3, $4, FALSE, $5)
		RETURNING uploaded, created_at, updated_at
	`
	if f.Status == "" {
		f.Status = model.UploadedFileStatusPending
	}
	if err := r.db.QueryRowContext(ctx, query, f.ID, f.UserID, f.S3Key, f.DisplayName, f.Status).
		Scan(&f.Uploaded, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create uploaded file: %w", err)
	}
	return nil
}

func (r *uploadedFileRepo) GetUploadedFileByID(ctx context.Context, id string) (*model.UploadedFile, error) {
	query := `SELECT ` + uploadedFileColumns + ` FROM uploaded_files WHERE id = $1`
	f, err := scanUploadedFile(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get uploaded file: %w", err)
	}
	return f, nil
}

func (r *uploadedFileRepo) GetUploadedFileForUser(ctx context.Context, id, userID string) (*model.UploadedFile, error) {
	query := `SELECT ` + uploadedFileColumns + ` FROM uploaded_files WHERE id = $1 AND user_id = $2`
	f, err := scanUploadedFile(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get uploaded file: %w", err)
	}
	return f, nil
}

func (r *uploadedFileRepo) ListUploadedFilesByUser(ctx context.Context, userID string) ([]model.UploadedFileSummary, error) {
	query := `
		SELECT f.id, f.user_id, f.s3_key, f.display_name, f.uploaded, f.status, f.submit_claimed_at,
		       f.created_at, f.updated_at, COUNT(c.id) AS clip_count
		FROM uploaded_files f
		LEFT JOIN clips c ON c.uploaded_file_id = f.id
		WHERE f.user_id = $1
		GROUP BY f.id
		ORDER BY f.created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query uploaded files: %w", err)
	}
	defer rows.Close()

	var files []model.UploadedFileSummary
	for rows.Next() {
		var s model.UploadedFileSummary
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.S3Key,
			&s.DisplayName,
			&s.Uploaded,
			&s.Status,
			&s.SubmitClaimedAt,
			&s.CreatedAt,
			&s.UpdatedAt,
			&s.ClipCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan uploaded file row: %w", err)
		}
		files = append(files, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return files, nil
}

func (r *uploadedFileRepo) ClaimForSubmission(ctx context.Context, id string, lease time.Duration) (bool, error) {
	query := `
		UPDATE uploaded_files
		SET submit_claimed_at = NOW(), updated_at = NOW()
		WHERE id = $1
		  AND uploaded = FALSE
		  AND (submit_claimed_at IS NULL OR submit_claimed_at < NOW() - make_interval(secs => $2))
	`
	res, err := r.db.ExecContext(ctx, query, id, lease.Seconds())
	if err != nil {
		return false, fmt.Errorf("failed to claim uploaded file: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read claim result: %w", err)
	}
	return n == 1, nil
}

func (r *uploadedFileRepo) ReleaseSubmissionClaim(ctx context.Context, id string) error {
	query := `UPDATE uploaded_files SET submit_claimed_at = NULL, updated_at = NOW() WHERE id = $1 AND uploaded = FALSE`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to release claim: %w", err)
	}
	return nil
}

func (r *uploadedFileRepo) ListStaleClaims(ctx context.Context, lease time.Duration, limit int) ([]model.UploadedFile, error) {
	query := `SELECT ` + uploadedFileColumns + ` FROM uploaded_files
		WHERE uploaded = FALSE
		  AND submit_claimed_at IS NOT NULL
		  AND submit_claimed_at < NOW() - make_interval(secs => $1)
		ORDER BY submit_claimed_at
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, lease.Seconds(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query stale claims: %w", err)
	}
	defer rows.Close()

	var files []model.UploadedFile
	for rows.Next() {
		f, err := scanUploadedFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan uploaded file row: %w", err)
		}
		files = append(files, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return files, nil
}

func (r *uploadedFileRepo) MarkQueued(ctx context.Context, id string) error {
	query := `
		UPDATE uploaded_files
		SET uploaded = TRUE, status = $2, submit_claimed_at = NULL, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id, model.UploadedFileStatusQueued); err != nil {
		return fmt.Errorf("failed to mark uploaded file queued: %w", err)
	}
	return nil
}

func (r *uploadedFileRepo) ResetQueued(ctx context.Context, id string) error {
	query := `
		UPDATE uploaded_files
		SET uploaded = FALSE, status = $2, submit_claimed_at = NULL, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id, model.UploadedFileStatusPending); err != nil {
		return fmt.Errorf("failed to reset uploaded file: %w", err)
	}
	return nil
}

func (r *uploadedFileRepo) DeleteUploadedFileIfNoClips(ctx context.Context, id, userID string) (bool, error) {
	query := `
		DELETE FROM uploaded_files f
		WHERE f.id = $1 AND f.user_id = $2
		  AND NOT EXISTS (SELECT 1 FROM clips c WHERE c.uploaded_file_id = f.id)
	`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, fmt.Errorf("failed to delete uploaded file: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read delete result: %w", err)
	}
	return n > 0, nil
}
