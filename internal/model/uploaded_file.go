package model

import "time"

// UploadedFile is a raw source video awaiting or undergoing processing.
// Uploaded is set once the file has been handed to the job queue.
type UploadedFile struct {
	ID              string     `db:"id" json:"id"`
	UserID          string     `db:"user_id" json:"user_id"`
	S3Key           string     `db:"s3_key" json:"s3_key"`
	DisplayName     string     `db:"display_name" json:"display_name"`
	Uploaded        bool       `db:"uploaded" json:"uploaded"`
	Status          string     `db:"status" json:"status"`
	SubmitClaimedAt *time.Time `db:"submit_claimed_at" json:"-"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Statuses written by this service. The processing pipeline moves a file
// further along ("processing", "processed", "failed").
const (
	UploadedFileStatusPending = "pending"
	UploadedFileStatusQueued  = "queued"
)

// UploadedFileSummary is an UploadedFile together with the number of clips
// generated from it.
type UploadedFileSummary struct {
	UploadedFile
	ClipCount int `db:"clip_count" json:"clip_count"`
}
