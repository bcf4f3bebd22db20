package model

import "time"

// Clip is a generated output video. UploadedFileID is a weak back-reference
// to the source upload.
type Clip struct {
	ID             string    `db:"id" json:"id"`
	UserID         string    `db:"user_id" json:"user_id"`
	S3Key          string    `db:"s3_key" json:"s3_key"`
	UploadedFileID *string   `db:"uploaded_file_id" json:"uploaded_file_id,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
