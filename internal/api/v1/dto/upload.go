package dto

import "time"

// UploadCreateDTO is used for incoming upload initiation requests
type UploadCreateDTO struct {
	Filename    string `json:"filename" validate:"required,max=255"`
	ContentType string `json:"content_type" validate:"required,oneof=video/mp4 video/quicktime video/webm video/x-matroska"`
}

// UploadResponseDTO carries the new upload and where to PUT the video
type UploadResponseDTO struct {
	UploadedFileID string    `json:"uploaded_file_id"`
	UploadURL      string    `json:"upload_url"`
	S3Key          string    `json:"s3_key"`
	CreatedAt      time.Time `json:"created_at"`
}

// ProcessResponseDTO reports whether a process request queued a new job
type ProcessResponseDTO struct {
	UploadedFileID string `json:"uploaded_file_id"`
	Enqueued       bool   `json:"enqueued"`
	MessageID      string `json:"message_id,omitempty"`
}
