package dto

import "time"

type DashboardUploadDTO struct {
	UploadedFileID string    `json:"uploaded_file_id"`
	DisplayName    string    `json:"display_name"`
	Status         string    `json:"status"`
	Uploaded       bool      `json:"uploaded"`
	ClipCount      int       `json:"clip_count"`
	CreatedAt      time.Time `json:"created_at"`
}

type DashboardClipDTO struct {
	ClipID         string    `json:"clip_id"`
	UploadedFileID *string   `json:"uploaded_file_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// DashboardResponseDTO is the caller's credit balance and library
type DashboardResponseDTO struct {
	Credits       int                  `json:"credits"`
	UploadedFiles []DashboardUploadDTO `json:"uploaded_files"`
	Clips         []DashboardClipDTO   `json:"clips"`
}
