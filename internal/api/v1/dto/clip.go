package dto

// PlaybackURLResponseDTO is returned for clip playback requests
type PlaybackURLResponseDTO struct {
	URL              string `json:"url"`
	ExpiresInSeconds int    `json:"expires_in_seconds"`
}

// ClipDeleteResponseDTO reports the outcome of each phase of a clip delete
type ClipDeleteResponseDTO struct {
	Success             bool   `json:"success"`
	ObjectDeleted       bool   `json:"object_deleted"`
	UploadedFileDeleted bool   `json:"uploaded_file_deleted"`
	Warning             string `json:"warning,omitempty"`
}
