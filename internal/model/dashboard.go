package model

// Dashboard is the per-user listing shown on the dashboard page.
type Dashboard struct {
	Credits       int                   `json:"credits"`
	UploadedFiles []UploadedFileSummary `json:"uploaded_files"`
	Clips         []Clip                `json:"clips"`
}
