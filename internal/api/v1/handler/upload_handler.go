package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"clipper/internal/api/v1/dto"
	"clipper/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// UploadHandler handles source video uploads and their processing requests.
type UploadHandler struct {
	uploadService     service.UploadService
	processingService service.ProcessingService
	validate          *validator.Validate
	logger            zerolog.Logger
}

func NewUploadHandler(
	uploadService service.UploadService,
	processingService service.ProcessingService,
	validate *validator.Validate,
	logger zerolog.Logger,
) *UploadHandler {
	return &UploadHandler{
		uploadService:     uploadService,
		processingService: processingService,
		validate:          validate,
		logger:            logger,
	}
}

// RegisterRoutes mounts /uploads and /uploads/{id}/process
func (h *UploadHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/uploads", authMw(http.HandlerFunc(h.createUpload)))
	mux.Handle("/uploads/", authMw(http.HandlerFunc(h.handleUpload)))
}

func (h *UploadHandler) handleUpload(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/uploads/")
	id, action, found := strings.Cut(rest, "/")
	if !found || id == "" || action != "process" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	h.processUpload(w, r, id)
}

// createUpload godoc
// @Summary Start an upload
// @Description Registers a source video and returns a presigned URL to PUT it to.
// @Tags uploads
// @Accept json
// @Produce json
// @Param upload body dto.UploadCreateDTO true "Upload metadata"
// @Success 201 {object} dto.UploadResponseDTO
// @Failure 400 {string} string "Invalid JSON payload"
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "Failed to start upload"
// @Router /uploads [post]
func (h *UploadHandler) createUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req dto.UploadCreateDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, url, err := h.uploadService.InitiateUpload(r.Context(), userID, req.Filename, req.ContentType)
	if err != nil {
		writeServiceError(w, err, "Failed to start upload")
		return
	}
	resp := dto.UploadResponseDTO{
		UploadedFileID: file.ID,
		UploadURL:      url,
		S3Key:          file.S3Key,
		CreatedAt:      file.CreatedAt,
	}
	if err := writeJSON(w, http.StatusCreated, resp); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}

// processUpload godoc
// @Summary Process an uploaded video
// @Description Queues the uploaded video for clip generation. Repeated calls are no-ops.
// @Tags uploads
// @Produce json
// @Param uploadedFileId path string true "Uploaded file ID"
// @Success 202 {object} dto.ProcessResponseDTO
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "not found"
// @Failure 500 {string} string "Failed to submit upload for processing"
// @Router /uploads/{uploadedFileId}/process [post]
func (h *UploadHandler) processUpload(w http.ResponseWriter, r *http.Request, uploadedFileID string) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	res, err := h.processingService.Submit(r.Context(), userID, uploadedFileID)
	if err != nil {
		writeServiceError(w, err, "Failed to submit upload for processing")
		return
	}
	resp := dto.ProcessResponseDTO{
		UploadedFileID: uploadedFileID,
		Enqueued:       res.Enqueued,
		MessageID:      res.MessageID,
	}
	if err := writeJSON(w, http.StatusAccepted, resp); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}
