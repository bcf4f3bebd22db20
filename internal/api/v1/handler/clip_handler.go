package handler

import (
	"net/http"
	"strings"
	"time"

	"clipper/internal/api/v1/dto"
	"clipper/internal/service"

	"github.com/rs/zerolog"
)

type ClipHandler struct {
	clipService service.ClipService
	playbackTTL time.Duration
	logger      zerolog.Logger
}

func NewClipHandler(clipService service.ClipService, playbackTTL time.Duration, logger zerolog.Logger) *ClipHandler {
	return &ClipHandler{clipService: clipService, playbackTTL: playbackTTL, logger: logger}
}

// RegisterRoutes mounts clip routes under /clips/{id}
func (h *ClipHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/clips/", authMw(http.HandlerFunc(h.handleClip)))
}

func (h *ClipHandler) handleClip(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/clips/")
	clipID, action, _ := strings.Cut(rest, "/")
	if clipID == "" {
		http.NotFound(w, r)
		return
	}
	switch {
	case action == "play-url" && r.Method == http.MethodGet:
		h.getPlaybackURL(w, r, clipID)
	case action == "" && r.Method == http.MethodDelete:
		h.deleteClip(w, r, clipID)
	case action == "play-url" || action == "":
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
	default:
		http.NotFound(w, r)
	}
}

// getPlaybackURL godoc
// @Summary Get a clip playback URL
// @Description Returns a time-limited signed URL for streaming the clip.
// @Tags clips
// @Produce json
// @Param clipId path string true "Clip ID"
// @Success 200 {object} dto.PlaybackURLResponseDTO
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "not found"
// @Failure 500 {string} string "Failed to generate play URL"
// @Router /clips/{clipId}/play-url [get]
func (h *ClipHandler) getPlaybackURL(w http.ResponseWriter, r *http.Request, clipID string) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	url, err := h.clipService.GetPlaybackURL(r.Context(), clipID, userID)
	if err != nil {
		writeServiceError(w, err, "Failed to generate play URL")
		return
	}
	resp := dto.PlaybackURLResponseDTO{URL: url, ExpiresInSeconds: int(h.playbackTTL.Seconds())}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}

// deleteClip godoc
// @Summary Delete a clip
// @Description Deletes the clip and its video. The source upload is removed with its last clip.
// @Tags clips
// @Produce json
// @Param clipId path string true "Clip ID"
// @Success 200 {object} dto.ClipDeleteResponseDTO
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "not found"
// @Failure 500 {string} string "Failed to delete clip"
// @Router /clips/{clipId} [delete]
func (h *ClipHandler) deleteClip(w http.ResponseWriter, r *http.Request, clipID string) {
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	res, err := h.clipService.DeleteClip(r.Context(), clipID, userID)
	if err != nil {
		writeServiceError(w, err, "Failed to delete clip")
		return
	}
	resp := dto.ClipDeleteResponseDTO{
		Success:             res.RecordDeleted,
		ObjectDeleted:       res.ObjectDeleted,
		UploadedFileDeleted: res.UploadedFileDeleted,
	}
	if res.ObjectErr != nil {
		resp.Warning = "clip deleted but its video file could not be removed"
	}
	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}
