package handler

import (
	"net/http"

	"clipper/internal/api/v1/dto"
	"clipper/internal/model"
	"clipper/internal/service"

	"github.com/rs/zerolog"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
	logger           zerolog.Logger
}

func NewDashboardHandler(dashboardService service.DashboardService, logger zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, logger: logger}
}

func (h *DashboardHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/dashboard", authMw(http.HandlerFunc(h.getDashboard)))
}

// getDashboard godoc
// @Summary Get the dashboard
// @Description Returns the caller's credit balance, uploads and clips.
// @Tags dashboard
// @Produce json
// @Success 200 {object} dto.DashboardResponseDTO
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "user not found"
// @Failure 500 {string} string "Failed to load dashboard"
// @Router /dashboard [get]
func (h *DashboardHandler) getDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	d, err := h.dashboardService.GetDashboard(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "Failed to load dashboard")
		return
	}
	if err := writeJSON(w, http.StatusOK, toDashboardDTO(d)); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func toDashboardDTO(d *model.Dashboard) dto.DashboardResponseDTO {
	resp := dto.DashboardResponseDTO{
		Credits:       d.Credits,
		UploadedFiles: make([]dto.DashboardUploadDTO, 0, len(d.UploadedFiles)),
		Clips:         make([]dto.DashboardClipDTO, 0, len(d.Clips)),
	}
	for _, f := range d.UploadedFiles {
		resp.UploadedFiles = append(resp.UploadedFiles, dto.DashboardUploadDTO{
			UploadedFileID: f.ID,
			DisplayName:    f.DisplayName,
			Status:         f.Status,
			Uploaded:       f.Uploaded,
			ClipCount:      f.ClipCount,
			CreatedAt:      f.CreatedAt,
		})
	}
	for _, c := range d.Clips {
		resp.Clips = append(resp.Clips, dto.DashboardClipDTO{
			ClipID:         c.ID,
			UploadedFileID: c.UploadedFileID,
			CreatedAt:      c.CreatedAt,
		})
	}
	return resp
}
