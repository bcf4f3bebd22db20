package handler

import (
	"encoding/json"
	"net/http"

	"clipper/internal/api/v1/dto"
	"clipper/internal/service"

	"github.com/rs/zerolog"
)

type DLQHandler struct {
	service service.DLQService
	logger  zerolog.Logger
}

func NewDLQHandler(s service.DLQService, l zerolog.Logger) *DLQHandler {
	return &DLQHandler{service: s, logger: l}
}

func (h *DLQHandler) RegisterRoutes(mux *http.ServeMux, pubsubAuthMw func(http.Handler) http.Handler) {
	mux.Handle("/dlq", pubsubAuthMw(http.HandlerFunc(h.RecordDLQ)))
}

// RecordDLQ godoc
// @Summary Record a dead-lettered job
// @Description Pub/Sub push endpoint for process-video jobs that exhausted their retries.
// @Tags internal
// @Accept json
// @Param message body dto.PubSubPushRequest true "Pub/Sub push message"
// @Success 204
// @Failure 400 {string} string "Invalid Pub/Sub message format"
// @Router /dlq [post]
func (h *DLQHandler) RecordDLQ(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.PubSubPushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message.MessageID == "" {
		http.Error(w, "Invalid Pub/Sub message format: missing message ID", http.StatusBadRequest)
		return
	}

	h.logger.Info().
		Str("messageId", req.Message.MessageID).
		Str("subscription", req.Subscription).
		Msg("Processing dead-letter queue message")

	if err := h.service.ProcessAndSave(r.Context(), &req); err != nil {
		// Pub/Sub would redeliver an already dead-lettered message; log and ack.
		h.logger.Error().Err(err).Str("messageId", req.Message.MessageID).Msg("Failed to save DLQ message to database")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.logger.Info().Str("messageId", req.Message.MessageID).Msg("Successfully processed and saved DLQ message")
	w.WriteHeader(http.StatusNoContent)
}
