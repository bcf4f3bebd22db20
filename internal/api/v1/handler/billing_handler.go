package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"clipper/internal/api/v1/dto"
	"clipper/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// maxWebhookBodyBytes bounds Stripe webhook bodies.
const maxWebhookBodyBytes = 65536

// BillingHandler handles credit purchases and Stripe webhooks.
type BillingHandler struct {
	billing  service.BillingService
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewBillingHandler(billing service.BillingService, validate *validator.Validate, logger zerolog.Logger) *BillingHandler {
	return &BillingHandler{billing: billing, validate: validate, logger: logger}
}

// RegisterRoutes registers checkout behind auth and the webhook without it;
// webhook deliveries authenticate with their Stripe signature.
func (h *BillingHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("/billing/checkout", authMw(http.HandlerFunc(h.Checkout)))
	mux.HandleFunc("/webhooks/stripe", h.StripeWebhook)
}

// Checkout godoc
// @Summary Buy a credit pack
// @Description Creates a Stripe Checkout session for a credit pack and returns its URL.
// @Tags billing
// @Accept json
// @Produce json
// @Param checkout body dto.CheckoutRequestDTO true "Credit pack"
// @Success 200 {object} dto.CheckoutResponseDTO
// @Failure 400 {string} string "invalid request payload"
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "failed to create checkout session"
// @Router /billing/checkout [post]
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := callerID(r)
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var req dto.CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		http.Error(w, "invalid credit pack", http.StatusBadRequest)
		return
	}
	url, err := h.billing.CreateCheckoutSession(r.Context(), userID, req.Pack)
	if err != nil {
		h.logger.Error().Err(err).Str("pack", req.Pack).Msg("failed to create checkout session")
		writeServiceError(w, err, "failed to create checkout session")
		return
	}
	if err := writeJSON(w, http.StatusOK, dto.CheckoutResponseDTO{URL: url}); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}

// StripeWebhook godoc
// @Summary Stripe webhook
// @Description Receives Stripe events. Completed checkouts add credits to the buyer.
// @Tags billing
// @Accept json
// @Produce json
// @Param Stripe-Signature header string true "Stripe signature"
// @Success 200 {object} dto.WebhookResponseDTO
// @Failure 400 {string} string "invalid signature"
// @Failure 404 {string} string "user not found"
// @Failure 500 {string} string "webhook processing failed"
// @Router /webhooks/stripe [post]
func (h *BillingHandler) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to read webhook body")
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	out, err := h.billing.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		writeServiceError(w, err, "webhook processing failed")
		return
	}
	h.logger.Debug().
		Str("event_id", out.EventID).
		Bool("ignored", out.Ignored).
		Bool("duplicate", out.Duplicate).
		Msg("webhook handled")
	if err := writeJSON(w, http.StatusOK, dto.WebhookResponseDTO{Received: true}); err != nil {
		h.logger.Error().Err(err).Msg("failed to encode response")
	}
}
