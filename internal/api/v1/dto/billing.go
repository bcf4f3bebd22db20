package dto

// CheckoutRequestDTO selects the credit pack to buy
type CheckoutRequestDTO struct {
	Pack string `json:"pack" validate:"required,oneof=small medium large"`
}

type CheckoutResponseDTO struct {
	URL string `json:"url"`
}

// WebhookResponseDTO acknowledges a Stripe webhook delivery
type WebhookResponseDTO struct {
	Received bool `json:"received"`
}
