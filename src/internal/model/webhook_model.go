package model

// WebhookRequest is the form-encoded confirmation the payment gateway posts.
// Delivery is at-least-once; the same confirmation may arrive more than once.
type WebhookRequest struct {
	Reference         string `form:"reference" validate:"required,max=100"`
	ExternalReference string `form:"externalreference" validate:"required,max=100"`
	Amount            string `form:"amount" validate:"required,max=50"`
	Status            string `form:"status" validate:"required,max=50"`
	Hash              string `form:"hash" validate:"required,max=256"`
}
