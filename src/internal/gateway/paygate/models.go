package paygate

import "github.com/shopspring/decimal"

type ChargeRequest struct {
	Reference   string          `json:"reference"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Description string          `json:"description,omitempty"`
	CustomerID  string          `json:"customer_id"`
}

type ChargeResponse struct {
	ExternalRef string `json:"external_reference"`
	Status      string `json:"status"`
	CheckoutURL string `json:"checkout_url"`
}

type StatusResponse struct {
	ExternalRef string `json:"external_reference"`
	Reference   string `json:"reference"`
	Status      string `json:"status"`
	Amount      string `json:"amount"`
}

type PayoutRequest struct {
	Address   string          `json:"address"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	Reference string          `json:"reference"`
}

type PayoutResponse struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	Message       string `json:"message,omitempty"`
}

type errorResponse struct {
	Message string `json:"message"`
}
