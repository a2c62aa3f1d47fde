package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TopUpRequest struct {
	UserID        string          `json:"userId" validate:"required,max=100"`
	Amount        decimal.Decimal `json:"amount" validate:"required"`
	PaymentMethod string          `json:"paymentMethod" validate:"required,oneof=GATEWAY BANK_TRANSFER"`
}

type TopUpResponse struct {
	Reference   string          `json:"reference"`
	ExternalRef string          `json:"externalRef,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Status      string          `json:"status"`
	CheckoutURL string          `json:"checkoutUrl,omitempty"`
}

type BalanceResponse struct {
	UserID      string          `json:"userId"`
	Balance     decimal.Decimal `json:"balance"`
	Currency    string          `json:"currency"`
	LastTopUpAt *time.Time      `json:"lastTopUpAt,omitempty"`
}

type ListTransactionsRequest struct {
	UserID string `json:"userId" validate:"required,max=100"`
	Limit  int    `json:"limit"`
	Offset int    `json:"offset"`
}

type TransactionResponse struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Fee           decimal.Decimal `json:"fee"`
	NetAmount     decimal.Decimal `json:"netAmount"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"paymentMethod"`
	Reference     string          `json:"reference"`
	CreatedAt     time.Time       `json:"createdAt"`
}
