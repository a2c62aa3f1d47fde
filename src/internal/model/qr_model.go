package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const QrPayloadTypePayment = "PAYMENT"

type GenerateQrRequest struct {
	DriverID string          `json:"driverId" validate:"required,max=100"`
	Amount   decimal.Decimal `json:"amount" validate:"required"`
}

// QrPayload is the JSON the client renders as a scannable code.
type QrPayload struct {
	Type      string          `json:"type"`
	QrCode    string          `json:"qrCode"`
	DriverID  string          `json:"driverId"`
	Amount    decimal.Decimal `json:"amount"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

type GenerateQrResponse struct {
	SessionID string          `json:"sessionId"`
	QrCode    string          `json:"qrCode"`
	QrData    string          `json:"qrData"`
	Amount    decimal.Decimal `json:"amount"`
	ExpiresAt time.Time       `json:"expiresAt"`
}

type RedeemQrRequest struct {
	PayerID string `json:"payerId" validate:"required,max=100"`
	// QrData is either the bare qr_code token or the scanned JSON payload.
	QrData string `json:"qrData" validate:"required"`
}

type RedeemQrResponse struct {
	SessionID      string          `json:"sessionId"`
	DriverID       string          `json:"driverId"`
	Amount         decimal.Decimal `json:"amount"`
	DebitReference string          `json:"debitReference"`
	PayerBalance   decimal.Decimal `json:"payerBalance"`
}
