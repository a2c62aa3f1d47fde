package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateSettlementRequest struct {
	DriverID    string    `json:"driverId" validate:"required,max=100"`
	Period      string    `json:"period" validate:"required,oneof=DAILY WEEKLY MONTHLY"`
	PeriodStart time.Time `json:"periodStart" validate:"required"`
	PeriodEnd   time.Time `json:"periodEnd" validate:"required"`
}

type SettlementResponse struct {
	ID          string          `json:"id"`
	DriverID    string          `json:"driverId"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
	NetAmount   decimal.Decimal `json:"netAmount"`
	Period      string          `json:"period"`
	PeriodStart time.Time       `json:"periodStart"`
	PeriodEnd   time.Time       `json:"periodEnd"`
	Status      string          `json:"status"`
	Reference   string          `json:"reference"`
	PaidAt      *time.Time      `json:"paidAt,omitempty"`
}

type EarningsResponse struct {
	DriverID  string          `json:"driverId"`
	TotalFare decimal.Decimal `json:"totalFare"`
	Fee       decimal.Decimal `json:"fee"`
	NetAmount decimal.Decimal `json:"netAmount"`
	RideCount int             `json:"rideCount"`
}

type PayoutRequest struct {
	SettlementID string `json:"settlementId" validate:"required,max=100"`
	AdminPin     string `json:"adminPin" validate:"required,max=100"`
	Action       string `json:"action" validate:"required,oneof=approve_and_process"`
}

type PayoutResponse struct {
	Success          bool   `json:"success"`
	Status           string `json:"status"`
	PaymentReference string `json:"paymentReference,omitempty"`
	Message          string `json:"message"`
}
