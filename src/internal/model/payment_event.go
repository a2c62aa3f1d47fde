package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionEvent struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Type      string          `json:"type"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	NetAmount decimal.Decimal `json:"net_amount"`
	Reference string          `json:"reference"`
	Source    string          `json:"source"`
	At        time.Time       `json:"at"`
}

func (e *TransactionEvent) GetId() string {
	return e.ID
}

type SettlementEvent struct {
	ID          string          `json:"id"`
	DriverID    string          `json:"driver_id"`
	NetAmount   decimal.Decimal `json:"net_amount"`
	Period      string          `json:"period"`
	PeriodStart time.Time       `json:"period_start"`
	Reference   string          `json:"reference"`
}

func (e *SettlementEvent) GetId() string {
	return e.ID
}

type PayoutEvent struct {
	SettlementID     string          `json:"settlement_id"`
	DriverID         string          `json:"driver_id"`
	NetAmount        decimal.Decimal `json:"net_amount"`
	Status           string          `json:"status"`
	PaymentReference string          `json:"payment_reference"`
	At               time.Time       `json:"at"`
}

func (e *PayoutEvent) GetId() string {
	return e.SettlementID
}
