package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type SettlementPeriod string

const (
	SettlementPeriodDaily   SettlementPeriod = "DAILY"
	SettlementPeriodWeekly  SettlementPeriod = "WEEKLY"
	SettlementPeriodMonthly SettlementPeriod = "MONTHLY"
)

type SettlementStatus string

const (
	SettlementStatusPending    SettlementStatus = "PENDING"
	SettlementStatusProcessing SettlementStatus = "PROCESSING"
	SettlementStatusCompleted  SettlementStatus = "COMPLETED"
	SettlementStatusFailed     SettlementStatus = "FAILED"
)

// Settlement aggregates a driver's paid rides for one period. At most one row
// exists per (driver_id, period, period_start).
type Settlement struct {
	ID          string           `db:"id" json:"id"`
	DriverID    string           `db:"driver_id" json:"driverId"`
	Amount      decimal.Decimal  `db:"amount" json:"amount"`
	Fee         decimal.Decimal  `db:"fee" json:"fee"`
	NetAmount   decimal.Decimal  `db:"net_amount" json:"netAmount"`
	Period      SettlementPeriod `db:"period" json:"period"`
	PeriodStart time.Time        `db:"period_start" json:"periodStart"`
	PeriodEnd   time.Time        `db:"period_end" json:"periodEnd"`
	Status      SettlementStatus `db:"status" json:"status"`
	Reference   string           `db:"reference" json:"reference"`
	PaymentRef  *string          `db:"payment_ref" json:"paymentRef,omitempty"`
	FailReason  *string          `db:"fail_reason" json:"failReason,omitempty"`
	PaidAt      *time.Time       `db:"paid_at" json:"paidAt,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updatedAt"`
}
