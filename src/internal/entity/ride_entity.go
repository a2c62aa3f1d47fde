package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// RideOrder is a read-only projection of the trip service's ride_orders table,
// only the columns settlement math needs.
type RideOrder struct {
	OrderID     string          `db:"order_id" json:"orderId"`
	DriverID    string          `db:"driver_id" json:"driverId"`
	Fare        decimal.Decimal `db:"fare" json:"fare"`
	Status      string          `db:"status" json:"status"`
	IsPaid      bool            `db:"is_paid" json:"isPaid"`
	CompletedAt *time.Time      `db:"completed_at" json:"completedAt,omitempty"`
}
