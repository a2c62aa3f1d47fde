package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Driver struct {
	DriverID      string          `db:"driver_id" json:"driverId"`
	FullName      string          `db:"full_name" json:"fullName"`
	PayoutAddress string          `db:"payout_address" json:"payoutAddress"`
	TotalEarnings decimal.Decimal `db:"total_earnings" json:"totalEarnings"`
	IsVerified    bool            `db:"is_verified" json:"isVerified"`
	CreatedAt     time.Time       `db:"created_at" json:"createdAt"`
}
