package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// QrPaymentSession is a single-use payment request minted by a driver and
// consumed by at most one payer before expiresAt.
type QrPaymentSession struct {
	ID        string          `db:"id" json:"id"`
	DriverID  string          `db:"driver_id" json:"driverId"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	QrCode    string          `db:"qr_code" json:"qrCode"`
	QrData    string          `db:"qr_data" json:"qrData"`
	IsUsed    bool            `db:"is_used" json:"isUsed"`
	UsedBy    *string         `db:"used_by" json:"usedBy,omitempty"`
	UsedAt    *time.Time      `db:"used_at" json:"usedAt,omitempty"`
	ExpiresAt time.Time       `db:"expires_at" json:"expiresAt"`
	CreatedAt time.Time       `db:"created_at" json:"createdAt"`
}

func (s *QrPaymentSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
