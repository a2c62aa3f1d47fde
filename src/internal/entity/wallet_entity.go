package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Wallet struct {
	ID          string          `db:"id" json:"id"`
	UserID      string          `db:"user_id" json:"userId"`
	Balance     decimal.Decimal `db:"balance" json:"balance"`
	Currency    string          `db:"currency" json:"currency"`
	LastTopUpAt *time.Time      `db:"last_top_up_at" json:"lastTopUpAt,omitempty"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time       `db:"updated_at" json:"updatedAt"`
}

type TransactionType string

const (
	TransactionTypeTopUp      TransactionType = "TOP_UP"
	TransactionTypePayment    TransactionType = "PAYMENT"
	TransactionTypeRefund     TransactionType = "REFUND"
	TransactionTypeSettlement TransactionType = "SETTLEMENT"
	TransactionTypeWithdrawal TransactionType = "WITHDRAWAL"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
	TransactionStatusCancelled TransactionStatus = "CANCELLED"
)

// Transaction is the unit of idempotent claiming: only the caller that flips
// status from PENDING to a terminal state may mutate the wallet.
type Transaction struct {
	ID            string            `db:"id" json:"id"`
	UserID        string            `db:"user_id" json:"userId"`
	Type          TransactionType   `db:"type" json:"type"`
	Amount        decimal.Decimal   `db:"amount" json:"amount"`
	Fee           decimal.Decimal   `db:"fee" json:"fee"`
	NetAmount     decimal.Decimal   `db:"net_amount" json:"netAmount"`
	Status        TransactionStatus `db:"status" json:"status"`
	PaymentMethod string            `db:"payment_method" json:"paymentMethod"`
	Reference     string            `db:"reference" json:"reference"`
	ExternalRef   *string           `db:"external_ref" json:"externalRef,omitempty"`
	Metadata      *string           `db:"metadata" json:"metadata,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updatedAt"`
}

func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case TransactionStatusCompleted, TransactionStatusFailed, TransactionStatusCancelled:
		return true
	}
	return false
}
