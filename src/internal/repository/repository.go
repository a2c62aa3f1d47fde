package repository

import (
	"context"
	"errors"
	"time"

	"payment-service/src/internal/entity"

	"github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrDuplicateReference  = errors.New("duplicate transaction reference")
	ErrAlreadyUsed         = errors.New("qr session already used")
	ErrDuplicateSettlement = errors.New("settlement already exists for period")
)

type WalletStore interface {
	GetOrCreate(ctx context.Context, userID string) (*entity.Wallet, error)
	Credit(ctx context.Context, userID string, amount decimal.Decimal) error
	CreditTopUp(ctx context.Context, userID string, amount decimal.Decimal) error
	Debit(ctx context.Context, userID string, amount decimal.Decimal) error
}

type TransactionStore interface {
	Create(ctx context.Context, tx *entity.Transaction) error
	FindByID(ctx context.Context, id string) (*entity.Transaction, error)
	FindByReference(ctx context.Context, reference string) (*entity.Transaction, error)
	// Claim flips status from `from` to `to` in a single conditional UPDATE.
	// It reports false when the row was no longer in `from`.
	Claim(ctx context.Context, id string, from, to entity.TransactionStatus) (bool, error)
	SetExternalRef(ctx context.Context, id, externalRef string) error
	UpdateMetadata(ctx context.Context, id, metadata string) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]entity.Transaction, error)
	FindPendingExternal(ctx context.Context) ([]entity.Transaction, error)
}

type QrSessionStore interface {
	Create(ctx context.Context, session *entity.QrPaymentSession) error
	FindByCode(ctx context.Context, code string) (*entity.QrPaymentSession, error)
	// Redeem marks the session used, moves the money and writes both ledger
	// legs inside one database transaction.
	Redeem(ctx context.Context, session *entity.QrPaymentSession, payerID string, debitLeg, creditLeg *entity.Transaction) error
}

type SettlementStore interface {
	Create(ctx context.Context, settlement *entity.Settlement) error
	FindByID(ctx context.Context, id string) (*entity.Settlement, error)
	Claim(ctx context.Context, id string, from, to entity.SettlementStatus) (bool, error)
	SetOutcome(ctx context.Context, id string, status entity.SettlementStatus, paymentRef, failReason *string, paidAt *time.Time) error
}

type RideStore interface {
	SumCompletedFares(ctx context.Context, driverID string, start, end time.Time) (decimal.Decimal, int, error)
}

type DriverStore interface {
	FindByID(ctx context.Context, driverID string) (*entity.Driver, error)
	FindVerified(ctx context.Context) ([]entity.Driver, error)
}

type AuditStore interface {
	Append(ctx context.Context, log *entity.AuditLog) error
}

func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
