package repository

import (
	"context"
	"database/sql"
	"errors"

	"payment-service/src/internal/entity"
	"payment-service/src/pkg/databases/mysql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type WalletRepository struct {
	DB mysql.DBInterface
}

func NewWalletRepository(db mysql.DBInterface) *WalletRepository {
	return &WalletRepository{
		DB: db,
	}
}

// GetOrCreate lazily provisions a wallet on first access. The unique key on
// user_id makes concurrent first accesses converge on one row.
func (r *WalletRepository) GetOrCreate(ctx context.Context, userID string) (*entity.Wallet, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	insert := `
		INSERT INTO wallets (id, user_id, balance, currency, created_at, updated_at)
		VALUES (?, ?, 0, 'USD', NOW(), NOW())
		ON DUPLICATE KEY UPDATE user_id = user_id
	`
	if _, err := db.ExecContext(ctx, insert, uuid.NewString(), userID); err != nil {
		return nil, err
	}

	var wallet entity.Wallet
	query := `SELECT id, user_id, balance, currency, last_top_up_at, created_at, updated_at FROM wallets WHERE user_id = ?`
	if err := db.GetContext(ctx, &wallet, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &wallet, nil
}

func (r *WalletRepository) Credit(ctx context.Context, userID string, amount decimal.Decimal) error {
	db, err := r.DB.GetDB()
	if err != nil {
		return err
	}

	query := `UPDATE wallets SET balance = balance + ?, updated_at = NOW() WHERE user_id = ?`
	res, err := db.ExecContext(ctx, query, amount, userID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *WalletRepository) CreditTopUp(ctx context.Context, userID string, amount decimal.Decimal) error {
	db, err := r.DB.GetDB()
	if err != nil {
		return err
	}

	query := `UPDATE wallets SET balance = balance + ?, last_top_up_at = NOW(), updated_at = NOW() WHERE user_id = ?`
	res, err := db.ExecContext(ctx, query, amount, userID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Debit is balance-guarded in the UPDATE itself so concurrent debits can never
// drive a wallet negative.
func (r *WalletRepository) Debit(ctx context.Context, userID string, amount decimal.Decimal) error {
	db, err := r.DB.GetDB()
	if err != nil {
		return err
	}

	query := `UPDATE wallets SET balance = balance - ?, updated_at = NOW() WHERE user_id = ? AND balance >= ?`
	res, err := db.ExecContext(ctx, query, amount, userID, amount)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows > 0 {
		return nil
	}

	var exists int
	if err := db.GetContext(ctx, &exists, `SELECT COUNT(1) FROM wallets WHERE user_id = ?`, userID); err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}

	return ErrInsufficientBalance
}
