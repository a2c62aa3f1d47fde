package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"payment-service/src/internal/entity"
	"payment-service/src/pkg/databases/mysql"

	"github.com/jmoiron/sqlx"
)

type QrSessionRepository struct {
	DB mysql.DBInterface
}

func NewQrSessionRepository(db mysql.DBInterface) *QrSessionRepository {
	return &QrSessionRepository{
		DB: db,
	}
}

func (r *QrSessionRepository) Create(ctx context.Context, session *entity.QrPaymentSession) error {
	db, err := r.DB.GetDB()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO qr_payment_sessions
			(id, driver_id, amount, qr_code, qr_data, is_used, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, 0, ?, NOW())
	`
	_, err = db.ExecContext(ctx, query,
		session.ID, session.DriverID, session.Amount, session.QrCode, session.QrData, session.ExpiresAt)
	return err
}

func (r *QrSessionRepository) FindByCode(ctx context.Context, code string) (*entity.QrPaymentSession, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	var session entity.QrPaymentSession
	query := `
		SELECT id, driver_id, amount, qr_code, qr_data, is_used, used_by, used_at, expires_at, created_at
		FROM qr_payment_sessions WHERE qr_code = ?
	`
	if err := db.GetContext(ctx, &session, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &session, nil
}

// Redeem performs the whole escrow hand-off in one database transaction:
// conditional mark-used, payer debit, driver credit, both ledger legs and the
// driver's lifetime earnings counter. If any step fails the session stays
// unused and no money moves.
func (r *QrSessionRepository) Redeem(ctx context.Context, session *entity.QrPaymentSession, payerID string, debitLeg, creditLeg *entity.Transaction) error {
	now := time.Now().UTC()

	return r.DB.WithTransaction(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE qr_payment_sessions SET is_used = 1, used_by = ?, used_at = ? WHERE qr_code = ? AND is_used = 0`,
			payerID, now, session.QrCode)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrAlreadyUsed
		}

		res, err = tx.ExecContext(ctx,
			`UPDATE wallets SET balance = balance - ?, updated_at = NOW() WHERE user_id = ? AND balance >= ?`,
			session.Amount, payerID, session.Amount)
		if err != nil {
			return err
		}
		rows, err = res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ErrInsufficientBalance
		}

		res, err = tx.ExecContext(ctx,
			`UPDATE wallets SET balance = balance + ?, updated_at = NOW() WHERE user_id = ?`,
			session.Amount, session.DriverID)
		if err != nil {
			return err
		}
		rows, err = res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return fmt.Errorf("driver wallet %s missing: %w", session.DriverID, ErrNotFound)
		}

		insert := `
			INSERT INTO wallet_transactions
				(id, user_id, type, amount, fee, net_amount, status, payment_method, reference, external_ref, metadata, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
		`
		for _, leg := range []*entity.Transaction{debitLeg, creditLeg} {
			if _, err := tx.ExecContext(ctx, insert,
				leg.ID, leg.UserID, leg.Type, leg.Amount, leg.Fee, leg.NetAmount,
				leg.Status, leg.PaymentMethod, leg.Reference, leg.ExternalRef, leg.Metadata,
			); err != nil {
				if isDuplicateKey(err) {
					return ErrDuplicateReference
				}
				return err
			}
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE drivers SET total_earnings = total_earnings + ? WHERE driver_id = ?`,
			session.Amount, session.DriverID)
		return err
	})
}
