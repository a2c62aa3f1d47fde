package repository

import (
	"context"
	"database/sql"
	"errors"

	"payment-service/src/internal/entity"
	"payment-service/src/pkg/databases/mysql"
)

type TransactionRepository struct {
	DB mysql.DBInterface
}

func NewTransactionRepository(db mysql.DBInterface) *TransactionRepository {
	return &TransactionRepository{
		DB: db,
	}
}

const transactionColumns = `id, user_id, type, amount, fee, net_amount, status, payment_method, reference, external_ref, metadata, created_at, updated_at`

func (r *TransactionRepository) Create(ctx context.Context, tx *entity.Transaction) error {
	db, err := r.DB.GetDB()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO wallet_transactions
			(id, user_id, type, amount, fee, net_amount, status, payment_method, reference, external_ref, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`
	_, err = db.ExecContext(ctx, query,
		tx.ID, tx.UserID, tx.Type, tx.Amount, tx.Fee, tx.NetAmount,
		tx.Status, tx.PaymentMethod, tx.Reference, tx.ExternalRef, tx.Metadata,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateReference
		}
		return err
	}

	return nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*entity.Transaction, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	var tx entity.Transaction
	err = db.GetContext(ctx, &tx, `SELECT `+transactionColumns+` FROM wallet_transactions WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &tx, nil
}

func (r *TransactionRepository) FindByReference(ctx context.Context, reference string) (*entity.Transaction, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	var tx entity.Transaction
	err = db.GetContext(ctx, &tx, `SELECT `+transactionColumns+` FROM wallet_transactions WHERE reference = ?`, reference)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &tx, nil
}

// Claim is the concurrency primitive the credit protocol rests on: the status
// transition happens inside a single conditional UPDATE, never as a read
// followed by a write.
func (r *TransactionRepository) Claim(ctx context.Context, id string, from, to entity.TransactionStatus) (bool, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return false, err
	}

	query := `UPDATE wallet_transactions SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`
	res, err := db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (r *TransactionRepository) SetExternalRef(ctx context.Context, id, externalRef string) error {
	db, err := r.DB.GetDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`UPDATE wallet_transactions SET external_ref = ?, updated_at = NOW() WHERE id = ?`,
		externalRef, id)
	return err
}

func (r *TransactionRepository) UpdateMetadata(ctx context.Context, id, metadata string) error {
	db, err := r.DB.GetDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`UPDATE wallet_transactions SET metadata = ?, updated_at = NOW() WHERE id = ?`,
		metadata, id)
	return err
}

func (r *TransactionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]entity.Transaction, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	var txs []entity.Transaction
	query := `SELECT ` + transactionColumns + ` FROM wallet_transactions WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`
	if err := db.SelectContext(ctx, &txs, query, userID, limit, offset); err != nil {
		return nil, err
	}

	return txs, nil
}

// FindPendingExternal returns every PENDING transaction that carries a poll
// handle at the payment gateway; these are the reconciliation candidates.
func (r *TransactionRepository) FindPendingExternal(ctx context.Context) ([]entity.Transaction, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	var txs []entity.Transaction
	query := `
		SELECT ` + transactionColumns + `
		FROM wallet_transactions
		WHERE status = 'PENDING' AND external_ref IS NOT NULL AND external_ref != ''
		ORDER BY created_at ASC
	`
	if err := db.SelectContext(ctx, &txs, query); err != nil {
		return nil, err
	}

	return txs, nil
}
