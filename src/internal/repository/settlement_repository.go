package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"payment-service/src/internal/entity"
	"payment-service/src/pkg/databases/mysql"
)

type SettlementRepository struct {
	DB mysql.DBInterface
}

func NewSettlementRepository(db mysql.DBInterface) *SettlementRepository {
	return &SettlementRepository{
		DB: db,
	}
}

const settlementColumns = `id, driver_id, amount, fee, net_amount, period, period_start, period_end, status, reference, payment_ref, fail_reason, paid_at, created_at, updated_at`

// Create relies on the unique key (driver_id, period, period_start) so a
// crashed-and-restarted batch run cannot produce a second row.
func (r *SettlementRepository) Create(ctx context.Context, settlement *entity.Settlement) error {
	db, err := r.DB.GetDB()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO settlements
			(id, driver_id, amount, fee, net_amount, period, period_start, period_end, status, reference, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NOW(), NOW())
	`
	_, err = db.ExecContext(ctx, query,
		settlement.ID, settlement.DriverID, settlement.Amount, settlement.Fee, settlement.NetAmount,
		settlement.Period, settlement.PeriodStart, settlement.PeriodEnd, settlement.Status, settlement.Reference)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateSettlement
		}
		return err
	}

	return nil
}

func (r *SettlementRepository) FindByID(ctx context.Context, id string) (*entity.Settlement, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	var settlement entity.Settlement
	err = db.GetContext(ctx, &settlement, `SELECT `+settlementColumns+` FROM settlements WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &settlement, nil
}

func (r *SettlementRepository) Claim(ctx context.Context, id string, from, to entity.SettlementStatus) (bool, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return false, err
	}

	res, err := db.ExecContext(ctx,
		`UPDATE settlements SET status = ?, updated_at = NOW() WHERE id = ? AND status = ?`,
		to, id, from)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (r *SettlementRepository) SetOutcome(ctx context.Context, id string, status entity.SettlementStatus, paymentRef, failReason *string, paidAt *time.Time) error {
	db, err := r.DB.GetDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx,
		`UPDATE settlements SET status = ?, payment_ref = ?, fail_reason = ?, paid_at = ?, updated_at = NOW() WHERE id = ?`,
		status, paymentRef, failReason, paidAt, id)
	return err
}
