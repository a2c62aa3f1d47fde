package repository

import (
	"context"
	"time"

	"payment-service/src/pkg/databases/mysql"

	"github.com/shopspring/decimal"
)

type RideRepository struct {
	DB mysql.DBInterface
}

func NewRideRepository(db mysql.DBInterface) *RideRepository {
	return &RideRepository{
		DB: db,
	}
}

// SumCompletedFares totals the fares of a driver's completed, paid rides whose
// completion falls inside [start, end).
func (r *RideRepository) SumCompletedFares(ctx context.Context, driverID string, start, end time.Time) (decimal.Decimal, int, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return decimal.Zero, 0, err
	}

	var row struct {
		Total decimal.Decimal `db:"total"`
		Count int             `db:"cnt"`
	}
	query := `
		SELECT COALESCE(SUM(fare), 0) AS total, COUNT(*) AS cnt
		FROM ride_orders
		WHERE driver_id = ?
		AND status = 'COMPLETED'
		AND is_paid = 1
		AND completed_at >= ?
		AND completed_at < ?
	`
	if err := db.GetContext(ctx, &row, query, driverID, start, end); err != nil {
		return decimal.Zero, 0, err
	}

	return row.Total, row.Count, nil
}
