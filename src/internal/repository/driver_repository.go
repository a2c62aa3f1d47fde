package repository

import (
	"context"
	"database/sql"
	"errors"

	"payment-service/src/internal/entity"
	"payment-service/src/pkg/databases/mysql"
)

type DriverRepository struct {
	DB mysql.DBInterface
}

func NewDriverRepository(db mysql.DBInterface) *DriverRepository {
	return &DriverRepository{
		DB: db,
	}
}

const driverColumns = `driver_id, full_name, payout_address, total_earnings, is_verified, created_at`

func (r *DriverRepository) FindByID(ctx context.Context, driverID string) (*entity.Driver, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	var driver entity.Driver
	err = db.GetContext(ctx, &driver, `SELECT `+driverColumns+` FROM drivers WHERE driver_id = ?`, driverID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &driver, nil
}

func (r *DriverRepository) FindVerified(ctx context.Context) ([]entity.Driver, error) {
	db, err := r.DB.GetDB()
	if err != nil {
		return nil, err
	}

	var drivers []entity.Driver
	query := `SELECT ` + driverColumns + ` FROM drivers WHERE is_verified = 1`
	if err := db.SelectContext(ctx, &drivers, query); err != nil {
		return nil, err
	}

	return drivers, nil
}
