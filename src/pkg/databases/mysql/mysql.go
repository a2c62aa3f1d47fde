package mysql

import (
	"context"
	"fmt"
	"time"

	"payment-service/src/pkg/log"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/viper"
)

type DBInterface interface {
	GetDB() (*sqlx.DB, error)
	WithTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

type DB struct {
	db *sqlx.DB
}

func InitConnection(v *viper.Viper, logger log.Log) (DBInterface, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=UTC",
		v.GetString("database.username"),
		v.GetString("database.password"),
		v.GetString("database.host"),
		v.GetInt("database.port"),
		v.GetString("database.name"),
	)

	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		logger.Error("mysql", fmt.Sprintf("failed to connect database: %v", err), "InitConnection", "")
		return nil, err
	}

	db.SetMaxOpenConns(v.GetInt("database.pool.max_open"))
	db.SetMaxIdleConns(v.GetInt("database.pool.max_idle"))
	db.SetConnMaxLifetime(time.Duration(v.GetInt("database.pool.max_lifetime_minutes")) * time.Minute)

	logger.Info("mysql", "database connection established", "InitConnection", v.GetString("database.name"))
	return &DB{db: db}, nil
}

func (d *DB) GetDB() (*sqlx.DB, error) {
	if d.db == nil {
		return nil, fmt.Errorf("database connection is not initialized")
	}
	return d.db, nil
}

// WithTransaction runs fn inside a single database transaction. A non-nil
// error from fn rolls everything back.
func (d *DB) WithTransaction(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	db, err := d.GetDB()
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	return tx.Commit()
}
