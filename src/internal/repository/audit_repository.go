package repository

import (
	"context"

	"payment-service/src/internal/entity"
	"payment-service/src/pkg/databases/mysql"
)

type AuditRepository struct {
	DB mysql.DBInterface
}

func NewAuditRepository(db mysql.DBInterface) *AuditRepository {
	return &AuditRepository{
		DB: db,
	}
}

func (r *AuditRepository) Append(ctx context.Context, log *entity.AuditLog) error {
	db, err := r.DB.GetDB()
	if err != nil {
		return err
	}

	query := `
		INSERT INTO audit_logs (actor, action, entity, entity_id, detail, created_at)
		VALUES (?, ?, ?, ?, ?, NOW())
	`
	_, err = db.ExecContext(ctx, query, log.Actor, log.Action, log.Entity, log.EntityID, log.Detail)
	return err
}
