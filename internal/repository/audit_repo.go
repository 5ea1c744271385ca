package repository

import (
	"context"
	"fmt"

	"github.com/senyabanana/tender-evaluation/internal/models"
)

// AuditRepository - журнал аудита, только добавление и чтение.
type AuditRepository interface {
	Append(ctx context.Context, entry models.AuditLog) error
	GetEntityTrail(ctx context.Context, entityType, entityId string) ([]models.AuditLog, error)
}

// PostgresAuditRepository - реализация AuditRepository для базы данных.
type PostgresAuditRepository struct {
	DB Querier
}

// NewPostgresAuditRepository создает новый экземпляр PostgresAuditRepository.
func NewPostgresAuditRepository(db Querier) *PostgresAuditRepository {
	return &PostgresAuditRepository{DB: db}
}

// Append добавляет запись в журнал.
func (r *PostgresAuditRepository) Append(ctx context.Context, entry models.AuditLog) error {
	insertQuery := `
		INSERT INTO audit_log (id, user_id, user_email, action, entity_type, entity_id, old_values, new_values, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8::jsonb, $9)`
	_, err := r.DB.Exec(ctx, insertQuery,
		entry.ID,
		entry.UserID,
		entry.UserEmail,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		nullableJSON(entry.OldValues),
		nullableJSON(entry.NewValues),
		entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// GetEntityTrail возвращает записи по сущности, новые первыми.
func (r *PostgresAuditRepository) GetEntityTrail(ctx context.Context, entityType, entityId string) ([]models.AuditLog, error) {
	query := `
		SELECT id, user_id, user_email, action, entity_type, entity_id,
		       COALESCE(old_values::text, ''), COALESCE(new_values::text, ''), created_at
		FROM audit_log
		WHERE entity_type = $1 AND entity_id = $2
		ORDER BY created_at DESC`
	rows, err := r.DB.Query(ctx, query, entityType, entityId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AuditLog
	for rows.Next() {
		var e models.AuditLog
		var oldValues, newValues string
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserEmail, &e.Action, &e.EntityType, &e.EntityID, &oldValues, &newValues, &e.CreatedAt); err != nil {
			return nil, err
		}
		if oldValues != "" {
			e.OldValues = []byte(oldValues)
		}
		if newValues != "" {
			e.NewValues = []byte(newValues)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullableJSON(raw []byte) *string {
	if len(raw) == 0 {
		return nil
	}
	s := string(raw)
	return &s
}
