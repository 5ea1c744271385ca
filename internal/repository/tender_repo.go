package repository

import (
	"context"
	"fmt"

	"github.com/senyabanana/tender-evaluation/internal/models"
)

// TenderRepository - интерфейс для работы с тендерами.
type TenderRepository interface {
	GetTender(ctx context.Context, tenderId string) (*models.Tender, error)
	UpdateTenderStatus(ctx context.Context, tenderId string, from, to models.TenderStatus) error
}

// PostgresTenderRepository - реализация TenderRepository для базы данных.
type PostgresTenderRepository struct {
	DB Querier
}

// NewPostgresTenderRepository создает новый экземпляр PostgresTenderRepository.
func NewPostgresTenderRepository(db Querier) *PostgresTenderRepository {
	return &PostgresTenderRepository{DB: db}
}

// GetTender возвращает тендер по ID.
func (r *PostgresTenderRepository) GetTender(ctx context.Context, tenderId string) (*models.Tender, error) {
	query := `
		SELECT id, reference, title, status, technical_weight, commercial_weight,
		       exclude_provisional_sums, exclude_alternates, version, created_at, updated_at
		FROM tender WHERE id = $1`
	var tender models.Tender
	err := r.DB.QueryRow(ctx, query, tenderId).Scan(
		&tender.ID,
		&tender.Reference,
		&tender.Title,
		&tender.Status,
		&tender.TechnicalWeight,
		&tender.CommercialWeight,
		&tender.ExcludeProvisionalSums,
		&tender.ExcludeAlternates,
		&tender.Version,
		&tender.CreatedAt,
		&tender.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &tender, nil
}

// UpdateTenderStatus меняет статус тендера, если он все еще равен from.
func (r *PostgresTenderRepository) UpdateTenderStatus(ctx context.Context, tenderId string, from, to models.TenderStatus) error {
	updateQuery := `
		UPDATE tender
		SET status = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND status = $3`
	tag, err := r.DB.Exec(ctx, updateQuery, to, tenderId, from)
	if err != nil {
		return fmt.Errorf("update tender status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}
