package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/senyabanana/tender-evaluation/internal/models"
)

// BidRepository - интерфейс для работы с предложениями и их ценами.
type BidRepository interface {
	GetTenderSubmissions(ctx context.Context, tenderId string) ([]models.BidSubmission, error)
	GetTenderPricing(ctx context.Context, tenderId string) ([]models.BidPricing, error)
	UpdateSubmissionStatus(ctx context.Context, submissionId string, from, to models.BidStatus, at time.Time) error
}

// PostgresBidRepository - реализация BidRepository для базы данных.
type PostgresBidRepository struct {
	DB Querier
}

// NewPostgresBidRepository создает новый экземпляр PostgresBidRepository.
func NewPostgresBidRepository(db Querier) *PostgresBidRepository {
	return &PostgresBidRepository{DB: db}
}

// GetTenderSubmissions возвращает все предложения по тендеру.
func (r *PostgresBidRepository) GetTenderSubmissions(ctx context.Context, tenderId string) ([]models.BidSubmission, error) {
	query := `
		SELECT id, tender_id, bidder_id, bidder_name, currency, native_total_amount,
		       normalized_total_amount, status, submitted_at, opened_at
		FROM bid_submission
		WHERE tender_id = $1
		ORDER BY bidder_name`
	rows, err := r.DB.Query(ctx, query, tenderId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []models.BidSubmission
	for rows.Next() {
		var bid models.BidSubmission
		if err := rows.Scan(
			&bid.ID,
			&bid.TenderID,
			&bid.BidderID,
			&bid.BidderName,
			&bid.Currency,
			&bid.NativeTotalAmount,
			&bid.NormalizedTotalAmount,
			&bid.Status,
			&bid.SubmittedAt,
			&bid.OpenedAt); err != nil {
			return nil, err
		}
		bids = append(bids, bid)
	}
	return bids, rows.Err()
}

// GetTenderPricing возвращает строки цен всех предложений по тендеру.
func (r *PostgresBidRepository) GetTenderPricing(ctx context.Context, tenderId string) ([]models.BidPricing, error) {
	query := `
		SELECT p.id, p.submission_id, p.boq_node_id, p.node_type, p.item_type,
		       p.native_unit_rate, p.native_amount, p.normalized_unit_rate, p.normalized_amount,
		       p.is_included_in_total, p.is_outlier, p.is_no_bid
		FROM bid_pricing p
		JOIN bid_submission s ON s.id = p.submission_id
		WHERE s.tender_id = $1`
	rows, err := r.DB.Query(ctx, query, tenderId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pricing []models.BidPricing
	for rows.Next() {
		var p models.BidPricing
		if err := rows.Scan(
			&p.ID,
			&p.SubmissionID,
			&p.BoqNodeID,
			&p.NodeType,
			&p.ItemType,
			&p.NativeUnitRate,
			&p.NativeAmount,
			&p.NormalizedUnitRate,
			&p.NormalizedAmount,
			&p.IsIncludedInTotal,
			&p.IsOutlier,
			&p.IsNoBid); err != nil {
			return nil, err
		}
		pricing = append(pricing, p)
	}
	return pricing, rows.Err()
}

// UpdateSubmissionStatus меняет статус предложения, если он все еще равен from.
func (r *PostgresBidRepository) UpdateSubmissionStatus(ctx context.Context, submissionId string, from, to models.BidStatus, at time.Time) error {
	updateQuery := `
		UPDATE bid_submission
		SET status = $1,
		    opened_at = CASE WHEN $1 = 'Opened' THEN $2 ELSE opened_at END
		WHERE id = $3 AND status = $4`
	tag, err := r.DB.Exec(ctx, updateQuery, to, at, submissionId, from)
	if err != nil {
		return fmt.Errorf("update bid status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConcurrentUpdate
	}
	return nil
}
