package repository

import (
	"context"
	"fmt"

	"github.com/senyabanana/tender-evaluation/internal/models"

	"github.com/shopspring/decimal"
)

// ScoreRepository - интерфейс для хранения результатов оценки.
type ScoreRepository interface {
	SaveCommercialScores(ctx context.Context, scores []models.CommercialScore) error
	GetLatestCommercialScores(ctx context.Context, tenderId string) ([]models.CommercialScore, error)
	GetTechnicalAverages(ctx context.Context, tenderId string) ([]models.TechnicalAverage, error)
	ReplaceCombinedScorecards(ctx context.Context, tenderId string, techWeight, commWeight decimal.Decimal, cards []models.CombinedScorecard) error
	GetCombinedScorecards(ctx context.Context, tenderId string, techWeight, commWeight decimal.Decimal) ([]models.CombinedScorecard, error)
}

// PostgresScoreRepository - реализация ScoreRepository для базы данных.
type PostgresScoreRepository struct {
	DB Querier
}

// NewPostgresScoreRepository создает новый экземпляр PostgresScoreRepository.
func NewPostgresScoreRepository(db Querier) *PostgresScoreRepository {
	return &PostgresScoreRepository{DB: db}
}

// SaveCommercialScores добавляет результаты нового расчета; прежние расчеты остаются в истории.
func (r *PostgresScoreRepository) SaveCommercialScores(ctx context.Context, scores []models.CommercialScore) error {
	insertQuery := `
		INSERT INTO commercial_score (id, tender_id, bidder_id, bidder_name, normalized_total_price, score, rank, calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for _, s := range scores {
		_, err := r.DB.Exec(ctx, insertQuery,
			s.ID,
			s.TenderID,
			s.BidderID,
			s.BidderName,
			s.NormalizedTotalPrice,
			s.Score,
			s.Rank,
			s.CalculatedAt)
		if err != nil {
			return fmt.Errorf("insert commercial score: %w", err)
		}
	}
	return nil
}

// GetLatestCommercialScores возвращает результаты последнего расчета по тендеру.
func (r *PostgresScoreRepository) GetLatestCommercialScores(ctx context.Context, tenderId string) ([]models.CommercialScore, error) {
	query := `
		SELECT id, tender_id, bidder_id, bidder_name, normalized_total_price, score, rank, calculated_at
		FROM commercial_score
		WHERE tender_id = $1
		  AND calculated_at = (SELECT MAX(calculated_at) FROM commercial_score WHERE tender_id = $1)
		ORDER BY rank, bidder_name`
	rows, err := r.DB.Query(ctx, query, tenderId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []models.CommercialScore
	for rows.Next() {
		var s models.CommercialScore
		if err := rows.Scan(&s.ID, &s.TenderID, &s.BidderID, &s.BidderName, &s.NormalizedTotalPrice, &s.Score, &s.Rank, &s.CalculatedAt); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}

// GetTechnicalAverages возвращает среднюю техническую оценку каждого участника без черновиков.
func (r *PostgresScoreRepository) GetTechnicalAverages(ctx context.Context, tenderId string) ([]models.TechnicalAverage, error) {
	query := `
		SELECT bidder_id, AVG(score)
		FROM technical_score
		WHERE tender_id = $1 AND NOT is_draft
		GROUP BY bidder_id`
	rows, err := r.DB.Query(ctx, query, tenderId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var averages []models.TechnicalAverage
	for rows.Next() {
		var a models.TechnicalAverage
		if err := rows.Scan(&a.BidderID, &a.Average); err != nil {
			return nil, err
		}
		averages = append(averages, a)
	}
	return averages, rows.Err()
}

// ReplaceCombinedScorecards заменяет сохраненные строки сравнения для пары весов.
func (r *PostgresScoreRepository) ReplaceCombinedScorecards(ctx context.Context, tenderId string, techWeight, commWeight decimal.Decimal, cards []models.CombinedScorecard) error {
	deleteQuery := `DELETE FROM combined_scorecard WHERE tender_id = $1 AND technical_weight = $2 AND commercial_weight = $3`
	if _, err := r.DB.Exec(ctx, deleteQuery, tenderId, techWeight, commWeight); err != nil {
		return fmt.Errorf("delete combined scorecards: %w", err)
	}

	insertQuery := `
		INSERT INTO combined_scorecard (
			id, tender_id, bidder_id, bidder_name, technical_weight, commercial_weight,
			technical_average, technical_rank, commercial_score, commercial_rank,
			combined_score, final_rank, is_recommended, total_price, calculated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	for _, c := range cards {
		_, err := r.DB.Exec(ctx, insertQuery,
			c.ID,
			c.TenderID,
			c.BidderID,
			c.BidderName,
			c.TechnicalWeight,
			c.CommercialWeight,
			c.TechnicalAverage,
			c.TechnicalRank,
			c.CommercialScore,
			c.CommercialRank,
			c.CombinedScore,
			c.FinalRank,
			c.IsRecommended,
			c.TotalPrice,
			c.CalculatedAt)
		if err != nil {
			return fmt.Errorf("insert combined scorecard: %w", err)
		}
	}
	return nil
}

// GetCombinedScorecards возвращает сохраненные строки сравнения для пары весов.
func (r *PostgresScoreRepository) GetCombinedScorecards(ctx context.Context, tenderId string, techWeight, commWeight decimal.Decimal) ([]models.CombinedScorecard, error) {
	query := `
		SELECT id, tender_id, bidder_id, bidder_name, technical_weight, commercial_weight,
		       technical_average, technical_rank, commercial_score, commercial_rank,
		       combined_score, final_rank, is_recommended, total_price, calculated_at
		FROM combined_scorecard
		WHERE tender_id = $1 AND technical_weight = $2 AND commercial_weight = $3
		ORDER BY final_rank, bidder_name`
	rows, err := r.DB.Query(ctx, query, tenderId, techWeight, commWeight)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []models.CombinedScorecard
	for rows.Next() {
		var c models.CombinedScorecard
		if err := rows.Scan(
			&c.ID,
			&c.TenderID,
			&c.BidderID,
			&c.BidderName,
			&c.TechnicalWeight,
			&c.CommercialWeight,
			&c.TechnicalAverage,
			&c.TechnicalRank,
			&c.CommercialScore,
			&c.CommercialRank,
			&c.CombinedScore,
			&c.FinalRank,
			&c.IsRecommended,
			&c.TotalPrice,
			&c.CalculatedAt); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}
