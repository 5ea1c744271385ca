package services

import (
	"context"
	"sort"
	"time"

	"github.com/senyabanana/tender-evaluation/internal/models"
	"github.com/senyabanana/tender-evaluation/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// CombinedScorecardResult - сохраненная таблица сравнения для пары весов.
// CalculatedAt пуст, если для этой пары весов расчет еще не выполнялся.
type CombinedScorecardResult struct {
	TenderID         string                     `json:"tenderId"`
	TechnicalWeight  decimal.Decimal            `json:"techWeight"`
	CommercialWeight decimal.Decimal            `json:"commWeight"`
	Entries          []models.CombinedScorecard `json:"entries"`
	CalculatedAt     *time.Time                 `json:"calculatedAt"`
}

// CombinedScoringService объединяет техническую и коммерческую оценки по весам тендера.
type CombinedScoringService struct {
	uow    repository.UnitOfWork
	logger logrus.FieldLogger
	now    func() time.Time
}

// NewCombinedScoringService создает новый экземпляр CombinedScoringService.
func NewCombinedScoringService(uow repository.UnitOfWork, logger logrus.FieldLogger) *CombinedScoringService {
	return &CombinedScoringService{uow: uow, logger: logger, now: time.Now}
}

// GetCombinedScorecard возвращает сохраненные строки для пары весов и никогда не пересчитывает их.
func (s *CombinedScoringService) GetCombinedScorecard(ctx context.Context, tenderId string, override WeightOverride) (*CombinedScorecardResult, error) {
	if err := override.Validate(); err != nil {
		return nil, err
	}

	var result *CombinedScorecardResult
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		tender, err := repos.Tenders.GetTender(ctx, tenderId)
		if err != nil {
			return storeError(err, "tender not found")
		}
		techWeight, commWeight := override.resolve(tender)

		cards, err := repos.Scores.GetCombinedScorecards(ctx, tenderId, techWeight, commWeight)
		if err != nil {
			return err
		}
		result = newScorecardResult(tenderId, techWeight, commWeight, cards)
		return nil
	})
	if err != nil {
		return nil, storeError(err, "failed to load combined scorecard")
	}
	return result, nil
}

// CalculateCombinedScores пересчитывает и заменяет строки сравнения для пары весов.
func (s *CombinedScoringService) CalculateCombinedScores(ctx context.Context, actor models.Actor, tenderId string, override WeightOverride) (*CombinedScorecardResult, error) {
	if err := override.Validate(); err != nil {
		return nil, err
	}
	calculatedAt := s.now().UTC()

	var result *CombinedScorecardResult
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		tender, err := repos.Tenders.GetTender(ctx, tenderId)
		if err != nil {
			return storeError(err, "tender not found")
		}
		if tender.Status != models.EvaluationTender {
			return models.NewInvalidState("combined scores can only be calculated while the tender is in evaluation")
		}
		techWeight, commWeight := override.resolve(tender)

		commercial, err := repos.Scores.GetLatestCommercialScores(ctx, tenderId)
		if err != nil {
			return err
		}
		if len(commercial) == 0 {
			return models.NewInvalidState("commercial scores have not been calculated for this tender")
		}
		averages, err := repos.Scores.GetTechnicalAverages(ctx, tenderId)
		if err != nil {
			return err
		}

		cards := combineScores(tenderId, techWeight, commWeight, commercial, averages, calculatedAt)
		if err := repos.Scores.ReplaceCombinedScorecards(ctx, tenderId, techWeight, commWeight, cards); err != nil {
			return err
		}
		result = newScorecardResult(tenderId, techWeight, commWeight, cards)

		return NewAuditRecorder(repos.Audit, actor, calculatedAt).Record(ctx,
			models.AuditCombinedScored, models.EntityTender, tenderId, nil, result)
	})
	if err != nil {
		return nil, storeError(err, "failed to calculate combined scores")
	}

	s.logger.WithFields(logrus.Fields{
		"module":     "services",
		"funcName":   "CalculateCombinedScores",
		"tenderId":   tenderId,
		"techWeight": result.TechnicalWeight.String(),
		"commWeight": result.CommercialWeight.String(),
	}).Info("combined scores calculated")
	return result, nil
}

func newScorecardResult(tenderId string, techWeight, commWeight decimal.Decimal, cards []models.CombinedScorecard) *CombinedScorecardResult {
	result := &CombinedScorecardResult{
		TenderID:         tenderId,
		TechnicalWeight:  techWeight,
		CommercialWeight: commWeight,
		Entries:          cards,
	}
	if result.Entries == nil {
		result.Entries = []models.CombinedScorecard{}
	}
	if len(cards) > 0 {
		at := cards[0].CalculatedAt
		result.CalculatedAt = &at
	}
	return result
}

// bidderScores - пара оценок участника, из которой строятся итоговые таблицы.
type bidderScores struct {
	bidderID   string
	bidderName string
	techAvg    decimal.Decimal
	commScore  decimal.Decimal
	totalPrice decimal.Decimal
}

// joinScores сопоставляет коммерческие оценки со средними техническими.
// Участник без технических оценок получает 0.
func joinScores(commercial []models.CommercialScore, averages []models.TechnicalAverage) []bidderScores {
	techByBidder := make(map[string]decimal.Decimal, len(averages))
	for _, a := range averages {
		techByBidder[a.BidderID] = a.Average.Round(2)
	}
	joined := make([]bidderScores, len(commercial))
	for i, c := range commercial {
		joined[i] = bidderScores{
			bidderID:   c.BidderID,
			bidderName: c.BidderName,
			techAvg:    techByBidder[c.BidderID],
			commScore:  c.Score,
			totalPrice: c.NormalizedTotalPrice,
		}
	}
	return joined
}

// combinedScore = techWeight/100 * techAvg + commWeight/100 * commScore, округление до 2 знаков.
func combinedScore(techWeight, commWeight decimal.Decimal, b bidderScores) decimal.Decimal {
	return weighted(techWeight, b.techAvg).Add(weighted(commWeight, b.commScore)).Round(2)
}

func combineScores(tenderId string, techWeight, commWeight decimal.Decimal, commercial []models.CommercialScore, averages []models.TechnicalAverage, calculatedAt time.Time) []models.CombinedScorecard {
	joined := joinScores(commercial, averages)

	techValues := make([]decimal.Decimal, len(joined))
	commValues := make([]decimal.Decimal, len(joined))
	combinedValues := make([]decimal.Decimal, len(joined))
	for i, b := range joined {
		techValues[i] = b.techAvg
		commValues[i] = b.commScore
		combinedValues[i] = combinedScore(techWeight, commWeight, b)
	}
	techRanks := competitionRanks(techValues)
	commRanks := competitionRanks(commValues)
	finalRanks := competitionRanks(combinedValues)

	cards := make([]models.CombinedScorecard, len(joined))
	for i, b := range joined {
		cards[i] = models.CombinedScorecard{
			ID:               uuid.New().String(),
			TenderID:         tenderId,
			BidderID:         b.bidderID,
			BidderName:       b.bidderName,
			TechnicalWeight:  techWeight,
			CommercialWeight: commWeight,
			TechnicalAverage: b.techAvg,
			TechnicalRank:    techRanks[i],
			CommercialScore:  b.commScore,
			CommercialRank:   commRanks[i],
			CombinedScore:    combinedValues[i],
			FinalRank:        finalRanks[i],
			IsRecommended:    finalRanks[i] == 1,
			TotalPrice:       b.totalPrice,
			CalculatedAt:     calculatedAt,
		}
	}
	sort.SliceStable(cards, func(i, j int) bool {
		if cards[i].FinalRank != cards[j].FinalRank {
			return cards[i].FinalRank < cards[j].FinalRank
		}
		return cards[i].BidderName < cards[j].BidderName
	})
	return cards
}
