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

// CommercialScoringService переводит нормализованные суммы предложений в баллы 0-100.
type CommercialScoringService struct {
	uow    repository.UnitOfWork
	logger logrus.FieldLogger
	now    func() time.Time
}

// NewCommercialScoringService создает новый экземпляр CommercialScoringService.
func NewCommercialScoringService(uow repository.UnitOfWork, logger logrus.FieldLogger) *CommercialScoringService {
	return &CommercialScoringService{uow: uow, logger: logger, now: time.Now}
}

type pricedBid struct {
	submission models.BidSubmission
	total      decimal.Decimal
}

// CalculateCommercialScores рассчитывает и сохраняет новый прогон коммерческих оценок.
// Если допустимых предложений нет, возвращается пустой результат без ошибки.
func (s *CommercialScoringService) CalculateCommercialScores(ctx context.Context, actor models.Actor, tenderId string) ([]models.CommercialScore, error) {
	calculatedAt := s.now().UTC()
	var scores []models.CommercialScore

	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		tender, err := repos.Tenders.GetTender(ctx, tenderId)
		if err != nil {
			return storeError(err, "tender not found")
		}
		if tender.Status != models.EvaluationTender {
			return models.NewInvalidState("commercial scores can only be calculated while the tender is in evaluation")
		}

		submissions, err := repos.Bids.GetTenderSubmissions(ctx, tenderId)
		if err != nil {
			return err
		}
		pricing, err := repos.Bids.GetTenderPricing(ctx, tenderId)
		if err != nil {
			return err
		}

		bids := scoreableBids(tender, submissions, pricing)
		if len(bids) == 0 {
			scores = []models.CommercialScore{}
			return nil
		}
		scores = scoreBids(tenderId, bids, calculatedAt)

		if err := repos.Scores.SaveCommercialScores(ctx, scores); err != nil {
			return err
		}
		return NewAuditRecorder(repos.Audit, actor, calculatedAt).Record(ctx,
			models.AuditCommercialScored, models.EntityTender, tenderId, nil, scores)
	})
	if err != nil {
		return nil, storeError(err, "failed to calculate commercial scores")
	}

	s.logger.WithFields(logrus.Fields{
		"module":   "services",
		"funcName": "CalculateCommercialScores",
		"tenderId": tenderId,
		"bidders":  len(scores),
	}).Info("commercial scores calculated")
	return scores, nil
}

// scoreableBids отбирает поданные предложения с положительной нормализованной суммой.
// По настройкам тендера из суммы вычитаются резервные суммы и альтернативные позиции.
func scoreableBids(tender *models.Tender, submissions []models.BidSubmission, pricing []models.BidPricing) []pricedBid {
	excluded := make(map[string]decimal.Decimal)
	for _, p := range pricing {
		if !isExcludedItem(tender, p) {
			continue
		}
		excluded[p.SubmissionID] = excluded[p.SubmissionID].Add(p.NormalizedAmount.Decimal)
	}

	bids := make([]pricedBid, 0, len(submissions))
	for _, sub := range submissions {
		if sub.Status != models.SubmittedBid && sub.Status != models.OpenedBid {
			continue
		}
		if !sub.NormalizedTotalAmount.Valid {
			continue
		}
		total := sub.NormalizedTotalAmount.Decimal.Sub(excluded[sub.ID])
		if !total.IsPositive() {
			continue
		}
		bids = append(bids, pricedBid{submission: sub, total: total})
	}
	return bids
}

func isExcludedItem(tender *models.Tender, p models.BidPricing) bool {
	if p.NodeType != models.ItemNode || !p.IsIncludedInTotal || p.IsNoBid || !p.NormalizedAmount.Valid {
		return false
	}
	switch p.ItemType {
	case models.ProvisionalSumItem:
		return tender.ExcludeProvisionalSums
	case models.AlternateItem:
		return tender.ExcludeAlternates
	default:
		return false
	}
}

// minCommercialScore - нижняя граница балла: положительная сумма не получает 0.
var minCommercialScore = decimal.New(1, -2)

// scoreBids считает балл round(lowest / total * 100, 2) и места с общими местами при равенстве.
func scoreBids(tenderId string, bids []pricedBid, calculatedAt time.Time) []models.CommercialScore {
	lowest := bids[0].total
	for _, b := range bids[1:] {
		if b.total.LessThan(lowest) {
			lowest = b.total
		}
	}

	values := make([]decimal.Decimal, len(bids))
	scores := make([]models.CommercialScore, len(bids))
	for i, b := range bids {
		score := decimal.Max(lowest.Div(b.total).Mul(hundred).Round(2), minCommercialScore)
		values[i] = score
		scores[i] = models.CommercialScore{
			ID:                   uuid.New().String(),
			TenderID:             tenderId,
			BidderID:             b.submission.BidderID,
			BidderName:           b.submission.BidderName,
			NormalizedTotalPrice: b.total,
			Score:                score,
			CalculatedAt:         calculatedAt,
		}
	}
	for i, rank := range competitionRanks(values) {
		scores[i].Rank = rank
	}
	sortByRank(scores)
	return scores
}

func sortByRank(scores []models.CommercialScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].Rank != scores[j].Rank {
			return scores[i].Rank < scores[j].Rank
		}
		return scores[i].BidderName < scores[j].BidderName
	})
}
