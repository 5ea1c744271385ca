package services

import (
	"context"
	"time"

	"github.com/senyabanana/tender-evaluation/internal/models"
	"github.com/senyabanana/tender-evaluation/internal/repository"

	"github.com/sirupsen/logrus"
)

// OpenBidsResult - результат вскрытия предложений.
type OpenBidsResult struct {
	TenderID    string                 `json:"tenderId"`
	OpenedCount int                    `json:"openedCount"`
	OpenedAt    time.Time              `json:"openedAt"`
	Bids        []models.BidSubmission `json:"bids"`
}

// BidOpeningService вскрывает поданные предложения и переводит тендер в оценку.
type BidOpeningService struct {
	uow    repository.UnitOfWork
	logger logrus.FieldLogger
	now    func() time.Time
}

// NewBidOpeningService создает новый экземпляр BidOpeningService.
func NewBidOpeningService(uow repository.UnitOfWork, logger logrus.FieldLogger) *BidOpeningService {
	return &BidOpeningService{uow: uow, logger: logger, now: time.Now}
}

// OpenBids переводит все поданные предложения в Opened, а тендер из Published в Evaluation.
func (s *BidOpeningService) OpenBids(ctx context.Context, actor models.Actor, tenderId string) (*OpenBidsResult, error) {
	openedAt := s.now().UTC()
	result := &OpenBidsResult{TenderID: tenderId, OpenedAt: openedAt, Bids: []models.BidSubmission{}}

	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		tender, err := repos.Tenders.GetTender(ctx, tenderId)
		if err != nil {
			return storeError(err, "tender not found")
		}
		switch tender.Status {
		case models.PublishedTender:
		case models.EvaluationTender, models.AwardedTender:
			return models.NewInvalidState("bids for this tender have already been opened")
		default:
			return models.NewInvalidState("bids can only be opened for a published tender, current status is " + string(tender.Status))
		}

		submissions, err := repos.Bids.GetTenderSubmissions(ctx, tenderId)
		if err != nil {
			return err
		}
		for _, sub := range submissions {
			if sub.Status != models.SubmittedBid {
				continue
			}
			if err := repos.Bids.UpdateSubmissionStatus(ctx, sub.ID, models.SubmittedBid, models.OpenedBid, openedAt); err != nil {
				return concurrentUpdate(err, "bids were opened by another request, refresh and retry")
			}
			sub.Status = models.OpenedBid
			at := openedAt
			sub.OpenedAt = &at
			result.Bids = append(result.Bids, sub)
		}
		if len(result.Bids) == 0 {
			return models.NewInvalidState("there are no submitted bids to open")
		}
		result.OpenedCount = len(result.Bids)

		if err := repos.Tenders.UpdateTenderStatus(ctx, tenderId, models.PublishedTender, models.EvaluationTender); err != nil {
			return concurrentUpdate(err, "tender status was changed by another request, refresh and retry")
		}

		bidIds := make([]string, len(result.Bids))
		for i, b := range result.Bids {
			bidIds[i] = b.ID
		}
		return NewAuditRecorder(repos.Audit, actor, openedAt).Record(ctx,
			models.AuditBidsOpened, models.EntityTender, tenderId,
			map[string]any{"status": tender.Status},
			map[string]any{"status": models.EvaluationTender, "openedBids": bidIds})
	})
	if err != nil {
		return nil, storeError(err, "failed to open bids")
	}

	s.logger.WithFields(logrus.Fields{
		"module":   "services",
		"funcName": "OpenBids",
		"tenderId": tenderId,
		"opened":   result.OpenedCount,
	}).Info("bids opened")
	return result, nil
}
