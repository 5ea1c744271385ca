package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/senyabanana/tender-evaluation/internal/models"
	"github.com/senyabanana/tender-evaluation/internal/notification"
	"github.com/senyabanana/tender-evaluation/internal/repository"
	"github.com/senyabanana/tender-evaluation/internal/repository/memory"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

const testTenderID = "tender-1"

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string {
	return &s
}

func testLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

func requireKind(t *testing.T, err error, kind models.ErrorKind) *models.ErrorResponse {
	t.Helper()
	var resp *models.ErrorResponse
	require.ErrorAs(t, err, &resp)
	require.Equal(t, kind, resp.Kind, resp.Message)
	return resp
}

func newTestStore(status models.TenderStatus) *memory.Store {
	store := memory.NewStore()
	store.AddTender(models.Tender{
		ID:               testTenderID,
		Reference:        "TND-2026-001",
		Title:            "Road resurfacing",
		Status:           status,
		TechnicalWeight:  dec("40"),
		CommercialWeight: dec("60"),
		Version:          1,
		CreatedAt:        fixedNow.Add(-72 * time.Hour),
		UpdatedAt:        fixedNow.Add(-72 * time.Hour),
	})
	for _, u := range []models.User{
		{ID: "initiator", Email: "initiator@tenders.local", FirstName: "Irina", LastName: "Petrova", IsActive: true},
		{ID: "approver-1", Email: "a1@tenders.local", FirstName: "Anton", LastName: "First", IsActive: true},
		{ID: "approver-2", Email: "a2@tenders.local", FirstName: "Boris", LastName: "Second", IsActive: true},
		{ID: "approver-3", Email: "a3@tenders.local", FirstName: "Vera", LastName: "Third", IsActive: true},
		{ID: "approver-4", Email: "a4@tenders.local", FirstName: "Gleb", LastName: "Fourth", IsActive: true},
		{ID: "retired", Email: "retired@tenders.local", FirstName: "Old", LastName: "Timer", IsActive: false},
	} {
		store.AddUser(u)
	}
	return store
}

func actorOf(store *memory.Store, userId string) models.Actor {
	var actor models.Actor
	_ = store.Do(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		u, err := repos.Users.GetUser(ctx, userId)
		if err != nil {
			actor = models.Actor{UserID: userId}
			return nil
		}
		actor = models.ActorFromUser(*u)
		return nil
	})
	return actor
}

func addBid(store *memory.Store, id, bidder string, status models.BidStatus, total string, pricing ...models.BidPricing) {
	b := models.BidSubmission{
		ID:         id,
		TenderID:   testTenderID,
		BidderID:   "bidder-" + id,
		BidderName: bidder,
		Currency:   "USD",
		Status:     status,
	}
	if total != "" {
		b.NativeTotalAmount = decimal.NewNullDecimal(dec(total))
		b.NormalizedTotalAmount = decimal.NewNullDecimal(dec(total))
	}
	store.AddSubmission(b, pricing...)
}

func addTechnical(store *memory.Store, bidderId string, scores ...string) {
	for i, s := range scores {
		panelist := "panelist-" + string(rune('a'+i))
		store.AddTechnicalScore(models.TechnicalScore{
			ID:          bidderId + "-" + panelist,
			TenderID:    testTenderID,
			BidderID:    bidderId,
			PanelistID:  panelist,
			CriterionID: "quality",
			Score:       dec(s),
		})
	}
}

func loadTender(t *testing.T, store *memory.Store) models.Tender {
	t.Helper()
	var tender models.Tender
	require.NoError(t, store.Do(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		got, err := repos.Tenders.GetTender(ctx, testTenderID)
		if err != nil {
			return err
		}
		tender = *got
		return nil
	}))
	return tender
}

func loadTrail(t *testing.T, store *memory.Store) []models.AuditLog {
	t.Helper()
	trail, err := NewAuditService(store).ListAuditTrail(context.Background(), models.EntityTender, testTenderID)
	require.NoError(t, err)
	return trail
}

// recordingSender запоминает отправленные уведомления и может имитировать сбой.
type recordingSender struct {
	mu        sync.Mutex
	requests  []notification.ApprovalRequest
	decisions []notification.ApprovalDecision
	awards    []notification.Award
	fail      bool
	panics    bool
}

var errMailDown = errors.New("mail transport unavailable")

func (s *recordingSender) outcome() error {
	if s.panics {
		panic("smtp client crashed")
	}
	if s.fail {
		return errMailDown
	}
	return nil
}

func (s *recordingSender) SendApprovalRequest(_ context.Context, msg notification.ApprovalRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, msg)
	return s.outcome()
}

func (s *recordingSender) SendApprovalDecision(_ context.Context, msg notification.ApprovalDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decisions = append(s.decisions, msg)
	return s.outcome()
}

func (s *recordingSender) SendAwardNotification(_ context.Context, msg notification.Award) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.awards = append(s.awards, msg)
	return s.outcome()
}

func (s *recordingSender) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests) + len(s.decisions) + len(s.awards)
}

func (s *recordingSender) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests, s.decisions, s.awards = nil, nil, nil
}
