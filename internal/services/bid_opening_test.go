package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/senyabanana/tender-evaluation/internal/models"
	"github.com/senyabanana/tender-evaluation/internal/repository"
	"github.com/senyabanana/tender-evaluation/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBidOpeningService(store *memory.Store) *BidOpeningService {
	svc := NewBidOpeningService(store, testLogger())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestOpenBids(t *testing.T) {
	store := newTestStore(models.PublishedTender)
	addBid(store, "a", "Alpha Build", models.SubmittedBid, "1000")
	addBid(store, "b", "Beta Roads", models.SubmittedBid, "1200")
	addBid(store, "c", "Gamma Civil", models.DraftBid, "900")

	result, err := newBidOpeningService(store).OpenBids(context.Background(), actorOf(store, "initiator"), testTenderID)
	require.NoError(t, err)

	assert.Equal(t, 2, result.OpenedCount)
	assert.True(t, result.OpenedAt.Equal(fixedNow))
	for _, b := range result.Bids {
		assert.Equal(t, models.OpenedBid, b.Status)
		require.NotNil(t, b.OpenedAt)
	}
	assert.Equal(t, models.EvaluationTender, loadTender(t, store).Status)

	require.NoError(t, store.Do(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
		bids, err := repos.Bids.GetTenderSubmissions(ctx, testTenderID)
		require.NoError(t, err)
		statuses := map[string]models.BidStatus{}
		for _, b := range bids {
			statuses[b.BidderName] = b.Status
		}
		assert.Equal(t, map[string]models.BidStatus{
			"Alpha Build": models.OpenedBid,
			"Beta Roads":  models.OpenedBid,
			"Gamma Civil": models.DraftBid,
		}, statuses)
		return nil
	}))

	trail := loadTrail(t, store)
	require.Len(t, trail, 1)
	assert.Equal(t, models.AuditBidsOpened, trail[0].Action)
	var newValues struct {
		Status     models.TenderStatus `json:"status"`
		OpenedBids []string            `json:"openedBids"`
	}
	require.NoError(t, json.Unmarshal(trail[0].NewValues, &newValues))
	assert.Equal(t, models.EvaluationTender, newValues.Status)
	assert.ElementsMatch(t, []string{"a", "b"}, newValues.OpenedBids)
}

func TestOpenBids_Failures(t *testing.T) {
	t.Run("already opened", func(t *testing.T) {
		store := newTestStore(models.PublishedTender)
		addBid(store, "a", "Alpha Build", models.SubmittedBid, "1000")
		svc := newBidOpeningService(store)
		_, err := svc.OpenBids(context.Background(), models.Actor{}, testTenderID)
		require.NoError(t, err)

		_, err = svc.OpenBids(context.Background(), models.Actor{}, testTenderID)
		resp := requireKind(t, err, models.KindInvalidState)
		assert.Contains(t, resp.Message, "already been opened")
	})
	t.Run("draft tender", func(t *testing.T) {
		store := newTestStore(models.DraftTender)
		_, err := newBidOpeningService(store).OpenBids(context.Background(), models.Actor{}, testTenderID)
		requireKind(t, err, models.KindInvalidState)
	})
	t.Run("nothing submitted", func(t *testing.T) {
		store := newTestStore(models.PublishedTender)
		addBid(store, "a", "Alpha Build", models.DraftBid, "1000")
		_, err := newBidOpeningService(store).OpenBids(context.Background(), models.Actor{}, testTenderID)
		requireKind(t, err, models.KindInvalidState)
		assert.Equal(t, models.PublishedTender, loadTender(t, store).Status)
	})
	t.Run("unknown tender", func(t *testing.T) {
		store := newTestStore(models.PublishedTender)
		_, err := newBidOpeningService(store).OpenBids(context.Background(), models.Actor{}, "missing")
		requireKind(t, err, models.KindNotFound)
	})
}
