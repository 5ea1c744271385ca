package services

import (
	"context"
	"testing"

	"github.com/senyabanana/tender-evaluation/internal/models"
	"github.com/senyabanana/tender-evaluation/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sensitivityStore(t *testing.T, bids map[string][2]string) *memory.Store {
	t.Helper()
	store := newTestStore(models.EvaluationTender)
	for id, b := range bids {
		addBid(store, id, map[string]string{"a": "Alpha Build", "b": "Beta Roads", "c": "Gamma Civil"}[id], models.OpenedBid, b[0])
		addTechnical(store, "bidder-"+id, b[1])
	}
	_, err := newCommercialService(store).CalculateCommercialScores(context.Background(), models.Actor{}, testTenderID)
	require.NoError(t, err)
	return store
}

func TestGetSensitivityAnalysis_DominantBidderNeverChanges(t *testing.T) {
	store := sensitivityStore(t, map[string][2]string{
		"a": {"1000", "90"},
		"b": {"1250", "70"},
		"c": {"2000", "60"},
	})

	analysis, err := NewSensitivityAnalysisService(store).GetSensitivityAnalysis(context.Background(), testTenderID)
	require.NoError(t, err)

	assert.True(t, analysis.Available)
	assert.Equal(t, []string{"30/70", "35/65", "40/60", "45/55", "50/50", "55/45", "60/40", "65/35", "70/30"}, analysis.WeightSplits)
	assert.False(t, analysis.WinnerChanges)
	require.Len(t, analysis.WinnerBySplit, 9)
	for _, winner := range analysis.WinnerBySplit {
		assert.Equal(t, "Alpha Build", winner)
	}
	require.Len(t, analysis.Rows, 3)
	assert.Equal(t, "Alpha Build", analysis.Rows[0].BidderName)
	assert.Equal(t, 1, analysis.Rows[0].BestRank)
	assert.False(t, analysis.Rows[0].HasRankVariation)
	for _, rank := range analysis.Rows[0].RanksBySplit {
		assert.Equal(t, 1, rank)
	}
	// 0.4 * 90 + 0.6 * 100
	assert.Equal(t, "96.00", analysis.Rows[0].ScoresBySplit["40/60"].StringFixed(2))
}

func TestGetSensitivityAnalysis_WinnerChanges(t *testing.T) {
	// Alpha: тех. 100, комм. 50; Beta: тех. 50, комм. 100.
	store := sensitivityStore(t, map[string][2]string{
		"a": {"2000", "100"},
		"b": {"1000", "50"},
	})

	analysis, err := NewSensitivityAnalysisService(store).GetSensitivityAnalysis(context.Background(), testTenderID)
	require.NoError(t, err)

	assert.True(t, analysis.WinnerChanges)
	assert.Equal(t, "Beta Roads", analysis.WinnerBySplit["30/70"])
	assert.Equal(t, "Alpha Build", analysis.WinnerBySplit["50/50"])
	assert.Equal(t, "Alpha Build", analysis.WinnerBySplit["70/30"])

	require.Len(t, analysis.Rows, 2)
	alpha, beta := analysis.Rows[0], analysis.Rows[1]
	assert.Equal(t, "Alpha Build", alpha.BidderName)
	assert.Equal(t, "Beta Roads", beta.BidderName)
	assert.True(t, alpha.HasRankVariation)
	assert.True(t, beta.HasRankVariation)
	assert.Equal(t, 1, alpha.BestRank)
	assert.Equal(t, 1, beta.BestRank)
	assert.Equal(t, 2, alpha.RanksBySplit["30/70"])
	assert.Equal(t, 1, alpha.RanksBySplit["50/50"])
	assert.Equal(t, 1, beta.RanksBySplit["50/50"])
	assert.Equal(t, "65.00", alpha.ScoresBySplit["30/70"].StringFixed(2))
	assert.Equal(t, "85.00", beta.ScoresBySplit["30/70"].StringFixed(2))
}

func TestGetSensitivityAnalysis_NotYetAvailable(t *testing.T) {
	store := newTestStore(models.EvaluationTender)

	analysis, err := NewSensitivityAnalysisService(store).GetSensitivityAnalysis(context.Background(), testTenderID)
	require.NoError(t, err)
	assert.False(t, analysis.Available)
	assert.Len(t, analysis.WeightSplits, 9)
	assert.Empty(t, analysis.Rows)
	assert.Empty(t, analysis.WinnerBySplit)
	assert.False(t, analysis.WinnerChanges)
}

func TestGetSensitivityAnalysis_UnknownTender(t *testing.T) {
	store := newTestStore(models.EvaluationTender)
	_, err := NewSensitivityAnalysisService(store).GetSensitivityAnalysis(context.Background(), "missing")
	requireKind(t, err, models.KindNotFound)
}
