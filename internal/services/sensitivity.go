package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/senyabanana/tender-evaluation/internal/models"
	"github.com/senyabanana/tender-evaluation/internal/repository"

	"github.com/shopspring/decimal"
)

// WeightSplit - пара весов (технический/коммерческий) в процентах.
type WeightSplit struct {
	Technical  int
	Commercial int
}

// Label возвращает подпись вида "40/60".
func (w WeightSplit) Label() string {
	return fmt.Sprintf("%d/%d", w.Technical, w.Commercial)
}

// SensitivitySplits - фиксированный набор весов от 30/70 до 70/30 с шагом 5.
var SensitivitySplits = []WeightSplit{
	{30, 70}, {35, 65}, {40, 60}, {45, 55}, {50, 50},
	{55, 45}, {60, 40}, {65, 35}, {70, 30},
}

// SensitivityRow - результаты участника по всем наборам весов.
type SensitivityRow struct {
	BidderID         string                     `json:"bidderId"`
	BidderName       string                     `json:"bidderName"`
	TechnicalScore   decimal.Decimal            `json:"techScore"`
	CommercialScore  decimal.Decimal            `json:"commScore"`
	ScoresBySplit    map[string]decimal.Decimal `json:"scoresBySplit"`
	RanksBySplit     map[string]int             `json:"ranksBySplit"`
	BestRank         int                        `json:"bestRank"`
	HasRankVariation bool                       `json:"hasRankVariation"`
}

// SensitivityAnalysis - результат анализа чувствительности.
// Available = false, если коммерческие оценки еще не рассчитаны.
type SensitivityAnalysis struct {
	TenderID      string            `json:"tenderId"`
	Available     bool              `json:"available"`
	WeightSplits  []string          `json:"weightSplits"`
	Rows          []SensitivityRow  `json:"rows"`
	WinnerChanges bool              `json:"winnerChanges"`
	WinnerBySplit map[string]string `json:"winnerBySplit"`
}

// SensitivityAnalysisService пересчитывает ранжирование по альтернативным весам без сохранения.
type SensitivityAnalysisService struct {
	uow repository.UnitOfWork
}

// NewSensitivityAnalysisService создает новый экземпляр SensitivityAnalysisService.
func NewSensitivityAnalysisService(uow repository.UnitOfWork) *SensitivityAnalysisService {
	return &SensitivityAnalysisService{uow: uow}
}

// GetSensitivityAnalysis строит анализ по последнему прогону коммерческих оценок.
func (s *SensitivityAnalysisService) GetSensitivityAnalysis(ctx context.Context, tenderId string) (*SensitivityAnalysis, error) {
	var (
		commercial []models.CommercialScore
		averages   []models.TechnicalAverage
	)
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if _, err := repos.Tenders.GetTender(ctx, tenderId); err != nil {
			return storeError(err, "tender not found")
		}
		var err error
		if commercial, err = repos.Scores.GetLatestCommercialScores(ctx, tenderId); err != nil {
			return err
		}
		averages, err = repos.Scores.GetTechnicalAverages(ctx, tenderId)
		return err
	})
	if err != nil {
		return nil, storeError(err, "failed to load scores for sensitivity analysis")
	}
	return analyzeSensitivity(tenderId, joinScores(commercial, averages)), nil
}

func analyzeSensitivity(tenderId string, bidders []bidderScores) *SensitivityAnalysis {
	labels := make([]string, len(SensitivitySplits))
	for i, split := range SensitivitySplits {
		labels[i] = split.Label()
	}
	analysis := &SensitivityAnalysis{
		TenderID:      tenderId,
		WeightSplits:  labels,
		Rows:          []SensitivityRow{},
		WinnerBySplit: map[string]string{},
	}
	if len(bidders) == 0 {
		return analysis
	}
	analysis.Available = true

	rows := make([]SensitivityRow, len(bidders))
	for i, b := range bidders {
		rows[i] = SensitivityRow{
			BidderID:        b.bidderID,
			BidderName:      b.bidderName,
			TechnicalScore:  b.techAvg,
			CommercialScore: b.commScore,
			ScoresBySplit:   make(map[string]decimal.Decimal, len(SensitivitySplits)),
			RanksBySplit:    make(map[string]int, len(SensitivitySplits)),
		}
	}

	winners := make(map[string]struct{})
	for i, split := range SensitivitySplits {
		techWeight := decimal.NewFromInt(int64(split.Technical))
		commWeight := decimal.NewFromInt(int64(split.Commercial))

		values := make([]decimal.Decimal, len(bidders))
		for j, b := range bidders {
			values[j] = combinedScore(techWeight, commWeight, b)
			rows[j].ScoresBySplit[labels[i]] = values[j]
		}

		winner := -1
		for j, rank := range competitionRanks(values) {
			rows[j].RanksBySplit[labels[i]] = rank
			if rank == 1 && (winner < 0 || rows[j].BidderName < rows[winner].BidderName) {
				winner = j
			}
		}
		analysis.WinnerBySplit[labels[i]] = rows[winner].BidderName
		winners[rows[winner].BidderID] = struct{}{}
	}
	analysis.WinnerChanges = len(winners) > 1

	for i := range rows {
		first := rows[i].RanksBySplit[labels[0]]
		rows[i].BestRank = first
		for _, label := range labels[1:] {
			rank := rows[i].RanksBySplit[label]
			if rank != first {
				rows[i].HasRankVariation = true
			}
			if rank < rows[i].BestRank {
				rows[i].BestRank = rank
			}
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].BestRank != rows[j].BestRank {
			return rows[i].BestRank < rows[j].BestRank
		}
		return rows[i].BidderName < rows[j].BidderName
	})
	analysis.Rows = rows
	return analysis
}
