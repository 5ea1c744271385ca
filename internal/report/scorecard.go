// Package report renders evaluation results as Excel workbooks.
package report

import (
	"fmt"
	"io"

	"github.com/senyabanana/tender-evaluation/internal/services"

	"github.com/xuri/excelize/v2"
)

const (
	ScorecardSheet   = "Scorecard"
	SensitivitySheet = "Sensitivity"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var scorecardHeader = []any{
	"Final rank", "Bidder", "Technical avg", "Technical rank", "Commercial score",
	"Commercial rank", "Combined score", "Recommended", "Total price",
}

// WriteScorecard пишет книгу с листами Scorecard и Sensitivity в w.
func WriteScorecard(w io.Writer, scorecard *services.CombinedScorecardResult, analysis *services.SensitivityAnalysis) error {
	f, err := buildScorecard(scorecard, analysis)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Write(w)
}

// buildScorecard собирает книгу сравнения предложений.
func buildScorecard(scorecard *services.CombinedScorecardResult, analysis *services.SensitivityAnalysis) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", ScorecardSheet); err != nil {
		f.Close()
		return nil, err
	}
	if _, err := f.NewSheet(SensitivitySheet); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeScorecardSheet(f, scorecard); err != nil {
		f.Close()
		return nil, fmt.Errorf("scorecard sheet: %w", err)
	}
	if err := writeSensitivitySheet(f, analysis); err != nil {
		f.Close()
		return nil, fmt.Errorf("sensitivity sheet: %w", err)
	}
	return f, nil
}

func writeScorecardSheet(f *excelize.File, scorecard *services.CombinedScorecardResult) error {
	weights := fmt.Sprintf("Weights: technical %s / commercial %s", scorecard.TechnicalWeight, scorecard.CommercialWeight)
	if err := f.SetCellValue(ScorecardSheet, "A1", weights); err != nil {
		return err
	}
	if scorecard.CalculatedAt != nil {
		if err := f.SetCellValue(ScorecardSheet, "A2", "Calculated at "+scorecard.CalculatedAt.Format("2006-01-02 15:04 MST")); err != nil {
			return err
		}
	}
	if err := writeHeader(f, ScorecardSheet, 4, scorecardHeader); err != nil {
		return err
	}

	for i, e := range scorecard.Entries {
		recommended := ""
		if e.IsRecommended {
			recommended = "Yes"
		}
		row := []any{
			e.FinalRank,
			e.BidderName,
			e.TechnicalAverage.InexactFloat64(),
			e.TechnicalRank,
			e.CommercialScore.InexactFloat64(),
			e.CommercialRank,
			e.CombinedScore.InexactFloat64(),
			recommended,
			e.TotalPrice.InexactFloat64(),
		}
		if err := f.SetSheetRow(ScorecardSheet, fmt.Sprintf("A%d", i+5), &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(ScorecardSheet, "B", "B", 32)
}

func writeSensitivitySheet(f *excelize.File, analysis *services.SensitivityAnalysis) error {
	if !analysis.Available {
		return f.SetCellValue(SensitivitySheet, "A1", "Sensitivity analysis is not yet available")
	}

	header := []any{"Bidder", "Technical", "Commercial"}
	for _, label := range analysis.WeightSplits {
		header = append(header, label+" score", label+" rank")
	}
	header = append(header, "Rank varies")
	if err := writeHeader(f, SensitivitySheet, 1, header); err != nil {
		return err
	}

	for i, r := range analysis.Rows {
		row := []any{r.BidderName, r.TechnicalScore.InexactFloat64(), r.CommercialScore.InexactFloat64()}
		for _, label := range analysis.WeightSplits {
			row = append(row, r.ScoresBySplit[label].InexactFloat64(), r.RanksBySplit[label])
		}
		varies := "No"
		if r.HasRankVariation {
			varies = "Yes"
		}
		row = append(row, varies)
		if err := f.SetSheetRow(SensitivitySheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return err
		}
	}

	winnerRow := len(analysis.Rows) + 3
	winner := []any{"Winner"}
	for _, label := range analysis.WeightSplits {
		winner = append(winner, label, analysis.WinnerBySplit[label])
	}
	if err := f.SetSheetRow(SensitivitySheet, fmt.Sprintf("A%d", winnerRow), &winner); err != nil {
		return err
	}
	changes := "No"
	if analysis.WinnerChanges {
		changes = "Yes"
	}
	return f.SetSheetRow(SensitivitySheet, fmt.Sprintf("A%d", winnerRow+1), &[]any{"Winner changes", changes})
}

func writeHeader(f *excelize.File, sheet string, row int, header []any) error {
	start := fmt.Sprintf("A%d", row)
	if err := f.SetSheetRow(sheet, start, &header); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	end, err := excelize.CoordinatesToCellName(len(header), row)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, start, end, bold)
}
