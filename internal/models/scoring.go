package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CommercialScore - результат одного расчета коммерческой оценки участника.
type CommercialScore struct {
	ID                   string          `json:"id"`
	TenderID             string          `json:"tenderId"`
	BidderID             string          `json:"bidderId"`
	BidderName           string          `json:"bidderName"`
	NormalizedTotalPrice decimal.Decimal `json:"normalizedTotal"`
	Score                decimal.Decimal `json:"score"`
	Rank                 int             `json:"rank"`
	CalculatedAt         time.Time       `json:"calculatedAt"`
}

// TechnicalScore - оценка одного члена комиссии по одному критерию.
type TechnicalScore struct {
	ID          string          `json:"id"`
	TenderID    string          `json:"tenderId"`
	BidderID    string          `json:"bidderId"`
	PanelistID  string          `json:"panelistId"`
	CriterionID string          `json:"criterionId"`
	Score       decimal.Decimal `json:"score"`
	IsDraft     bool            `json:"isDraft"`
}

// TechnicalAverage - средняя техническая оценка участника по неотмеченным как черновик оценкам.
type TechnicalAverage struct {
	BidderID string          `json:"bidderId"`
	Average  decimal.Decimal `json:"average"`
}

// CombinedScorecard - итоговая строка сравнения для пары весов.
type CombinedScorecard struct {
	ID               string          `json:"id"`
	TenderID         string          `json:"tenderId"`
	BidderID         string          `json:"bidderId"`
	BidderName       string          `json:"bidderName"`
	TechnicalWeight  decimal.Decimal `json:"techWeight"`
	CommercialWeight decimal.Decimal `json:"commWeight"`
	TechnicalAverage decimal.Decimal `json:"techAvg"`
	TechnicalRank    int             `json:"techRank"`
	CommercialScore  decimal.Decimal `json:"commScore"`
	CommercialRank   int             `json:"commRank"`
	CombinedScore    decimal.Decimal `json:"combined"`
	FinalRank        int             `json:"finalRank"`
	IsRecommended    bool            `json:"isRecommended"`
	TotalPrice       decimal.Decimal `json:"totalPrice"`
	CalculatedAt     time.Time       `json:"calculatedAt"`
}
