package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TenderStatus string // Статус тендера

const (
	DraftTender      TenderStatus = "Draft"      // Тендер создан
	PublishedTender  TenderStatus = "Published"  // Тендер опубликован, идет прием предложений
	EvaluationTender TenderStatus = "Evaluation" // Идет оценка предложений
	AwardedTender    TenderStatus = "Awarded"    // Победитель утвержден
	CancelledTender  TenderStatus = "Cancelled"  // Тендер отменен
)

// Tender представляет модель тендера в объеме, нужном для оценки и утверждения.
type Tender struct {
	ID                     string          `json:"id"`
	Reference              string          `json:"reference"`
	Title                  string          `json:"title"`
	Status                 TenderStatus    `json:"status"`
	TechnicalWeight        decimal.Decimal `json:"technicalWeight"`
	CommercialWeight       decimal.Decimal `json:"commercialWeight"`
	ExcludeProvisionalSums bool            `json:"excludeProvisionalSums"`
	ExcludeAlternates      bool            `json:"excludeAlternates"`
	Version                int32           `json:"version"`
	CreatedAt              time.Time       `json:"createdAt"`
	UpdatedAt              time.Time       `json:"updatedAt"`
}
