package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type (
	BidStatus   string // Статус предложения
	BoqNodeType string // Тип узла ведомости объемов работ
	BoqItemType string // Вид позиции ведомости
)

const (
	DraftBid        BidStatus = "Draft"        // Черновик участника
	SubmittedBid    BidStatus = "Submitted"    // Предложение подано
	OpenedBid       BidStatus = "Opened"       // Предложение вскрыто
	DisqualifiedBid BidStatus = "Disqualified" // Предложение отклонено

	SectionNode BoqNodeType = "Section"
	ItemNode    BoqNodeType = "Item"

	StandardItem       BoqItemType = "Standard"
	ProvisionalSumItem BoqItemType = "ProvisionalSum"
	AlternateItem      BoqItemType = "Alternate"
)

// BidSubmission представляет предложение участника по тендеру.
type BidSubmission struct {
	ID                    string              `json:"id"`
	TenderID              string              `json:"tenderId"`
	BidderID              string              `json:"bidderId"`
	BidderName            string              `json:"bidderName"`
	Currency              string              `json:"currency"`
	NativeTotalAmount     decimal.NullDecimal `json:"nativeTotalAmount"`
	NormalizedTotalAmount decimal.NullDecimal `json:"normalizedTotalAmount"`
	Status                BidStatus           `json:"status"`
	SubmittedAt           *time.Time          `json:"submittedAt,omitempty"`
	OpenedAt              *time.Time          `json:"openedAt,omitempty"`
}

// BidPricing - цена по одному узлу ведомости в предложении.
type BidPricing struct {
	ID                 string              `json:"id"`
	SubmissionID       string              `json:"submissionId"`
	BoqNodeID          string              `json:"boqNodeId"`
	NodeType           BoqNodeType         `json:"nodeType"`
	ItemType           BoqItemType         `json:"itemType"`
	NativeUnitRate     decimal.NullDecimal `json:"nativeUnitRate"`
	NativeAmount       decimal.NullDecimal `json:"nativeAmount"`
	NormalizedUnitRate decimal.NullDecimal `json:"normalizedUnitRate"`
	NormalizedAmount   decimal.NullDecimal `json:"normalizedAmount"`
	IsIncludedInTotal  bool                `json:"isIncludedInTotal"`
	IsOutlier          bool                `json:"isOutlier"`
	IsNoBid            bool                `json:"isNoBid"`
}
