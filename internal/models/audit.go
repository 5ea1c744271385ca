package models

import (
	"encoding/json"
	"time"
)

const (
	AuditApprovalInitiated   = "ApprovalInitiated"
	AuditApprovalReinitiated = "ApprovalReinitiated"
	AuditApproversChanged    = "ApprovalApproversChanged"
	AuditApprovalDecision    = "ApprovalDecision"
	AuditTenderAwarded       = "TenderAwarded"
	AuditBidsOpened          = "BidsOpened"
	AuditCommercialScored    = "CommercialScoresCalculated"
	AuditCombinedScored      = "CombinedScoresCalculated"

	EntityTender = "Tender"
)

// AuditLog - неизменяемая запись журнала аудита.
type AuditLog struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	UserEmail  string          `json:"userEmail"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	OldValues  json.RawMessage `json:"oldValues,omitempty"`
	NewValues  json.RawMessage `json:"newValues,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}
