package models

import "time"

type (
	WorkflowStatus string // Статус процесса утверждения
	LevelStatus    string // Статус уровня утверждения
	Decision       string // Решение утверждающего
)

const (
	WorkflowInProgress     WorkflowStatus = "InProgress"
	WorkflowApproved       WorkflowStatus = "Approved"
	WorkflowRejected       WorkflowStatus = "Rejected"
	WorkflowRevisionNeeded WorkflowStatus = "RevisionNeeded"

	LevelWaiting  LevelStatus = "Waiting"
	LevelActive   LevelStatus = "Active"
	LevelApproved LevelStatus = "Approved"
	LevelRejected LevelStatus = "Rejected"
	LevelReturned LevelStatus = "Returned"

	DecisionApprove           Decision = "Approve"
	DecisionReject            Decision = "Reject"
	DecisionReturnForRevision Decision = "ReturnForRevision"
)

// IsTerminal сообщает, что процесс завершен и решений больше не принимает.
func (s WorkflowStatus) IsTerminal() bool {
	return s != WorkflowInProgress
}

// CanReinitiate сообщает, можно ли запустить процесс заново.
func (s WorkflowStatus) CanReinitiate() bool {
	return s == WorkflowRejected || s == WorkflowRevisionNeeded
}

// Label возвращает текст решения для уведомлений.
func (d Decision) Label() string {
	switch d {
	case DecisionApprove:
		return "Approved"
	case DecisionReject:
		return "Rejected"
	case DecisionReturnForRevision:
		return "Returned for revision"
	default:
		return string(d)
	}
}

// ApprovalWorkflow - процесс многоуровневого утверждения победителя тендера.
type ApprovalWorkflow struct {
	ID           string         `json:"id"`
	TenderID     string         `json:"tenderId"`
	Status       WorkflowStatus `json:"status"`
	InitiatedBy  string         `json:"initiatedBy"`
	InitiatedAt  time.Time      `json:"initiatedAt"`
	AwardPackRef *string        `json:"awardPackRef,omitempty"`
	CompletedAt  *time.Time     `json:"completedAt,omitempty"`
}

// ApprovalLevel - один последовательный уровень утверждения.
type ApprovalLevel struct {
	ID              string      `json:"id"`
	WorkflowID      string      `json:"workflowId"`
	LevelNumber     int         `json:"levelNumber"`
	ApproverID      string      `json:"approverId"`
	Deadline        *time.Time  `json:"deadline,omitempty"`
	Status          LevelStatus `json:"status"`
	Decision        *Decision   `json:"decision,omitempty"`
	DecisionComment *string     `json:"decisionComment,omitempty"`
	DecidedAt       *time.Time  `json:"decidedAt,omitempty"`
	NotifiedAt      *time.Time  `json:"notifiedAt,omitempty"`
}
