// Package notification delivers approval e-mails. Delivery is best effort: callers log failures
// and never roll back the state change the message describes.
package notification

import (
	"context"
	"time"
)

// Sender - контракт отправки уведомлений о процессе утверждения.
type Sender interface {
	SendApprovalRequest(ctx context.Context, msg ApprovalRequest) error
	SendApprovalDecision(ctx context.Context, msg ApprovalDecision) error
	SendAwardNotification(ctx context.Context, msg Award) error
}

// ApprovalRequest - просьба утвердить уровень.
type ApprovalRequest struct {
	ApproverEmail     string
	ApproverFirstName string
	TenderTitle       string
	TenderReference   string
	InitiatorName     string
	LevelNumber       int
	Deadline          *time.Time
}

// ApprovalDecision - сообщение инициатору о решении на уровне.
type ApprovalDecision struct {
	RecipientEmail     string
	RecipientFirstName string
	TenderTitle        string
	TenderReference    string
	DecisionLabel      string
	LevelNumber        int
	Comment            string
}

// Award - сообщение инициатору о присуждении тендера.
type Award struct {
	RecipientEmail     string
	RecipientFirstName string
	TenderTitle        string
	TenderReference    string
}
