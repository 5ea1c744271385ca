package notification

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

// SendGridSender отправляет письма через SendGrid.
type SendGridSender struct {
	client *sendgrid.Client
	from   *mail.Email
	logger logrus.FieldLogger
}

// NewSendGridSender создает отправителя с API-ключом и адресом отправителя.
func NewSendGridSender(apiKey, fromAddress, fromName string, logger logrus.FieldLogger) *SendGridSender {
	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromAddress),
		logger: logger,
	}
}

func (s *SendGridSender) SendApprovalRequest(ctx context.Context, msg ApprovalRequest) error {
	return s.send(ctx, msg.ApproverFirstName, msg.ApproverEmail, RenderApprovalRequest(msg))
}

func (s *SendGridSender) SendApprovalDecision(ctx context.Context, msg ApprovalDecision) error {
	return s.send(ctx, msg.RecipientFirstName, msg.RecipientEmail, RenderApprovalDecision(msg))
}

func (s *SendGridSender) SendAwardNotification(ctx context.Context, msg Award) error {
	return s.send(ctx, msg.RecipientFirstName, msg.RecipientEmail, RenderAward(msg))
}

func (s *SendGridSender) send(ctx context.Context, name, address string, letter Letter) error {
	if address == "" {
		return fmt.Errorf("recipient %q has no e-mail address", name)
	}
	message := mail.NewSingleEmail(s.from, letter.Subject, mail.NewEmail(name, address), letter.Text, letter.HTML)
	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid: unexpected status %d: %s", resp.StatusCode, resp.Body)
	}
	s.logger.WithFields(logrus.Fields{
		"module":  "notification",
		"to":      address,
		"subject": letter.Subject,
	}).Debug("mail accepted by sendgrid")
	return nil
}
