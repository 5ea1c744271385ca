package notification

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogSender пишет письма в журнал вместо отправки. Используется, когда почта не настроена.
type LogSender struct {
	logger logrus.FieldLogger
}

// NewLogSender создает новый экземпляр LogSender.
func NewLogSender(logger logrus.FieldLogger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendApprovalRequest(_ context.Context, msg ApprovalRequest) error {
	s.log(msg.ApproverEmail, RenderApprovalRequest(msg))
	return nil
}

func (s *LogSender) SendApprovalDecision(_ context.Context, msg ApprovalDecision) error {
	s.log(msg.RecipientEmail, RenderApprovalDecision(msg))
	return nil
}

func (s *LogSender) SendAwardNotification(_ context.Context, msg Award) error {
	s.log(msg.RecipientEmail, RenderAward(msg))
	return nil
}

func (s *LogSender) log(to string, letter Letter) {
	s.logger.WithFields(logrus.Fields{
		"module":  "notification",
		"to":      to,
		"subject": letter.Subject,
	}).Info(letter.Text)
}
