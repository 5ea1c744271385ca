package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// deliver выполняет попытку отправки уведомления после фиксации изменений.
// Ошибка или паника отправителя только записывается в журнал; результат возвращается вызывающему.
func deliver(ctx context.Context, logger logrus.FieldLogger, timeout time.Duration, fields logrus.Fields, send func(ctx context.Context) error) (sent bool) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(fields).Error(fmt.Sprintf("notification sender panicked: %v", r))
			sent = false
		}
	}()

	if err := send(ctx); err != nil {
		logger.WithFields(fields).WithError(err).Error("failed to send notification")
		return false
	}
	return true
}
