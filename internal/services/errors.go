package services

import (
	"errors"
	"fmt"

	"github.com/senyabanana/tender-evaluation/internal/models"
	"github.com/senyabanana/tender-evaluation/internal/repository"
)

// storeError переводит ошибки хранилища в типизированные ошибки сервиса.
func storeError(err error, notFoundMessage string) error {
	var errorResponse *models.ErrorResponse
	switch {
	case err == nil:
		return nil
	case errors.As(err, &errorResponse):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return models.NewNotFound(notFoundMessage)
	case errors.Is(err, repository.ErrConcurrentUpdate):
		return models.NewInvalidState("the record was changed by another request, refresh and retry")
	default:
		return fmt.Errorf("%s: %w", notFoundMessage, err)
	}
}

// concurrentUpdate возвращает InvalidState с пояснением, если сработала защита от гонки.
func concurrentUpdate(err error, message string) error {
	if errors.Is(err, repository.ErrConcurrentUpdate) {
		return models.NewInvalidState(message)
	}
	return err
}
