package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/senyabanana/tender-evaluation/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// SendErrorResponse отправляет ошибку в формате JSON
func SendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, models.NewErrorResponse(statusCode, message))
}

// SendError отправляет типизированную ошибку сервиса; прочие ошибки скрываются за 500.
func SendError(w http.ResponseWriter, logger logrus.FieldLogger, err error, fallback string) {
	var errorResponse *models.ErrorResponse
	if errors.As(err, &errorResponse) {
		if errorResponse.StatusCode >= http.StatusInternalServerError {
			logger.WithError(err).Error(fallback)
		} else {
			logger.WithError(err).Warn(fallback)
		}
		WriteJSON(w, errorResponse.StatusCode, errorResponse)
		return
	}
	logger.WithError(err).Error(fallback)
	SendErrorResponse(w, http.StatusInternalServerError, fallback)
}

// WriteJSON пишет тело в формате JSON с указанным кодом.
func WriteJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("failed to encode response")
	}
}

// DecodeJSON разбирает тело запроса, отклоняя неизвестные поля.
func DecodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return models.NewValidationFailure(fmt.Sprintf("invalid request body: %v", err))
	}
	return nil
}

// ParseDecimalParam читает необязательный десятичный параметр запроса.
func ParseDecimalParam(r *http.Request, name string) (*decimal.Decimal, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, models.NewValidationFailure(fmt.Sprintf("invalid %s parameter, must be a number", name))
	}
	return &value, nil
}
