package models

import "net/http"

// ErrorKind классифицирует ошибку для вызывающей стороны.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "NotFound"
	KindInvalidState      ErrorKind = "InvalidState"
	KindUnauthorized      ErrorKind = "Unauthorized"
	KindValidationFailure ErrorKind = "ValidationFailure"
	KindInternal          ErrorKind = "Internal"
)

// ErrorResponse описывает ошибку с кодом и сообщением.
type ErrorResponse struct {
	Kind       ErrorKind `json:"kind"`
	StatusCode int       `json:"-"`
	Message    string    `json:"reason"`
}

// NewErrorResponse создает новую ошибку с кодом и сообщением.
func NewErrorResponse(statusCode int, message string) *ErrorResponse {
	return &ErrorResponse{
		Kind:       kindForStatus(statusCode),
		StatusCode: statusCode,
		Message:    message}
}

func NewNotFound(message string) *ErrorResponse {
	return &ErrorResponse{Kind: KindNotFound, StatusCode: http.StatusNotFound, Message: message}
}

func NewInvalidState(message string) *ErrorResponse {
	return &ErrorResponse{Kind: KindInvalidState, StatusCode: http.StatusConflict, Message: message}
}

func NewUnauthorized(message string) *ErrorResponse {
	return &ErrorResponse{Kind: KindUnauthorized, StatusCode: http.StatusForbidden, Message: message}
}

func NewValidationFailure(message string) *ErrorResponse {
	return &ErrorResponse{Kind: KindValidationFailure, StatusCode: http.StatusBadRequest, Message: message}
}

// Реализация метода Error() для удовлетворения интерфейса error.
func (e *ErrorResponse) Error() string {
	return e.Message
}

func kindForStatus(statusCode int) ErrorKind {
	switch statusCode {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindInvalidState
	case http.StatusForbidden, http.StatusUnauthorized:
		return KindUnauthorized
	case http.StatusBadRequest:
		return KindValidationFailure
	default:
		return KindInternal
	}
}
