package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/senyabanana/tender-evaluation/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// validateStruct проверяет теги структуры и возвращает ValidationFailure с понятным текстом.
func validateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return models.NewValidationFailure(err.Error())
	}
	messages := make([]string, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		messages = append(messages, fieldMessage(fe))
	}
	return models.NewValidationFailure(strings.Join(messages, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "unique":
		return fmt.Sprintf("%s must not contain duplicates", field)
	default:
		return fmt.Sprintf("%s failed on '%s'", field, fe.Tag())
	}
}

// WeightOverride - необязательная пара весов, заданная вызывающим вместо весов тендера.
type WeightOverride struct {
	Technical  *decimal.Decimal
	Commercial *decimal.Decimal
}

// IsSet сообщает, что веса переданы.
func (w WeightOverride) IsSet() bool {
	return w.Technical != nil || w.Commercial != nil
}

// Validate проверяет, что заданы оба веса, каждый в [0, 100] с точностью до сотых, и их сумма равна 100.
func (w WeightOverride) Validate() error {
	if !w.IsSet() {
		return nil
	}
	if w.Technical == nil || w.Commercial == nil {
		return models.NewValidationFailure("techWeight and commWeight must be provided together")
	}
	for _, weight := range []decimal.Decimal{*w.Technical, *w.Commercial} {
		if weight.IsNegative() || weight.GreaterThan(hundred) {
			return models.NewValidationFailure("weights must be between 0 and 100")
		}
		if !weight.Equal(weight.Round(2)) {
			return models.NewValidationFailure("weights must have at most 2 decimal places")
		}
	}
	if !w.Technical.Add(*w.Commercial).Equal(hundred) {
		return models.NewValidationFailure(fmt.Sprintf("weights must sum to 100, got %s + %s", w.Technical, w.Commercial))
	}
	return nil
}

// resolve возвращает переданные веса или веса из настроек тендера.
func (w WeightOverride) resolve(tender *models.Tender) (decimal.Decimal, decimal.Decimal) {
	if w.IsSet() {
		return *w.Technical, *w.Commercial
	}
	return tender.TechnicalWeight, tender.CommercialWeight
}
