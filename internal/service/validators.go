package service

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/escola-api/internal/models"
)

// NewValidator returns a validator with the domain tags registered:
// cpf, periodicity and positive_amount. Decimal and Date fields are
// validated through their string forms.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(models.Date); ok {
			return d.String()
		}
		return nil
	}, models.Date{})

	_ = v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		return len(NormalizeCPF(fl.Field().String())) == 11
	})
	_ = v.RegisterValidation("periodicity", func(fl validator.FieldLevel) bool {
		return models.Periodicity(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("positive_amount", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		return err == nil && d.IsPositive()
	})
	return v
}

// NormalizeCPF strips punctuation, returning only digits.
func NormalizeCPF(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
