// Package validate wraps a shared go-playground validator instance.
package validate

import (
	"errors"
	"fmt"
	"strings"

	"microloan/internal/pkg/amount"

	"github.com/go-playground/validator/v10"
)

var v = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// amount: a plain number within amount.Max; commas allowed, no exponent
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		return amount.Valid(fl.Field().String())
	})
	return v
}

// Struct validates s and returns a short human-readable message for the first failure.
func Struct(s interface{}) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	field := lowerFirst(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Errorf("%s is required", field)
	case "email":
		return fmt.Errorf("%s must be a valid email", field)
	case "min":
		return fmt.Errorf("%s must be at least %s characters", field, fe.Param())
	case "amount":
		return fmt.Errorf("%s must be a plain number", field)
	case "oneof":
		return fmt.Errorf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Errorf("%s is invalid", field)
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
