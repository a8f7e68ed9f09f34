// Package validation wraps go-playground/validator with the rules shared by
// request decoding and domain services.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	pkgerrors "github.com/litcafe/backoffice/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	// MinPhoneDigits is the fewest digits a contact phone may have.
	MinPhoneDigits = 10

	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	// decimals compare as floats so gt/gte/lte work on money and stock.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.InexactFloat64()
		}
		return nil
	}, decimal.Decimal{})
	mustRegister(v, "phone", func(fl validator.FieldLevel) bool {
		return DigitCount(fl.Field().String()) >= MinPhoneDigits
	})
	mustRegister(v, "isodate", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(DateLayout, fl.Field().String())
		return err == nil
	})
	mustRegister(v, "clock", func(fl validator.FieldLevel) bool {
		_, err := time.Parse(ClockLayout, fl.Field().String())
		return err == nil
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Struct validates s and returns a CodeValidation error whose details map
// each failing field to a short reason.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		details := make(map[string]string, len(errs))
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = Message(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

// Message renders a human readable reason for a failed rule.
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "email":
		return "must be a valid email"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "uuid", "uuid4":
		return "must be a valid id"
	case "phone":
		return fmt.Sprintf("must contain at least %d digits", MinPhoneDigits)
	case "isodate":
		return "must be a date formatted YYYY-MM-DD"
	case "clock":
		return "must be a time formatted HH:MM"
	}
	return "is invalid"
}

// DigitCount returns how many decimal digits s contains.
func DigitCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
