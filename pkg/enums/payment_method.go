package enums

import (
	"fmt"
	"strings"
)

// PaymentMethod describes how a sale was settled at the counter.
type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodCard PaymentMethod = "card"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodCard,
}

// Older terminals submitted Spanish labels.
var legacyPaymentMethods = map[string]PaymentMethod{
	"efectivo": PaymentMethodCash,
	"tarjeta":  PaymentMethodCard,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePaymentMethod converts raw input into a PaymentMethod, accepting the
// legacy labels as aliases.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validPaymentMethods {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	if alias, ok := legacyPaymentMethods[normalized]; ok {
		return alias, nil
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
