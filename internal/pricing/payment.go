package pricing

import (
	"fmt"
	"strings"
)

// PaymentMethod enumerates the accepted tender types.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "CASH"
	PaymentUPI  PaymentMethod = "UPI"
	PaymentCard PaymentMethod = "CARD"
)

// ParsePaymentMethod normalises and validates a tender type string.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	switch PaymentMethod(strings.ToUpper(strings.TrimSpace(value))) {
	case PaymentCash:
		return PaymentCash, nil
	case PaymentUPI:
		return PaymentUPI, nil
	case PaymentCard:
		return PaymentCard, nil
	default:
		return "", fmt.Errorf("unknown payment method %q", value)
	}
}
