package enums

import (
	"fmt"
	"strings"
)

// FinancialStatus is the payment state Shopify reports for an order.
type FinancialStatus string

const (
	FinancialStatusPaid          FinancialStatus = "paid"
	FinancialStatusPending       FinancialStatus = "pending"
	FinancialStatusAuthorized    FinancialStatus = "authorized"
	FinancialStatusPartiallyPaid FinancialStatus = "partially_paid"
	FinancialStatusRefunded      FinancialStatus = "refunded"
	FinancialStatusVoided        FinancialStatus = "voided"
)

var validFinancialStatuses = []FinancialStatus{
	FinancialStatusPaid,
	FinancialStatusPending,
	FinancialStatusAuthorized,
	FinancialStatusPartiallyPaid,
	FinancialStatusRefunded,
	FinancialStatusVoided,
}

// FinancialStatuses lists every known status in display order.
func FinancialStatuses() []FinancialStatus {
	out := make([]FinancialStatus, len(validFinancialStatuses))
	copy(out, validFinancialStatuses)
	return out
}

// String implements fmt.Stringer.
func (f FinancialStatus) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FinancialStatus.
func (f FinancialStatus) IsValid() bool {
	for _, candidate := range validFinancialStatuses {
		if candidate == f {
			return true
		}
	}
	return false
}

// Badge is the colour a status is shown with; unknown statuses are gray.
func (f FinancialStatus) Badge() string {
	switch f {
	case FinancialStatusPaid:
		return "green"
	case FinancialStatusAuthorized:
		return "blue"
	case FinancialStatusPending:
		return "yellow"
	case FinancialStatusRefunded:
		return "red"
	case FinancialStatusPartiallyPaid:
		return "purple"
	default:
		return "gray"
	}
}

// ParseFinancialStatus converts raw input into a FinancialStatus. Case and
// surrounding space are ignored.
func ParseFinancialStatus(value string) (FinancialStatus, error) {
	normalized := FinancialStatus(strings.ToLower(strings.TrimSpace(value)))
	if normalized.IsValid() {
		return normalized, nil
	}
	return "", fmt.Errorf("invalid financial status %q", value)
}
