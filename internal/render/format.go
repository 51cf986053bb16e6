package render

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	dateLayout   = "Jan 02, 2006"
	seriesLayout = "Jan 02"
	placeholder  = "-"
)

// Money formats an amount with two decimals and a dollar sign.
func Money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// Date formats a timestamp as "Jan 02, 2006"; nil renders a placeholder.
func Date(t *time.Time) string {
	if t == nil || t.IsZero() {
		return placeholder
	}
	return t.Format(dateLayout)
}

// DateTime is used for the tenant last-sync column.
func DateTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "Never"
	}
	return t.Local().Format("Jan 02, 2006 15:04")
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

// bar draws value as a proportion of peak using width cells.
func bar(value, peak decimal.Decimal, width int) string {
	if peak.Sign() <= 0 || value.Sign() <= 0 {
		return ""
	}
	cells := value.Div(peak).Mul(decimal.NewFromInt(int64(width))).Round(0).IntPart()
	if cells < 1 {
		cells = 1
	}
	return strings.Repeat("#", int(cells))
}
