package render

import (
	"strings"

	"github.com/shopspring/decimal"
)

// MetricCard is a single headline number.
type MetricCard struct {
	Label  string `json:"label"`
	Value  string `json:"value"`
	NoData bool   `json:"no_data,omitempty"`
}

type Table struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Columns   []string   `json:"columns"`
	Rows      [][]string `json:"rows"`
	TotalRows int        `json:"total_rows"`
}

// FormatCurrency renders an amount as $1,234.56.
func FormatCurrency(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(2)
	intPart, decPart, _ := strings.Cut(fixed, ".")
	return sign + "$" + groupThousands(intPart) + "." + decPart
}

// FormatNumber renders a whole number with thousands separators.
func FormatNumber(n decimal.Decimal) string {
	s := n.Round(0).String()
	if strings.HasPrefix(s, "-") {
		return "-" + groupThousands(s[1:])
	}
	return groupThousands(s)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
