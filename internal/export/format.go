package export

import (
	"strings"

	"github.com/shopspring/decimal"
)

// formatMoney renders money for the review spreadsheet: currency prefix,
// thousands grouping, two decimals. Example: "$ 92,000.00".
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign = "-"
		s = s[1:]
	}

	intPart, frac, _ := strings.Cut(s, ".")

	return "$ " + sign + groupThousands(intPart) + "." + frac
}

// formatQuantity keeps the stored precision, trimming to a bare integer
// only when the value is integral: 10.0000 -> "10", 10.5000 -> "10.5000".
func formatQuantity(d decimal.Decimal) string {
	if d.IsInteger() {
		return d.Truncate(0).String()
	}

	return d.String()
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}

	var sb strings.Builder

	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}

	for i := lead; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}

		sb.WriteString(digits[i : i+3])
	}

	return sb.String()
}

// safeFilename keeps artifact names shell- and filesystem-friendly.
func safeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, s)
}
