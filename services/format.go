package services

import (
	"fmt"
	"strings"
)

// FormatEUR formats an amount in French euro notation: space-separated
// thousands, comma decimal separator, trailing euro sign, always 2 decimal
// places (e.g. "1 234,56 €").
func FormatEUR(amount float64) string {
	negative := false
	if amount < 0 {
		negative = true
		amount = -amount
	}

	raw := fmt.Sprintf("%.2f", amount)
	parts := strings.SplitN(raw, ".", 2)
	intPart := groupThousands(parts[0])

	result := intPart + "," + parts[1] + " €"
	if negative {
		result = "-" + result
	}
	return result
}

func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	result := s[n-3:]
	remaining := s[:n-3]
	for len(remaining) > 3 {
		result = remaining[len(remaining)-3:] + " " + result
		remaining = remaining[:len(remaining)-3]
	}
	return remaining + " " + result
}

// FormatDuration renders minutes as "1h30" / "45 min" / "2h".
func FormatDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	hours := minutes / 60
	rest := minutes % 60
	switch {
	case hours == 0:
		return fmt.Sprintf("%d min", rest)
	case rest == 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dh%02d", hours, rest)
	}
}

// FormatVatRateLabel renders a sanitized VAT rate, whole rates without
// decimals ("20"), fractional ones with two ("5.50").
func FormatVatRateLabel(rate float64) string {
	value := SanitizeVatRate(rate)
	if value == float64(int64(value)) {
		return fmt.Sprintf("%d", int64(value))
	}
	return fmt.Sprintf("%.2f", value)
}
