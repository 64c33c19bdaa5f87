package utils

import (
	"errors"
	"strconv"
	"strings"
)

// ErrAmountFormat is returned by ParseAmount when the input has no usable digits.
var ErrAmountFormat = errors.New("amount is not a valid currency value")

// ParseAmount normalizes a locale-formatted currency string to a float.
// Accepts comma or dot as the decimal separator and strips currency symbols,
// spaces and thousand separators ("R$ 1.250,50" -> 1250.50, "50,00" -> 50.0).
// A separator before the first digit is a decimal point (",50" -> 0.50).
// Empty input parses to 0; input with no digits at all returns ErrAmountFormat.
func ParseAmount(text string) (float64, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, nil
	}

	var b strings.Builder
	lastSeparator := -1
	for _, r := range trimmed {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ',' || r == '.':
			lastSeparator = b.Len()
		}
	}
	digits := b.String()
	if digits == "" {
		return 0, ErrAmountFormat
	}

	normalized := digits
	if lastSeparator >= 0 && lastSeparator < len(digits) {
		normalized = digits[:lastSeparator] + "." + digits[lastSeparator:]
	}
	value, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, ErrAmountFormat
	}
	return value, nil
}
