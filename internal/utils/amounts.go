package utils

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidAmount is returned when a currency string cannot be parsed.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount parses a currency string into a non-negative integer amount.
// Thousands separators, currency symbols and spaces are stripped; only the
// digits matter ("300 000" and "€300,000" both parse to 300000). A leading
// minus sign or a string with no digits at all is rejected, with the
// original text kept in the error for user correction.
func ParseAmount(text string) (int64, error) {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "-") {
		return 0, fmt.Errorf("%w: negative value %q", ErrInvalidAmount, text)
	}

	var digits strings.Builder
	for _, r := range trimmed {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}

	if digits.Len() == 0 {
		return 0, fmt.Errorf("%w: no digits in %q", ErrInvalidAmount, text)
	}

	amount, err := strconv.ParseInt(digits.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q does not fit in an amount", ErrInvalidAmount, text)
	}

	return amount, nil
}
