// Package formatting converts byte sizes between counts and the
// human-readable strings used in configuration and error messages.
package formatting

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// units are base-1024 multiples, indexed by exponent.
var units = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

// FormatBytes renders n with the largest unit that keeps the value at or
// above 1, e.g. "1.5 MB". Negative precision is treated as zero.
func FormatBytes(n int64, precision int) string {
	if n == 0 {
		return "0 B"
	}

	exp := min(int(math.Log(float64(n))/math.Log(1024)), len(units)-1)
	value := float64(n) / math.Pow(1024, float64(exp))
	return strconv.FormatFloat(value, 'f', max(precision, 0), 64) + " " + units[exp]
}

// ParseBytes parses sizes such as "5MB", "1.5 KB" or "1024". Units are
// case-insensitive base-1024 multiples; a bare number is a byte count.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return (r < '0' || r > '9') && r != '.'
	})
	number, unit := s, ""
	if split >= 0 {
		number, unit = s[:split], strings.TrimSpace(s[split:])
	}

	if number == "" || number[0] == '.' || strings.Count(number, ".") > 1 {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}
	value, err := strconv.ParseFloat(number, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size number: %w", err)
	}

	if unit == "" {
		return int64(value), nil
	}
	exp := slices.Index(units, strings.ToUpper(unit))
	if exp < 0 {
		return 0, fmt.Errorf("unknown byte size unit: %q", unit)
	}
	return int64(value * math.Pow(1024, float64(exp))), nil
}
