// Package formatting converts byte sizes between counts and the
// human-readable strings used in configuration, such as "4MB".
package formatting

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

var units = []string{"B", "KB", "MB", "GB", "TB", "PB", "EB"}

// FormatBytes renders n in base-1024 units with the given number of
// decimals. Negative precision is treated as zero.
func FormatBytes(n int64, precision int) string {
	precision = max(precision, 0)

	size := math.Abs(float64(n))
	i := 0
	for size >= 1024 && i < len(units)-1 {
		size /= 1024
		i++
	}
	if n < 0 {
		size = -size
	}

	return strconv.FormatFloat(size, 'f', precision, 64) + " " + units[i]
}

// ParseBytes reads sizes such as "512", "64KB", "1.5 mb" or "2GiB". A bare
// number is a byte count.
func ParseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty byte size string")
	}

	split := strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.'
	})
	num, unit := s, ""
	if split >= 0 {
		num, unit = s[:split], strings.TrimSpace(s[split:])
	}
	if num == "" {
		return 0, fmt.Errorf("invalid byte size: %q", s)
	}

	value, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid byte size %q: %w", s, err)
	}

	unit = strings.ToUpper(unit)
	if base, ok := strings.CutSuffix(unit, "IB"); ok && base != "" {
		unit = base + "B"
	}
	if unit == "" {
		unit = "B"
	}

	for exp, u := range units {
		if u == unit {
			bytes := value * math.Pow(1024, float64(exp))
			if bytes > math.MaxInt64 {
				return 0, fmt.Errorf("byte size %q overflows", s)
			}
			return int64(bytes), nil
		}
	}
	return 0, fmt.Errorf("unknown byte size unit %q in %q", unit, s)
}
