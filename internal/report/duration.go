// Package report implements the filtering, cross-matching and aggregation
// that back the visit and delivery reports, plus their CSV and workbook
// renderings.
package report

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseDurationSeconds parses an H:M:S duration string. Malformed or
// negative input returns (0, false); callers flag those rows separately
// instead of folding zeros into duration totals.
func ParseDurationSeconds(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, false
	}
	var vals [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 {
			return 0, false
		}
		vals[i] = n
	}
	if vals[1] > 59 || vals[2] > 59 {
		return 0, false
	}
	return vals[0]*3600 + vals[1]*60 + vals[2], true
}

// FormatMinutes renders a total in seconds as HH:MM, rounded to the nearest
// minute. Parse→format→reparse is idempotent modulo that rounding.
func FormatMinutes(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}
	mins := (totalSeconds + 30) / 60
	return fmt.Sprintf("%02d:%02d", mins/60, mins%60)
}
