// Package dates normalizes the date and clock formats that appear in site
// visit and material receipt CSV exports.
package dates

import (
	"fmt"
	"strings"
	"time"
)

// ISO is the canonical storage layout for record dates.
const ISO = "2006-01-02"

// dateLayouts are tried in order. Imports accept 2-Jan-06 ("D-Mon-YY"),
// 02/01/2006 ("DD/MM/YYYY") and already-normalized ISO dates.
var dateLayouts = []string{
	ISO,
	"2-Jan-06",
	"02/01/2006",
	"2/1/2006",
}

// Normalize parses a date in any accepted layout and returns it as
// YYYY-MM-DD. Unparseable input is an error; callers decide whether that
// aborts a batch (imports) or soft-fails a single row (cross-analysis).
func Normalize(s string) (string, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return "", fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(ISO), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", s)
}

// clockLayouts accept HH:MM and HH:MM:SS, with single-digit hours tolerated.
var clockLayouts = []string{
	"15:04:05",
	"15:04",
	"3:04:05 PM",
	"3:04 PM",
}

// Clock parses a wall-clock time string and returns the offset from
// midnight. The date portion is discarded.
func Clock(s string) (time.Duration, error) {
	v := strings.TrimSpace(s)
	if v == "" {
		return 0, fmt.Errorf("empty time")
	}
	for _, layout := range clockLayouts {
		if t, err := time.Parse(layout, strings.ToUpper(v)); err == nil {
			return time.Duration(t.Hour())*time.Hour +
				time.Duration(t.Minute())*time.Minute +
				time.Duration(t.Second())*time.Second, nil
		}
	}
	return 0, fmt.Errorf("unrecognized time %q", s)
}
