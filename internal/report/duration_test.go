package report

import "testing"

func TestParseDurationSeconds(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"1:30:00", 5400, true},
		{"0:45:30", 2730, true},
		{"10:0:0", 36000, true},
		{" 2:05:09 ", 7509, true},
		{"0:0:0", 0, true},
		{"", 0, false},
		{"1:30", 0, false},
		{"1:30:00:00", 0, false},
		{"-1:00:00", 0, false},
		{"1:61:00", 0, false},
		{"abc", 0, false},
		{"1:xx:00", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseDurationSeconds(c.in)
		if got != c.want || ok != c.ok {
			t.Fatalf("ParseDurationSeconds(%q) = (%d, %v), want (%d, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestFormatMinutes(t *testing.T) {
	cases := []struct {
		in   int
		want string
	}{
		{0, "00:00"},
		{5400, "01:30"},
		{29, "00:00"},  // rounds down
		{30, "00:01"},  // rounds up
		{3661, "01:01"},
		{-5, "00:00"},
	}
	for _, c := range cases {
		if got := FormatMinutes(c.in); got != c.want {
			t.Fatalf("FormatMinutes(%d) = %q, want %q", c.in, got, c.want)
		}
	}
}

// Round trip through parse→format→reparse must be idempotent in total
// seconds modulo rounding to the nearest minute.
func TestDurationRoundTrip(t *testing.T) {
	for _, raw := range []string{"1:30:00", "0:45:30", "3:14:15", "0:0:29"} {
		secs, ok := ParseDurationSeconds(raw)
		if !ok {
			t.Fatalf("parse %q failed", raw)
		}
		formatted := FormatMinutes(secs) + ":00" // HH:MM -> H:M:S form
		again, ok := ParseDurationSeconds(formatted)
		if !ok {
			t.Fatalf("reparse %q failed", formatted)
		}
		rounded := ((secs + 30) / 60) * 60
		if again != rounded {
			t.Fatalf("%q: round trip %d != rounded %d", raw, again, rounded)
		}
	}
}
