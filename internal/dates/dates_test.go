package dates

import (
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-03-05", "2024-03-05"},
		{"5-Mar-24", "2024-03-05"},
		{"05/03/2024", "2024-03-05"},
		{"5/3/2024", "2024-03-05"},
		{" 12-Dec-23 ", "2023-12-12"},
	}
	for _, c := range cases {
		got, err := Normalize(c.in)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalize_Rejects(t *testing.T) {
	for _, in := range []string{"", "not-a-date", "2024-13-40", "32/01/2024"} {
		if _, err := Normalize(in); err == nil {
			t.Fatalf("Normalize(%q): expected error", in)
		}
	}
}

func TestClock(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"10:25", 10*time.Hour + 25*time.Minute},
		{"10:25:30", 10*time.Hour + 25*time.Minute + 30*time.Second},
		{"0:05", 5 * time.Minute},
		{"9:55", 9*time.Hour + 55*time.Minute},
	}
	for _, c := range cases {
		got, err := Clock(c.in)
		if err != nil {
			t.Fatalf("Clock(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Fatalf("Clock(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestClock_Rejects(t *testing.T) {
	for _, in := range []string{"", "25:99", "noon"} {
		if _, err := Clock(in); err == nil {
			t.Fatalf("Clock(%q): expected error", in)
		}
	}
}
