package util

import (
	"fmt"
	"time"
)

// FormatNumber formats an int64 with K/M suffix for readability.
// Examples: 500 -> "500", 1500 -> "1.5K", 1500000 -> "1.5M"
func FormatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// FormatDateISO formats a timestamp as an ISO date (2006-01-02).
func FormatDateISO(t time.Time) string {
	return t.Format("2006-01-02")
}

// FormatSigned formats a float with an explicit sign, for slope reporting.
// Examples: 1.5 -> "+1.500", -0.45 -> "-0.450"
func FormatSigned(v float64) string {
	return fmt.Sprintf("%+.3f", v)
}
