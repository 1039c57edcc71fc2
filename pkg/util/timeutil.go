package util

import "time"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// DateKey formats t as the YYYY-MM-DD calendar date in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}
