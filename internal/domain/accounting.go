package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SegmentSeconds returns the whole seconds between start and end.
// The result is truncated, never rounded up, and never negative.
// When both instants carry a monotonic clock reading, the monotonic
// difference is used, so wall clock adjustments do not leak in.
func SegmentSeconds(start, end time.Time) int64 {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}

// CloseSegment closes a segment at end.
// It returns the logged seconds and the instant at which the next segment
// begins. The sub-second remainder is carried into the next segment, so the
// logged durations of consecutive segments sum to the whole seconds between
// the first start and the last end.
func CloseSegment(start, end time.Time) (int64, time.Time) {
	secs := SegmentSeconds(start, end)
	return secs, start.Add(time.Duration(secs) * time.Second)
}

// SumSeconds returns the total logged seconds of a ledger.
func SumSeconds(entries []LedgerEntry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Entry.TimeSpentSeconds
	}
	return total
}

// FormatDuration formats seconds as "45s", "1m" or "1h 1m".
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// ParseTimeSpent parses an explicit time spent.
// It accepts Go durations ("1h30m", "90m"), the FormatDuration output
// ("1h 30m") and a bare number of hours ("1.5").
func ParseTimeSpent(s string) (time.Duration, error) {
	in := strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if in == "" {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidDurationInput)
	}
	if hours, err := strconv.ParseFloat(in, 64); err == nil {
		if hours < 0 {
			return 0, fmt.Errorf("%q: %w", s, ErrInvalidDurationInput)
		}
		return time.Duration(hours * float64(time.Hour)).Truncate(time.Second), nil
	}
	d, err := time.ParseDuration(in)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidDurationInput)
	}
	return d.Truncate(time.Second), nil
}
