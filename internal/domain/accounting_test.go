package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSegmentSeconds_Truncates(t *testing.T) {
	start := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, int64(3), SegmentSeconds(start, start.Add(3999*time.Millisecond)))
	assert.Equal(t, int64(0), SegmentSeconds(start, start.Add(999*time.Millisecond)))
	assert.Equal(t, int64(0), SegmentSeconds(start, start))
	assert.Equal(t, int64(0), SegmentSeconds(start, start.Add(-time.Minute)))
}

func TestCloseSegment_CarriesRemainder(t *testing.T) {
	start := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	cp := start.Add(3700 * time.Millisecond)
	end := start.Add(5400 * time.Millisecond)

	first, next := CloseSegment(start, cp)
	assert.Equal(t, int64(3), first)
	assert.True(t, next.Equal(start.Add(3*time.Second)))

	second, _ := CloseSegment(next, end)
	assert.Equal(t, int64(2), second)

	// Sum equals the whole seconds between the first start and the last end.
	assert.Equal(t, SegmentSeconds(start, end), first+second)
}

func TestCloseSegment_ManySmallSegmentsDoNotDrift(t *testing.T) {
	start := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)
	cur := start
	var total int64
	now := start
	for i := 0; i < 10; i++ {
		now = now.Add(1500 * time.Millisecond)
		secs, next := CloseSegment(cur, now)
		total += secs
		cur = next
	}
	assert.Equal(t, int64(15), total)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		want    string
		seconds int64
	}{
		{"0s", 0},
		{"45s", 45},
		{"1m", 90},
		{"59m", 3599},
		{"1h 1m", 3665},
		{"2h 0m", 7200},
		{"0s", -5},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.seconds))
		})
	}
}

func TestSumSeconds(t *testing.T) {
	entries := []LedgerEntry{
		{Entry: WorklogEntry{TimeSpentSeconds: 3}},
		{Entry: WorklogEntry{TimeSpentSeconds: 0}},
		{Entry: WorklogEntry{TimeSpentSeconds: 2}},
	}
	assert.Equal(t, int64(5), SumSeconds(entries))
}

func TestParseTimeSpent(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "1h30m", want: 90 * time.Minute},
		{in: "1h 30m", want: 90 * time.Minute},
		{in: "45s", want: 45 * time.Second},
		{in: "1.5", want: 90 * time.Minute},
		{in: "0", want: 0},
		{in: "", wantErr: true},
		{in: "soon", wantErr: true},
		{in: "-1h", wantErr: true},
		{in: "-2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeSpent(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidDurationInput)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
