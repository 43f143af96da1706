package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, 2024, parsed.Year())
	assert.Equal(t, time.June, parsed.Month())
	assert.Equal(t, 1, parsed.Day())

	_, err = ParseDate("06/01/2024")
	assert.Error(t, err)
}

func TestPriceQuote(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		price     int64
		wantDays  int32
		wantTotal int64
	}{
		{"two full days", "2024-06-01", "2024-06-03", 1000, 2, 2000},
		{"single day", "2024-06-01", "2024-06-02", 4500, 1, 4500},
		{"week", "2024-06-01", "2024-06-08", 2000, 7, 14000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := PriceQuote(date(tt.start), date(tt.end), tt.price)
			require.NoError(t, err)
			assert.Equal(t, tt.wantDays, q.Days)
			assert.Equal(t, tt.wantTotal, q.TotalCents)
		})
	}

	t.Run("partial day rounds up", func(t *testing.T) {
		start := date("2024-06-01").Add(10 * time.Hour)
		end := date("2024-06-03").Add(14 * time.Hour)
		q, err := PriceQuote(start, end, 1000)
		require.NoError(t, err)
		assert.Equal(t, int32(3), q.Days)
	})

	t.Run("end not after start", func(t *testing.T) {
		_, err := PriceQuote(date("2024-06-03"), date("2024-06-01"), 1000)
		assert.Error(t, err)
		_, err = PriceQuote(date("2024-06-01"), date("2024-06-01"), 1000)
		assert.Error(t, err)
	})
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name   string
		aStart string
		aEnd   string
		bStart string
		bEnd   string
		want   bool
	}{
		{"disjoint before", "2024-06-01", "2024-06-03", "2024-06-05", "2024-06-07", false},
		{"disjoint after", "2024-06-05", "2024-06-07", "2024-06-01", "2024-06-03", false},
		{"identical", "2024-06-01", "2024-06-03", "2024-06-01", "2024-06-03", true},
		{"contained", "2024-06-01", "2024-06-10", "2024-06-03", "2024-06-05", true},
		{"partial", "2024-06-01", "2024-06-05", "2024-06-04", "2024-06-09", true},
		// A booking ending the day another starts still blocks the car:
		// handover happens within that day.
		{"touching boundary", "2024-06-01", "2024-06-03", "2024-06-03", "2024-06-05", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(date(tt.aStart), date(tt.aEnd), date(tt.bStart), date(tt.bEnd))
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("time of day is ignored", func(t *testing.T) {
		a := date("2024-06-03").Add(23 * time.Hour)
		b := date("2024-06-03").Add(1 * time.Hour)
		assert.True(t, Overlaps(date("2024-06-01"), a, b, date("2024-06-05")))
	})
}

func TestTruncateToDay(t *testing.T) {
	ts := time.Date(2024, 6, 1, 15, 30, 45, 123, time.UTC)
	got := TruncateToDay(ts)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), got)
}
