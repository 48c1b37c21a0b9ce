package valueobject

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewPeriod(t *testing.T) {
	t.Run("valid period", func(t *testing.T) {
		p, err := NewPeriod(date(2024, 3, 1), date(2024, 4, 1))
		require.NoError(t, err)
		assert.Equal(t, 31, p.Days())
	})

	t.Run("rejects end before start", func(t *testing.T) {
		_, err := NewPeriod(date(2024, 4, 1), date(2024, 3, 1))
		assert.Error(t, err)
	})

	t.Run("rejects zero-length period", func(t *testing.T) {
		_, err := NewPeriod(date(2024, 3, 1), date(2024, 3, 1))
		assert.Error(t, err)
	})

	t.Run("truncates time of day", func(t *testing.T) {
		p, err := NewPeriod(
			time.Date(2024, 3, 1, 15, 30, 0, 0, time.UTC),
			time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC),
		)
		require.NoError(t, err)
		assert.Equal(t, 1, p.Days())
	})
}

func TestMonthPeriod(t *testing.T) {
	tests := []struct {
		year  int
		month time.Month
		days  int
	}{
		{2024, time.January, 31},
		{2024, time.February, 29}, // leap year
		{2023, time.February, 28},
		{2024, time.April, 30},
		{2024, time.December, 31},
	}

	for _, tt := range tests {
		t.Run(tt.month.String(), func(t *testing.T) {
			p := MonthPeriod(tt.year, tt.month)
			assert.Equal(t, tt.days, p.Days())
			assert.Equal(t, date(tt.year, tt.month, 1), p.Start())
		})
	}
}

func TestPeriod_Overlaps(t *testing.T) {
	march := MonthPeriod(2024, time.March)

	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		overlaps bool
	}{
		{"identical", date(2024, 3, 1), date(2024, 4, 1), true},
		{"partial tail", date(2024, 3, 15), date(2024, 5, 1), true},
		{"single day inside", date(2024, 3, 10), date(2024, 3, 11), true},
		{"adjacent before", date(2024, 2, 1), date(2024, 3, 1), false},
		{"adjacent after", date(2024, 4, 1), date(2024, 5, 1), false},
		{"disjoint", date(2024, 6, 1), date(2024, 7, 1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			other, err := NewPeriod(tt.start, tt.end)
			require.NoError(t, err)
			assert.Equal(t, tt.overlaps, march.Overlaps(other))
			assert.Equal(t, tt.overlaps, other.Overlaps(march))
		})
	}
}

func TestPeriod_ClampTo(t *testing.T) {
	march := MonthPeriod(2024, time.March)

	t.Run("clamps overhanging range", func(t *testing.T) {
		lease, err := NewPeriod(date(2024, 3, 15), date(2024, 6, 1))
		require.NoError(t, err)

		clamped, ok := lease.ClampTo(march)
		require.True(t, ok)
		assert.Equal(t, date(2024, 3, 15), clamped.Start())
		assert.Equal(t, date(2024, 4, 1), clamped.End())
		assert.Equal(t, 17, clamped.Days())
	})

	t.Run("no overlap", func(t *testing.T) {
		lease, err := NewPeriod(date(2024, 5, 1), date(2024, 6, 1))
		require.NoError(t, err)
		_, ok := lease.ClampTo(march)
		assert.False(t, ok)
	})
}

func TestPeriod_Fraction(t *testing.T) {
	march := MonthPeriod(2024, time.March) // 31 days

	t.Run("full coverage is one", func(t *testing.T) {
		full, err := NewPeriod(date(2024, 1, 1), date(2025, 1, 1))
		require.NoError(t, err)
		assert.Equal(t, "1", march.Fraction(full).String())
	})

	t.Run("partial coverage", func(t *testing.T) {
		// Active from March 15: 17 of 31 days.
		tail, err := NewPeriod(date(2024, 3, 15), date(2024, 4, 1))
		require.NoError(t, err)
		got := march.Fraction(tail)
		assert.Equal(t, "548.39", got.Mul(decimal.NewFromInt(1000)).Round(2).String())
	})

	t.Run("no overlap is zero", func(t *testing.T) {
		other, err := NewPeriod(date(2024, 7, 1), date(2024, 8, 1))
		require.NoError(t, err)
		assert.True(t, march.Fraction(other).IsZero())
	})
}

func TestPeriod_Contains(t *testing.T) {
	march := MonthPeriod(2024, time.March)

	assert.True(t, march.Contains(date(2024, 3, 1)))
	assert.True(t, march.Contains(date(2024, 3, 31)))
	assert.False(t, march.Contains(date(2024, 4, 1))) // exclusive end
	assert.False(t, march.Contains(date(2024, 2, 29)))
}

func TestPeriod_DueDateFor(t *testing.T) {
	tests := []struct {
		name     string
		period   Period
		day      int
		expected time.Time
	}{
		{"normal day", MonthPeriod(2024, time.March), 5, date(2024, 3, 5)},
		{"clamped to feb 29", MonthPeriod(2024, time.February), 31, date(2024, 2, 29)},
		{"clamped to feb 28", MonthPeriod(2023, time.February), 30, date(2023, 2, 28)},
		{"day 31 in april", MonthPeriod(2024, time.April), 31, date(2024, 4, 30)},
		{"floor at one", MonthPeriod(2024, time.March), 0, date(2024, 3, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.period.DueDateFor(tt.day))
		})
	}
}
