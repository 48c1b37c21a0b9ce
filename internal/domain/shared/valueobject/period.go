package valueobject

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Period is a half-open date range [Start, End) representing one
// billing cycle, typically a calendar month. Both boundaries are
// truncated to midnight UTC; time-of-day never participates in
// proration arithmetic.
type Period struct {
	start time.Time
	end   time.Time
}

// NewPeriod creates a Period from two dates. End must be strictly
// after Start.
func NewPeriod(start, end time.Time) (Period, error) {
	start = truncateToDay(start)
	end = truncateToDay(end)
	if !end.After(start) {
		return Period{}, errors.New("period end must be after period start")
	}
	return Period{start: start, end: end}, nil
}

// MonthPeriod returns the canonical billing period for a calendar
// month: [first day of month, first day of next month).
func MonthPeriod(year int, month time.Month) Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period{start: start, end: start.AddDate(0, 1, 0)}
}

// Start returns the inclusive start date
func (p Period) Start() time.Time {
	return p.start
}

// End returns the exclusive end date
func (p Period) End() time.Time {
	return p.end
}

// IsZero returns true for the zero-value period
func (p Period) IsZero() bool {
	return p.start.IsZero() && p.end.IsZero()
}

// Days returns the duration of the period in whole days
func (p Period) Days() int {
	return int(p.end.Sub(p.start).Hours() / 24)
}

// Contains returns true if the date falls within [Start, End)
func (p Period) Contains(date time.Time) bool {
	date = truncateToDay(date)
	return !date.Before(p.start) && date.Before(p.end)
}

// Overlaps returns true if the two periods share at least one day
func (p Period) Overlaps(other Period) bool {
	return p.start.Before(other.end) && other.start.Before(p.end)
}

// ClampTo returns the intersection of this period with other. The
// second return value is false when the periods do not overlap.
func (p Period) ClampTo(other Period) (Period, bool) {
	if !p.Overlaps(other) {
		return Period{}, false
	}
	start := p.start
	if other.start.After(start) {
		start = other.start
	}
	end := p.end
	if other.end.Before(end) {
		end = other.end
	}
	return Period{start: start, end: end}, true
}

// Fraction returns the ratio of other's overlap with this period to
// this period's full length, as an exact decimal. Returns zero when
// there is no overlap.
func (p Period) Fraction(other Period) decimal.Decimal {
	clamped, ok := other.ClampTo(p)
	if !ok {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(clamped.Days())).
		Div(decimal.NewFromInt(int64(p.Days())))
}

// Equals returns true if both periods have identical boundaries
func (p Period) Equals(other Period) bool {
	return p.start.Equal(other.start) && p.end.Equal(other.end)
}

// String returns the period formatted as [YYYY-MM-DD, YYYY-MM-DD)
func (p Period) String() string {
	return fmt.Sprintf("[%s, %s)", p.start.Format("2006-01-02"), p.end.Format("2006-01-02"))
}

// DueDateFor resolves the due date inside the period's first month for
// the given day-of-month, clamping to the last valid day when the
// requested day exceeds the month length (e.g. day 31 in February).
func (p Period) DueDateFor(dayOfMonth int) time.Time {
	year, month, _ := p.start.Date()
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if dayOfMonth > lastDay {
		dayOfMonth = lastDay
	}
	if dayOfMonth < 1 {
		dayOfMonth = 1
	}
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
