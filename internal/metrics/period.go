package metrics

import (
	"fmt"
	"time"
)

const (
	minYear = 2000
	maxYear = 2100
)

// Period identifies a calendar month.
type Period struct {
	Year  int
	Month time.Month
}

// NewPeriod validates year and month.
func NewPeriod(year, month int) (Period, error) {
	if year < minYear || year > maxYear {
		return Period{}, fmt.Errorf("%w: year %d", ErrInvalidPeriod, year)
	}
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%w: month %d", ErrInvalidPeriod, month)
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

// Start returns the first day of the month, UTC.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the first day of the next month. The range is half-open.
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, 0)
}

// Days returns the number of calendar days in the month.
func (p Period) Days() int {
	return p.End().AddDate(0, 0, -1).Day()
}

// PreviousMonth returns the immediately preceding calendar month.
func (p Period) PreviousMonth() Period {
	prev := p.Start().AddDate(0, -1, 0)
	return Period{Year: prev.Year(), Month: prev.Month()}
}

// Next returns the following calendar month.
func (p Period) Next() Period {
	next := p.End()
	return Period{Year: next.Year(), Month: next.Month()}
}

// Before reports whether p is earlier than other.
func (p Period) Before(other Period) bool {
	return p.Start().Before(other.Start())
}

// PreviousYear returns the same month one year earlier.
func (p Period) PreviousYear() Period {
	return Period{Year: p.Year - 1, Month: p.Month}
}

// String formats the period as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}
