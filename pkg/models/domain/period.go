package domain

import (
	"fmt"
	"time"
)

const periodLayout = "2006-01"

// Period is a calendar year-month, rendered as YYYY-MM.
type Period struct {
	Year  int
	Month time.Month
}

func NewPeriod(year int, month time.Month) Period {
	return Period{Year: year, Month: month}
}

func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse(periodLayout, s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q, expected YYYY-MM: %w", s, err)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// PreviousYear returns the same month one year earlier.
func (p Period) PreviousYear() Period {
	return Period{Year: p.Year - 1, Month: p.Month}
}

// YearRange returns the inclusive January..December bounds of a calendar year.
func YearRange(year int) (Period, Period) {
	return Period{Year: year, Month: time.January}, Period{Year: year, Month: time.December}
}
