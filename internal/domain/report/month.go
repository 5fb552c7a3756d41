package report

import (
	"fmt"
	"time"
)

// Month identifies one calendar month, the unit a report covers.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth accepts the strict YYYY-MM wire form.
func ParseMonth(value string) (Month, error) {
	parsed, err := time.Parse("2006-01", value)
	if err != nil {
		return Month{}, fmt.Errorf("month must be in YYYY-MM format: %w", err)
	}
	if parsed.Year() < 2000 || parsed.Year() > 2100 {
		return Month{}, fmt.Errorf("month year %d out of range", parsed.Year())
	}
	return Month{Year: parsed.Year(), Month: parsed.Month()}, nil
}

func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Bounds returns the month window as [start, end) in UTC.
func (m Month) Bounds() (time.Time, time.Time) {
	start := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

func (m Month) Prev() Month {
	start, _ := m.Bounds()
	prev := start.AddDate(0, -1, 0)
	return MonthOf(prev)
}

// lastCompletedMonths returns the n months before now's month, most recent
// first. The current month is excluded because it is not yet complete.
func lastCompletedMonths(now time.Time, n int) []Month {
	months := make([]Month, 0, n)
	current := MonthOf(now)
	for i := 0; i < n; i++ {
		current = current.Prev()
		months = append(months, current)
	}
	return months
}
