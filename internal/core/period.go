package core

import (
	"fmt"
	"time"
)

// DateRange is an inclusive range of calendar days.
type DateRange struct {
	Start Date
	End   Date
}

func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start.Time) && !d.After(r.End.Time)
}

func (r DateRange) String() string {
	return r.Start.String() + ".." + r.End.String()
}

// MonthRange returns the first and last day of the given month.
func MonthRange(year int, month time.Month) DateRange {
	start := NewDate(year, month, 1)
	return DateRange{Start: start, End: Date{Time: start.AddDate(0, 1, -1)}}
}

// WindowFunc returns the budget window of a period that contains the given day.
type WindowFunc func(day Date) DateRange

func weeklyWindow(day Date) DateRange {
	// Weeks start on Monday.
	offset := (int(day.Weekday()) + 6) % 7
	start := Date{Time: day.AddDate(0, 0, -offset)}
	return DateRange{Start: start, End: Date{Time: start.AddDate(0, 0, 6)}}
}

func monthlyWindow(day Date) DateRange {
	return MonthRange(day.Year(), day.Month())
}

func quarterlyWindow(day Date) DateRange {
	first := time.Month((int(day.Month())-1)/3*3 + 1)
	start := NewDate(day.Year(), first, 1)
	return DateRange{Start: start, End: Date{Time: start.AddDate(0, 3, -1)}}
}

func yearlyWindow(day Date) DateRange {
	return DateRange{Start: NewDate(day.Year(), time.January, 1), End: NewDate(day.Year(), time.December, 31)}
}

var periodWindows = map[BudgetPeriod]WindowFunc{
	Weekly:    weeklyWindow,
	Monthly:   monthlyWindow,
	Quarterly: quarterlyWindow,
	Yearly:    yearlyWindow,
}

// PeriodWindow returns the window of period p that contains day.
func PeriodWindow(p BudgetPeriod, day Date) (DateRange, error) {
	fn, ok := periodWindows[p]
	if !ok {
		return DateRange{}, fmt.Errorf("%w: %q", ErrInvalidPeriod, p)
	}
	return fn(day), nil
}
