package core

import (
	"testing"
	"time"
)

func TestPeriodWindow(t *testing.T) {
	tests := []struct {
		period     BudgetPeriod
		day        Date
		start, end string
	}{
		// 2024-05-15 is a Wednesday.
		{Weekly, NewDate(2024, time.May, 15), "2024-05-13", "2024-05-19"},
		{Weekly, NewDate(2024, time.May, 19), "2024-05-13", "2024-05-19"},
		{Weekly, NewDate(2024, time.May, 13), "2024-05-13", "2024-05-19"},
		{Monthly, NewDate(2024, time.February, 10), "2024-02-01", "2024-02-29"},
		{Monthly, NewDate(2023, time.December, 31), "2023-12-01", "2023-12-31"},
		{Quarterly, NewDate(2024, time.May, 15), "2024-04-01", "2024-06-30"},
		{Quarterly, NewDate(2024, time.December, 1), "2024-10-01", "2024-12-31"},
		{Yearly, NewDate(2024, time.July, 4), "2024-01-01", "2024-12-31"},
	}
	for _, tt := range tests {
		t.Run(string(tt.period)+"_"+tt.day.String(), func(t *testing.T) {
			r, err := PeriodWindow(tt.period, tt.day)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.Start.String() != tt.start || r.End.String() != tt.end {
				t.Fatalf("got %s, want %s..%s", r, tt.start, tt.end)
			}
			if !r.Contains(tt.day) {
				t.Fatalf("window %s does not contain %s", r, tt.day)
			}
		})
	}

	if _, err := PeriodWindow("Daily", NewDate(2024, 1, 1)); err == nil {
		t.Fatal("expected error for unknown period")
	}
}
