package s1_calendar

import (
	"time"

	"github.com/wonny/aegis-factor/internal/contracts"
)

// MonthStarts flags the first trading day of each calendar month.
// ⭐ SSOT: S1 리밸런싱 캘린더는 여기서만
//
// A date is a month start when its (year, month) differs from the previous
// date's. The first date is always a month start, so the first entries may be
// partial months; the composite selector discards the lead-in.
func MonthStarts(dates []time.Time) []bool {
	flags := make([]bool, len(dates))
	for i, d := range dates {
		if i == 0 {
			flags[i] = true
			continue
		}
		prev := dates[i-1]
		flags[i] = d.Year() != prev.Year() || d.Month() != prev.Month()
	}
	return flags
}

// RebalanceDates returns the month-start dates in index order
func RebalanceDates(dates []time.Time) []time.Time {
	flags := MonthStarts(dates)
	out := make([]time.Time, 0, len(dates)/20+1)
	for i, ok := range flags {
		if ok {
			out = append(out, dates[i])
		}
	}
	return out
}

// Restrict keeps only the rows of p that fall on month starts of p's own index
func Restrict(p *contracts.Panel) *contracts.Panel {
	return p.Restrict(MonthStarts(p.Dates))
}
