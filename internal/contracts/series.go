package contracts

import "time"

// Series is a single time-indexed column
type Series struct {
	Name   string
	Dates  []time.Time
	Values []Cell
}

// Len returns the number of dates
func (s Series) Len() int { return len(s.Dates) }

// Defined returns the dates and numbers of every non-missing point
func (s Series) Defined() ([]time.Time, []float64) {
	dates := make([]time.Time, 0, len(s.Dates))
	values := make([]float64, 0, len(s.Dates))
	for i, c := range s.Values {
		if c.IsNone() {
			continue
		}
		dates = append(dates, s.Dates[i])
		values = append(values, c.Unwrap())
	}
	return dates, values
}

// MissingCount returns the number of missing points
func (s Series) MissingCount() int {
	n := 0
	for _, c := range s.Values {
		if c.IsNone() {
			n++
		}
	}
	return n
}
