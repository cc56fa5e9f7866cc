package contracts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// panelOf builds a panel from rows of *float64 (nil = missing)
func panelOf(dates []time.Time, assets []string, rows [][]interface{}) *Panel {
	p := NewPanel("test", dates, assets)
	for i, row := range rows {
		for j, v := range row {
			if v == nil {
				continue
			}
			p.Values[i][j] = Value(v.(float64))
		}
	}
	return p
}

func TestPanel_SameShape(t *testing.T) {
	dates := []time.Time{day(2020, 1, 2), day(2020, 1, 3)}
	a := NewPanel("a", dates, []string{"A", "B"})

	assert.NoError(t, a.SameShape(NewPanel("b", dates, []string{"A", "B"})))
	assert.ErrorIs(t, a.SameShape(NewPanel("c", dates, []string{"B", "A"})), ErrPanelMismatch)
	assert.ErrorIs(t, a.SameShape(NewPanel("d", dates[:1], []string{"A", "B"})), ErrPanelMismatch)
	assert.ErrorIs(t, a.SameShape(NewPanel("e", []time.Time{day(2020, 1, 2), day(2020, 1, 6)}, []string{"A", "B"})), ErrPanelMismatch)
}

func TestPanel_ForwardFill(t *testing.T) {
	dates := []time.Time{day(2020, 1, 1), day(2020, 1, 2), day(2020, 1, 3), day(2020, 1, 4)}
	p := panelOf(dates, []string{"A", "B"}, [][]interface{}{
		{nil, 1.0},
		{1.0, nil},
		{nil, 0.0},
		{nil, nil},
	})

	filled := p.ForwardFill()

	assert.True(t, filled.At(0, 0).IsNone(), "leading gap stays missing")
	assert.Equal(t, 1.0, filled.At(2, 0).Unwrap())
	assert.Equal(t, 1.0, filled.At(3, 0).Unwrap())
	assert.Equal(t, 1.0, filled.At(1, 1).Unwrap())
	assert.Equal(t, 0.0, filled.At(3, 1).Unwrap())

	// source untouched
	assert.True(t, p.At(2, 0).IsNone())
}

func TestPanel_ShiftAndPctChange(t *testing.T) {
	dates := []time.Time{day(2020, 1, 1), day(2020, 1, 2), day(2020, 1, 3)}
	p := panelOf(dates, []string{"A"}, [][]interface{}{{100.0}, {110.0}, {99.0}})

	shifted := p.Shift(1)
	assert.True(t, shifted.At(0, 0).IsNone())
	assert.Equal(t, 100.0, shifted.At(1, 0).Unwrap())
	assert.Equal(t, 110.0, shifted.At(2, 0).Unwrap())

	pct := p.PctChange(1)
	assert.True(t, pct.At(0, 0).IsNone())
	assert.InDelta(t, 0.10, pct.At(1, 0).Unwrap(), 1e-12)
	assert.InDelta(t, -0.10, pct.At(2, 0).Unwrap(), 1e-12)
}

func TestPanel_DropRows(t *testing.T) {
	dates := []time.Time{day(2020, 1, 1), day(2020, 2, 1), day(2020, 3, 1)}
	p := panelOf(dates, []string{"A", "B"}, [][]interface{}{
		{nil, nil},
		{1.0, nil},
		{1.0, 2.0},
	})

	assert.Equal(t, dates[1:], p.DropEmptyRows().Dates)
	assert.Equal(t, dates[2:], p.DropIncompleteRows().Dates)
	assert.Equal(t, dates[2:], p.DropFirst(2).Dates)
	assert.Empty(t, p.DropFirst(5).Dates)
}

func TestPanel_Reindex(t *testing.T) {
	monthly := panelOf([]time.Time{day(2020, 1, 2), day(2020, 2, 3)}, []string{"A"}, [][]interface{}{{1.0}, {0.0}})
	daily := []time.Time{day(2020, 1, 1), day(2020, 1, 2), day(2020, 1, 3), day(2020, 2, 3)}

	r := monthly.Reindex(daily)
	require.Equal(t, 4, r.Rows())
	assert.True(t, r.At(0, 0).IsNone())
	assert.Equal(t, 1.0, r.At(1, 0).Unwrap())
	assert.True(t, r.At(2, 0).IsNone())
	assert.Equal(t, 0.0, r.At(3, 0).Unwrap())
}

func TestIntersect(t *testing.T) {
	a := NewPanel("a", []time.Time{day(2020, 1, 1), day(2020, 2, 1), day(2020, 3, 1)}, []string{"A"})
	b := NewPanel("b", []time.Time{day(2020, 2, 1), day(2020, 3, 1), day(2020, 4, 1)}, []string{"A"})

	out := Intersect(a, b)
	require.Len(t, out, 2)
	assert.Equal(t, []time.Time{day(2020, 2, 1), day(2020, 3, 1)}, out[0].Dates)
	assert.Equal(t, out[0].Dates, out[1].Dates)
}

func TestCombine(t *testing.T) {
	dates := []time.Time{day(2020, 1, 1)}
	liab := panelOf(dates, []string{"A", "B", "C"}, [][]interface{}{{100.0, 200.0, nil}})
	eq := panelOf(dates, []string{"A", "B", "C"}, [][]interface{}{{50.0, 0.0, 10.0}})

	ratio, err := Combine("leverage", liab, eq, Div)
	require.NoError(t, err)
	assert.Equal(t, 2.0, ratio.At(0, 0).Unwrap())
	assert.True(t, ratio.At(0, 1).IsNone(), "zero equity is missing")
	assert.True(t, ratio.At(0, 2).IsNone())

	_, err = Combine("bad", liab, NewPanel("x", dates, []string{"A"}), Div)
	assert.ErrorIs(t, err, ErrPanelMismatch)
}

func TestSeries_Defined(t *testing.T) {
	s := Series{
		Dates:  []time.Time{day(2020, 1, 1), day(2020, 1, 2), day(2020, 1, 3)},
		Values: []Cell{Value(0.01), Missing(), Value(-0.02)},
	}
	dates, values := s.Defined()
	assert.Equal(t, []time.Time{day(2020, 1, 1), day(2020, 1, 3)}, dates)
	assert.Equal(t, []float64{0.01, -0.02}, values)
	assert.Equal(t, 1, s.MissingCount())
}
