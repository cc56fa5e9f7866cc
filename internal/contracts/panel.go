package contracts

import (
	"fmt"
	"time"
)

// Panel is a time-indexed table: one row per date, one column per asset.
// ⭐ SSOT: 스테이지 간 데이터 전달은 Panel 로만
//
// Every method returns a new Panel; a Panel handed to another stage is never
// modified in place.
type Panel struct {
	Name   string
	Dates  []time.Time
	Assets []string
	Values [][]Cell // [date][asset]
}

// NewPanel creates a panel of the given shape with every cell missing
func NewPanel(name string, dates []time.Time, assets []string) *Panel {
	values := make([][]Cell, len(dates))
	for i := range values {
		values[i] = make([]Cell, len(assets))
		for j := range values[i] {
			values[i][j] = Missing()
		}
	}
	return &Panel{
		Name:   name,
		Dates:  append([]time.Time(nil), dates...),
		Assets: append([]string(nil), assets...),
		Values: values,
	}
}

// Rows returns the number of dates
func (p *Panel) Rows() int { return len(p.Dates) }

// Cols returns the number of assets
func (p *Panel) Cols() int { return len(p.Assets) }

// At returns the cell at row i, column j
func (p *Panel) At(i, j int) Cell { return p.Values[i][j] }

// RowOf returns the row index of date, or -1
func (p *Panel) RowOf(date time.Time) int {
	for i, d := range p.Dates {
		if d.Equal(date) {
			return i
		}
	}
	return -1
}

// ColOf returns the column index of asset, or -1
func (p *Panel) ColOf(asset string) int {
	for j, a := range p.Assets {
		if a == asset {
			return j
		}
	}
	return -1
}

// Lookup returns the cell for (date, asset); missing if either is absent
func (p *Panel) Lookup(date time.Time, asset string) Cell {
	i, j := p.RowOf(date), p.ColOf(asset)
	if i < 0 || j < 0 {
		return Missing()
	}
	return p.Values[i][j]
}

// Clone returns a deep copy
func (p *Panel) Clone() *Panel {
	out := NewPanel(p.Name, p.Dates, p.Assets)
	for i := range p.Values {
		copy(out.Values[i], p.Values[i])
	}
	return out
}

// Rename returns a copy carrying a different name
func (p *Panel) Rename(name string) *Panel {
	out := p.Clone()
	out.Name = name
	return out
}

// SameShape checks that q has the identical date index and asset columns
func (p *Panel) SameShape(q *Panel) error {
	if len(p.Dates) != len(q.Dates) {
		return fmt.Errorf("%w: %s has %d dates, %s has %d", ErrPanelMismatch, p.Name, len(p.Dates), q.Name, len(q.Dates))
	}
	if len(p.Assets) != len(q.Assets) {
		return fmt.Errorf("%w: %s has %d assets, %s has %d", ErrPanelMismatch, p.Name, len(p.Assets), q.Name, len(q.Assets))
	}
	for i := range p.Dates {
		if !p.Dates[i].Equal(q.Dates[i]) {
			return fmt.Errorf("%w: date index differs at row %d (%s vs %s)", ErrPanelMismatch, i,
				p.Dates[i].Format("2006-01-02"), q.Dates[i].Format("2006-01-02"))
		}
	}
	for j := range p.Assets {
		if p.Assets[j] != q.Assets[j] {
			return fmt.Errorf("%w: column %d differs (%s vs %s)", ErrPanelMismatch, j, p.Assets[j], q.Assets[j])
		}
	}
	return nil
}

// Map applies fn to every cell
func (p *Panel) Map(fn func(Cell) Cell) *Panel {
	out := NewPanel(p.Name, p.Dates, p.Assets)
	for i, row := range p.Values {
		for j, c := range row {
			out.Values[i][j] = fn(c)
		}
	}
	return out
}

// Combine applies fn elementwise over two panels of the same shape
func Combine(name string, a, b *Panel, fn func(x, y Cell) Cell) (*Panel, error) {
	if err := a.SameShape(b); err != nil {
		return nil, err
	}
	out := NewPanel(name, a.Dates, a.Assets)
	for i := range a.Values {
		for j := range a.Values[i] {
			out.Values[i][j] = fn(a.Values[i][j], b.Values[i][j])
		}
	}
	return out, nil
}

// Restrict keeps the rows whose mask entry is true
func (p *Panel) Restrict(mask []bool) *Panel {
	dates := make([]time.Time, 0, len(p.Dates))
	rows := make([][]Cell, 0, len(p.Dates))
	for i, keep := range mask {
		if i >= len(p.Dates) || !keep {
			continue
		}
		dates = append(dates, p.Dates[i])
		rows = append(rows, append([]Cell(nil), p.Values[i]...))
	}
	return &Panel{Name: p.Name, Dates: dates, Assets: append([]string(nil), p.Assets...), Values: rows}
}

// DropFirst removes the first n rows
func (p *Panel) DropFirst(n int) *Panel {
	mask := make([]bool, len(p.Dates))
	for i := range mask {
		mask[i] = i >= n
	}
	return p.Restrict(mask)
}

// DropEmptyRows removes dates on which every asset is missing
func (p *Panel) DropEmptyRows() *Panel {
	mask := make([]bool, len(p.Dates))
	for i, row := range p.Values {
		for _, c := range row {
			if c.IsSome() {
				mask[i] = true
				break
			}
		}
	}
	return p.Restrict(mask)
}

// DropIncompleteRows removes dates on which any asset is missing
func (p *Panel) DropIncompleteRows() *Panel {
	mask := make([]bool, len(p.Dates))
	for i, row := range p.Values {
		mask[i] = true
		for _, c := range row {
			if c.IsNone() {
				mask[i] = false
				break
			}
		}
	}
	return p.Restrict(mask)
}

// Reindex maps the panel onto dates; rows absent from p become missing
func (p *Panel) Reindex(dates []time.Time) *Panel {
	out := NewPanel(p.Name, dates, p.Assets)
	index := make(map[int64]int, len(p.Dates))
	for i, d := range p.Dates {
		index[d.UnixNano()] = i
	}
	for i, d := range dates {
		if src, ok := index[d.UnixNano()]; ok {
			copy(out.Values[i], p.Values[src])
		}
	}
	return out
}

// ForwardFill carries each asset's last defined value forward over missing
// cells. Leading cells before the first defined value stay missing.
func (p *Panel) ForwardFill() *Panel {
	out := p.Clone()
	for j := range p.Assets {
		last := Missing()
		for i := range out.Values {
			if out.Values[i][j].IsSome() {
				last = out.Values[i][j]
				continue
			}
			out.Values[i][j] = last
		}
	}
	return out
}

// FillMissing replaces every missing cell with v
func (p *Panel) FillMissing(v float64) *Panel {
	return p.Map(func(c Cell) Cell {
		if c.IsNone() {
			return Value(v)
		}
		return c
	})
}

// Shift lags the panel by n rows: row i takes the value of row i-n.
// The first n rows become missing.
func (p *Panel) Shift(n int) *Panel {
	out := NewPanel(p.Name, p.Dates, p.Assets)
	for i := n; i < len(p.Values); i++ {
		copy(out.Values[i], p.Values[i-n])
	}
	return out
}

// PctChange returns (x_t - x_{t-n}) / x_{t-n} per asset along the rows
func (p *Panel) PctChange(n int) *Panel {
	out := NewPanel(p.Name, p.Dates, p.Assets)
	for i := n; i < len(p.Values); i++ {
		for j := range p.Assets {
			out.Values[i][j] = PctChange(p.Values[i-n][j], p.Values[i][j])
		}
	}
	return out
}

// Intersect restricts every panel to the dates present in all of them.
// Each panel keeps its own row order.
func Intersect(panels ...*Panel) []*Panel {
	if len(panels) == 0 {
		return nil
	}
	counts := make(map[int64]int)
	for _, p := range panels {
		for _, d := range p.Dates {
			counts[d.UnixNano()]++
		}
	}
	out := make([]*Panel, len(panels))
	for k, p := range panels {
		mask := make([]bool, len(p.Dates))
		for i, d := range p.Dates {
			mask[i] = counts[d.UnixNano()] == len(panels)
		}
		out[k] = p.Restrict(mask)
	}
	return out
}

// Column returns one asset as a Series
func (p *Panel) Column(asset string) (Series, bool) {
	j := p.ColOf(asset)
	if j < 0 {
		return Series{}, false
	}
	s := Series{Name: asset, Dates: append([]time.Time(nil), p.Dates...), Values: make([]Cell, len(p.Dates))}
	for i := range p.Values {
		s.Values[i] = p.Values[i][j]
	}
	return s, true
}

// CountDefined returns the number of non-missing cells in row i
func (p *Panel) CountDefined(i int) int {
	n := 0
	for _, c := range p.Values[i] {
		if c.IsSome() {
			n++
		}
	}
	return n
}
