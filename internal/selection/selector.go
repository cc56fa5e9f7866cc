package selection

import (
	"context"
	"sort"

	"github.com/wonny/aegis-factor/internal/contracts"
	"github.com/wonny/aegis-factor/pkg/logger"
)

// Selector implements S4: composite rank and top-K selection
// ⭐ SSOT: S4 종목 선정은 여기서만
type Selector struct {
	topK   int
	leadIn int // rebalancing dates without growth history
	logger *logger.Logger
}

// NewSelector creates a selector keeping topK assets per date.
// leadIn is the growth window: that many leading dates are dropped from the
// profitability and leverage rank tables.
func NewSelector(topK, leadIn int, logger *logger.Logger) *Selector {
	return &Selector{
		topK:   topK,
		leadIn: leadIn,
		logger: logger,
	}
}

// Select reconciles the rank tables, sums them and keeps the best topK per date
func (s *Selector) Select(ctx context.Context, ranks *contracts.RankSet) (*contracts.Selection, error) {
	profitability := ranks.Profitability.DropFirst(s.leadIn)
	leverage := ranks.Leverage.DropFirst(s.leadIn)
	growth := ranks.Growth.DropEmptyRows()

	aligned := contracts.Intersect(profitability, leverage, growth)
	profitability, leverage, growth = aligned[0], aligned[1], aligned[2]
	if profitability.Rows() == 0 {
		return nil, contracts.ErrNoRebalanceDates
	}

	partial, err := contracts.Combine("composite", profitability, leverage, contracts.Add)
	if err != nil {
		return nil, err
	}
	composite, err := contracts.Combine("composite", partial, growth, contracts.Add)
	if err != nil {
		return nil, err
	}

	rank := NewRanker(TieAverage, s.logger).Rank(composite, Ascending).Rename("composite_rank")
	top := contracts.NewPanel("top_rank", rank.Dates, rank.Assets)
	mask := contracts.NewPanel("selection", rank.Dates, rank.Assets).FillMissing(0)
	for i := range rank.Values {
		for _, j := range s.topColumns(rank.Values[i]) {
			top.Values[i][j] = rank.Values[i][j]
			mask.Values[i][j] = contracts.Value(1)
		}
	}

	selection := &contracts.Selection{
		TopK:      s.topK,
		Composite: composite,
		Rank:      rank,
		Top:       top,
		Mask:      mask,
	}

	first, last := composite.Dates[0], composite.Dates[composite.Rows()-1]
	s.logger.WithFields(map[string]interface{}{
		"dates":      composite.Rows(),
		"first_date": first.Format("2006-01-02"),
		"last_date":  last.Format("2006-01-02"),
		"top_k":      s.topK,
		"lead_in":    s.leadIn,
	}).Info("Selection completed")

	return selection, nil
}

// topColumns returns the columns whose re-rank is <= topK.
// An average-rank tie straddling topK could admit more than topK assets; the
// group is then cut in column order so at most topK are kept.
func (s *Selector) topColumns(row []contracts.Cell) []int {
	cols := make([]int, 0, s.topK)
	for j, c := range row {
		if c.IsSome() && c.Unwrap() <= float64(s.topK) {
			cols = append(cols, j)
		}
	}
	if len(cols) <= s.topK {
		return cols
	}
	sort.SliceStable(cols, func(a, b int) bool {
		return row[cols[a]].Unwrap() < row[cols[b]].Unwrap()
	})
	cols = cols[:s.topK]
	sort.Ints(cols)
	return cols
}
