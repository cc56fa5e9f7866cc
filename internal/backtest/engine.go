package backtest

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/aegis-factor/internal/contracts"
	"github.com/wonny/aegis-factor/internal/portfolio"
	"github.com/wonny/aegis-factor/pkg/logger"
)

// Engine implements S6: daily strategy returns from prices and signals
// ⭐ SSOT: S6 수익률 계산은 여기서만
type Engine struct {
	logger *logger.Logger
}

// Result holds the output of one return computation
type Result struct {
	// Contributions is lagged signal × asset return, on dates where every
	// asset is defined
	Contributions *contracts.Panel

	// Returns is the equal-weighted strategy return per contribution date.
	// Days without any non-zero contribution are missing, never 0.
	Returns contracts.Series

	// Holdings counts assets held (lagged signal = 1) per contribution date
	Holdings []int

	ExcludedDays int // contribution dates with an undefined return
	DroppedDays  int // price dates lost to the lag or to missing data
}

// StartDate returns the first contribution date
func (r *Result) StartDate() time.Time {
	if len(r.Returns.Dates) == 0 {
		return time.Time{}
	}
	return r.Returns.Dates[0]
}

// EndDate returns the last contribution date
func (r *Result) EndDate() time.Time {
	if len(r.Returns.Dates) == 0 {
		return time.Time{}
	}
	return r.Returns.Dates[len(r.Returns.Dates)-1]
}

// NewEngine creates a new return engine
func NewEngine(logger *logger.Logger) *Engine {
	return &Engine{logger: logger}
}

// Run computes the strategy return series.
// signals must share the date index and columns of prices; a signal acts on
// the return of the following trading day.
func (e *Engine) Run(ctx context.Context, prices, signals *contracts.Panel) (*Result, error) {
	if prices.Rows() < 2 || prices.Cols() == 0 {
		return nil, fmt.Errorf("prices: %w", contracts.ErrEmptyPanel)
	}
	if err := prices.SameShape(signals); err != nil {
		return nil, fmt.Errorf("signals vs prices: %w", err)
	}

	lagged := signals.Shift(1)
	assetReturns := prices.PctChange(1)

	all, err := contracts.Combine("contribution", lagged, assetReturns, contracts.Mul)
	if err != nil {
		return nil, err
	}
	contributions := all.DropIncompleteRows()

	result := &Result{
		Contributions: contributions,
		Returns: contracts.Series{
			Name:   "strategy",
			Dates:  append([]time.Time(nil), contributions.Dates...),
			Values: make([]contracts.Cell, contributions.Rows()),
		},
		DroppedDays: prices.Rows() - contributions.Rows(),
	}

	result.Holdings = portfolio.Holdings(lagged.Reindex(contributions.Dates))

	for i, row := range contributions.Values {
		result.Returns.Values[i] = meanNonZero(row)
		if result.Returns.Values[i].IsNone() {
			result.ExcludedDays++
		}
	}

	e.logger.WithFields(map[string]interface{}{
		"price_days":    prices.Rows(),
		"return_days":   contributions.Rows(),
		"dropped_days":  result.DroppedDays,
		"excluded_days": result.ExcludedDays,
	}).Info("Return computation completed")

	return result, nil
}

// meanNonZero averages the non-zero contributions of one day.
// A day where nothing contributes has no defined return.
func meanNonZero(row []contracts.Cell) contracts.Cell {
	sum, n := 0.0, 0
	for _, c := range row {
		if c.IsSome() && c.Unwrap() != 0 {
			sum += c.Unwrap()
			n++
		}
	}
	if n == 0 {
		return contracts.Missing()
	}
	return contracts.Value(sum / float64(n))
}
