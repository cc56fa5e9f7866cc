package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/aegis-factor/internal/contracts"
	"github.com/wonny/aegis-factor/pkg/logger"
)

// LeadingPolicy decides the signal on trading days before the first rebalance
type LeadingPolicy string

const (
	LeadingZero    LeadingPolicy = "zero"    // hold nothing
	LeadingMissing LeadingPolicy = "missing" // leave undefined; the return engine drops those days
)

// Expander implements S5: monthly selection → daily 0/1 signal
// ⭐ SSOT: S5 신호 확장은 여기서만
type Expander struct {
	topK    int
	leading LeadingPolicy
	logger  *logger.Logger
}

// NewExpander creates a new signal expander
func NewExpander(topK int, leading LeadingPolicy, logger *logger.Logger) *Expander {
	return &Expander{
		topK:    topK,
		leading: leading,
		logger:  logger,
	}
}

// Expand turns the selected re-ranks at rebalancing dates into a daily
// holding signal on the given trading calendar.
//
//  1. values in [1, topK] become 1
//  2. everything else, missing included, becomes 0
//  3. the result is reindexed onto daily and forward-filled per asset
//
// Applying Expand to its own output on the same calendar returns it unchanged.
func (e *Expander) Expand(ctx context.Context, top *contracts.Panel, daily []time.Time) (*contracts.Panel, error) {
	if top == nil || top.Cols() == 0 {
		return nil, fmt.Errorf("signal expansion: %w", contracts.ErrEmptyPanel)
	}
	if len(daily) == 0 {
		return nil, fmt.Errorf("signal expansion: no trading days: %w", contracts.ErrEmptyPanel)
	}

	binary := top.Map(func(c contracts.Cell) contracts.Cell {
		if c.IsSome() && c.Unwrap() >= 1 && c.Unwrap() <= float64(e.topK) {
			return contracts.Value(1)
		}
		return contracts.Value(0)
	})

	signals := binary.Reindex(daily).ForwardFill().Rename("signal")
	if e.leading != LeadingMissing {
		signals = signals.FillMissing(0)
	}

	leadingDays := 0
	for i := range signals.Values {
		if signals.CountDefined(i) > 0 {
			break
		}
		leadingDays++
	}

	e.logger.WithFields(map[string]interface{}{
		"rebalance_dates": top.Rows(),
		"trading_days":    signals.Rows(),
		"leading_policy":  string(e.leading),
		"undefined_days":  leadingDays,
	}).Info("Signal expansion completed")

	return signals, nil
}

// Holdings returns the number of held assets on each row of a 0/1 signal panel
func Holdings(signals *contracts.Panel) []int {
	out := make([]int, signals.Rows())
	for i, row := range signals.Values {
		for _, c := range row {
			if c.IsSome() && c.Unwrap() == 1 {
				out[i]++
			}
		}
	}
	return out
}
