package s2_signals

import (
	"fmt"

	"github.com/wonny/aegis-factor/internal/contracts"
	"github.com/wonny/aegis-factor/pkg/logger"
)

// FactorCalculator derives the fundamental ratios from raw panels
// ⭐ SSOT: 팩터 비율 계산은 여기서만
type FactorCalculator struct {
	growthWindow int
	logger       *logger.Logger
}

// NewFactorCalculator creates a calculator using a trailing growth window
// measured in rebalancing periods
func NewFactorCalculator(growthWindow int, log *logger.Logger) *FactorCalculator {
	return &FactorCalculator{
		growthWindow: growthWindow,
		logger:       log,
	}
}

// GrowthWindow returns the trailing window in rebalancing periods
func (c *FactorCalculator) GrowthWindow() int {
	return c.growthWindow
}

// Leverage = liabilities / equity (debt-to-equity).
// Zero or missing equity gives a missing ratio.
func (c *FactorCalculator) Leverage(liabilities, equity *contracts.Panel) (*contracts.Panel, error) {
	p, err := contracts.Combine(string(contracts.FactorLeverage), liabilities, equity, contracts.Div)
	if err != nil {
		return nil, fmt.Errorf("leverage: %w", err)
	}
	return p, nil
}

// Profitability = net income / equity (ROE)
func (c *FactorCalculator) Profitability(netIncome, equity *contracts.Panel) (*contracts.Panel, error) {
	p, err := contracts.Combine(string(contracts.FactorProfitability), netIncome, equity, contracts.Div)
	if err != nil {
		return nil, fmt.Errorf("profitability: %w", err)
	}
	return p, nil
}

// Growth is the percentage change of net income over the trailing window.
// netIncome must already be restricted to rebalancing dates; the window
// counts rows of that panel, not trading days.
func (c *FactorCalculator) Growth(netIncome *contracts.Panel) *contracts.Panel {
	return netIncome.PctChange(c.growthWindow).Rename(string(contracts.FactorGrowth))
}
