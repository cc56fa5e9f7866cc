package s2_signals

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-factor/internal/contracts"
	"github.com/wonny/aegis-factor/pkg/logger"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func fill(name string, dates []time.Time, assets []string, fn func(i, j int) contracts.Cell) *contracts.Panel {
	p := contracts.NewPanel(name, dates, assets)
	for i := range dates {
		for j := range assets {
			p.Values[i][j] = fn(i, j)
		}
	}
	return p
}

func TestFactorCalculator_Leverage(t *testing.T) {
	dates := []time.Time{day(2020, 1, 2)}
	assets := []string{"LOW", "HIGH", "ZERO", "GAP"}
	liab := fill("liab", dates, assets, func(_, j int) contracts.Cell {
		return []contracts.Cell{contracts.Value(100), contracts.Value(200), contracts.Value(50), contracts.Missing()}[j]
	})
	equity := fill("equity", dates, assets, func(_, j int) contracts.Cell {
		return []contracts.Cell{contracts.Value(1000), contracts.Value(1000), contracts.Value(0), contracts.Value(10)}[j]
	})

	calc := NewFactorCalculator(3, logger.Nop())
	lev, err := calc.Leverage(liab, equity)
	require.NoError(t, err)

	assert.InDelta(t, 0.1, lev.At(0, 0).Unwrap(), 1e-12)
	assert.InDelta(t, 0.2, lev.At(0, 1).Unwrap(), 1e-12)
	assert.True(t, lev.At(0, 2).IsNone(), "zero equity must be missing, not an error")
	assert.True(t, lev.At(0, 3).IsNone())
	assert.Equal(t, "leverage", lev.Name)
}

func TestFactorCalculator_Growth(t *testing.T) {
	dates := []time.Time{day(2020, 1, 2), day(2020, 2, 3), day(2020, 3, 2), day(2020, 4, 1), day(2020, 5, 1)}
	income := fill("income", dates, []string{"A", "B"}, func(i, j int) contracts.Cell {
		if j == 1 && i == 1 {
			return contracts.Missing()
		}
		return contracts.Value(float64(100 + 10*i))
	})

	g := NewFactorCalculator(3, logger.Nop()).Growth(income)

	for i := 0; i < 3; i++ {
		assert.True(t, g.At(i, 0).IsNone(), "first window rows are missing")
	}
	assert.InDelta(t, (130.0-100.0)/100.0, g.At(3, 0).Unwrap(), 1e-12)
	assert.InDelta(t, (140.0-110.0)/110.0, g.At(4, 0).Unwrap(), 1e-12)
	assert.True(t, g.At(4, 1).IsNone(), "missing endpoint propagates")
}

func TestBuilder_Build(t *testing.T) {
	var dates []time.Time
	for d := day(2020, 1, 1); d.Before(day(2020, 6, 1)); d = d.AddDate(0, 0, 7) {
		dates = append(dates, d)
	}
	assets := []string{"A", "B"}

	ds := contracts.NewDataset("memory")
	ds.Fields[contracts.FieldTotalEquity] = fill(contracts.FieldTotalEquity, dates, assets, func(_, _ int) contracts.Cell { return contracts.Value(100) })
	ds.Fields[contracts.FieldTotalLiabilities] = fill(contracts.FieldTotalLiabilities, dates, assets, func(_, j int) contracts.Cell { return contracts.Value(float64(50 * (j + 1))) })
	ds.Fields[contracts.FieldNetIncome] = fill(contracts.FieldNetIncome, dates, assets, func(i, _ int) contracts.Cell { return contracts.Value(float64(10 + i)) })

	b := NewBuilder(NewFactorCalculator(3, logger.Nop()), DefaultFields(), logger.Nop())
	set, err := b.Build(context.Background(), ds)
	require.NoError(t, err)

	require.Len(t, set.Rebalance, 5, "Jan..May")
	assert.Equal(t, set.Rebalance, set.Leverage.Dates)
	assert.Equal(t, set.Rebalance, set.Profitability.Dates)
	assert.Equal(t, set.Rebalance, set.Growth.Dates)
	assert.InDelta(t, 1.0, set.Leverage.At(0, 1).Unwrap(), 1e-12)
	assert.True(t, set.Growth.At(2, 0).IsNone())
	assert.True(t, set.Growth.At(3, 0).IsSome())
}

func TestBuilder_Build_Errors(t *testing.T) {
	dates := []time.Time{day(2020, 1, 1)}
	b := NewBuilder(NewFactorCalculator(3, logger.Nop()), DefaultFields(), logger.Nop())

	ds := contracts.NewDataset("memory")
	ds.Fields[contracts.FieldTotalEquity] = contracts.NewPanel("eq", dates, []string{"A"})
	_, err := b.Build(context.Background(), ds)
	assert.ErrorIs(t, err, contracts.ErrFieldMissing)

	ds.Fields[contracts.FieldTotalLiabilities] = contracts.NewPanel("liab", dates, []string{"B"})
	ds.Fields[contracts.FieldNetIncome] = contracts.NewPanel("ni", dates, []string{"A"})
	_, err = b.Build(context.Background(), ds)
	assert.ErrorIs(t, err, contracts.ErrPanelMismatch)
}
