package selection

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-factor/internal/contracts"
	"github.com/wonny/aegis-factor/pkg/logger"
)

func monthly(n int) []time.Time {
	dates := make([]time.Time, n)
	for i := range dates {
		dates[i] = day(2020, time.Month(i+1), 1)
	}
	return dates
}

func rankPanel(dates []time.Time, assets []string, rows ...[]contracts.Cell) *contracts.Panel {
	p := contracts.NewPanel("ranks", dates, assets)
	for i, r := range rows {
		p.Values[i] = r
	}
	return p
}

func TestSelector_ReconcilesDates(t *testing.T) {
	dates := monthly(5)
	assets := []string{"A", "B"}
	full := rankPanel(dates, assets,
		row(1.0, 2.0), row(1.0, 2.0), row(1.0, 2.0), row(1.0, 2.0), row(2.0, 1.0))
	growth := rankPanel(dates, assets,
		row(nil, nil), row(nil, nil), row(nil, nil), row(1.0, 2.0), row(1.0, 2.0))

	sel, err := NewSelector(1, 3, logger.Nop()).Select(context.Background(), &contracts.RankSet{
		Profitability: full,
		Leverage:      full,
		Growth:        growth,
	})
	require.NoError(t, err)

	assert.Equal(t, dates[3:], sel.Dates())
	assert.Equal(t, 3.0, sel.Composite.At(0, 0).Unwrap())
	assert.Equal(t, 6.0, sel.Composite.At(0, 1).Unwrap())
	assert.Equal(t, []contracts.Member{{Asset: "A", Rank: 1, Composite: 3}}, sel.Members(dates[3]))
	assert.Equal(t, "B", sel.Members(dates[4])[0].Asset, "B wins 1+1+2 against 2+2+1 in May")
}

func TestSelector_CompositeMissingIffAnyRankMissing(t *testing.T) {
	dates := monthly(1)
	assets := []string{"A", "B", "C", "D"}
	ranks := &contracts.RankSet{
		Profitability: rankPanel(dates, assets, row(1.0, nil, 2.0, 3.0)),
		Leverage:      rankPanel(dates, assets, row(1.0, 1.0, nil, 2.0)),
		Growth:        rankPanel(dates, assets, row(1.0, 2.0, 3.0, 4.0)),
	}

	sel, err := NewSelector(10, 0, logger.Nop()).Select(context.Background(), ranks)
	require.NoError(t, err)

	for j := range assets {
		anyMissing := ranks.Profitability.At(0, j).IsNone() ||
			ranks.Leverage.At(0, j).IsNone() ||
			ranks.Growth.At(0, j).IsNone()
		assert.Equal(t, anyMissing, sel.Composite.At(0, j).IsNone(), assets[j])
		assert.Equal(t, anyMissing, sel.Rank.At(0, j).IsNone(), assets[j])
	}

	// two valid assets with K=10 → only those two selected, rest 0
	assert.Equal(t, []interface{}{1.0, 0.0, 0.0, 1.0}, values(sel.Mask.Values[0]))
}

func TestSelector_CardinalityAtMostK(t *testing.T) {
	dates := monthly(1)
	assets := []string{"A", "B", "C", "D", "E", "F"}
	// composite: A=3, B=6, C=6, D=6, E=12, F=15 → re-rank 1, 3, 3, 3, 5, 6
	ranks := &contracts.RankSet{
		Profitability: rankPanel(dates, assets, row(1.0, 2.0, 2.0, 2.0, 4.0, 5.0)),
		Leverage:      rankPanel(dates, assets, row(1.0, 2.0, 2.0, 2.0, 4.0, 5.0)),
		Growth:        rankPanel(dates, assets, row(1.0, 2.0, 2.0, 2.0, 4.0, 5.0)),
	}

	sel, err := NewSelector(3, 0, logger.Nop()).Select(context.Background(), ranks)
	require.NoError(t, err)

	assert.Equal(t, []interface{}{1.0, 3.0, 3.0, 3.0, 5.0, 6.0}, values(sel.Rank.Values[0]))

	selected := 0
	for _, c := range sel.Mask.Values[0] {
		selected += int(c.Unwrap())
	}
	assert.Equal(t, 3, selected, "tie straddling K is cut to K")
	assert.Equal(t, []interface{}{1.0, 1.0, 1.0, 0.0, 0.0, 0.0}, values(sel.Mask.Values[0]))
	assert.Equal(t, []interface{}{1.0, 3.0, 3.0, nil, nil, nil}, values(sel.Top.Values[0]))
}

func TestSelector_NoDatesLeft(t *testing.T) {
	dates := monthly(2)
	assets := []string{"A"}
	p := rankPanel(dates, assets, row(1.0), row(1.0))

	_, err := NewSelector(10, 3, logger.Nop()).Select(context.Background(), &contracts.RankSet{
		Profitability: p, Leverage: p, Growth: p,
	})
	assert.ErrorIs(t, err, contracts.ErrNoRebalanceDates)
}
