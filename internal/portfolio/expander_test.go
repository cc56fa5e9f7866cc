package portfolio

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

func row(values ...interface{}) []contracts.Cell {
	out := make([]contracts.Cell, len(values))
	for i, v := range values {
		if v == nil {
			out[i] = contracts.Missing()
			continue
		}
		out[i] = contracts.Value(v.(float64))
	}
	return out
}

func values(cells []contracts.Cell) []interface{} {
	out := make([]interface{}, len(cells))
	for i, c := range cells {
		if c.IsSome() {
			out[i] = c.Unwrap()
		}
	}
	return out
}

// trading days around the Feb and Mar 2021 rebalances
var daily = []time.Time{
	day(2021, 1, 28), day(2021, 1, 29),
	day(2021, 2, 1), day(2021, 2, 2), day(2021, 2, 3),
	day(2021, 3, 1), day(2021, 3, 2),
}

func topPanel() *contracts.Panel {
	p := contracts.NewPanel("top_rank", []time.Time{day(2021, 2, 1), day(2021, 3, 1)}, []string{"A", "B", "C"})
	p.Values[0] = row(1.0, 2.5, nil)
	p.Values[1] = row(nil, 1.0, 2.0)
	return p
}

func TestExpand(t *testing.T) {
	e := NewExpander(2, LeadingZero, logger.Nop())

	signals, err := e.Expand(context.Background(), topPanel(), daily)
	require.NoError(t, err)

	require.Equal(t, daily, signals.Dates)
	want := [][]interface{}{
		{0.0, 0.0, 0.0}, // before first rebalance
		{0.0, 0.0, 0.0},
		{1.0, 0.0, 0.0}, // 2.5 > K
		{1.0, 0.0, 0.0},
		{1.0, 0.0, 0.0},
		{0.0, 1.0, 1.0},
		{0.0, 1.0, 1.0},
	}
	for i := range want {
		assert.Equal(t, want[i], values(signals.Values[i]), daily[i].Format("2006-01-02"))
	}
	assert.Equal(t, []int{0, 0, 1, 1, 1, 2, 2}, Holdings(signals))
}

func TestExpand_LeadingMissing(t *testing.T) {
	e := NewExpander(2, LeadingMissing, logger.Nop())

	signals, err := e.Expand(context.Background(), topPanel(), daily)
	require.NoError(t, err)

	assert.Equal(t, []interface{}{nil, nil, nil}, values(signals.Values[0]))
	assert.Equal(t, []interface{}{nil, nil, nil}, values(signals.Values[1]))
	assert.Equal(t, []interface{}{1.0, 0.0, 0.0}, values(signals.Values[2]))
}

func TestExpand_Idempotent(t *testing.T) {
	for _, policy := range []LeadingPolicy{LeadingZero, LeadingMissing} {
		t.Run(string(policy), func(t *testing.T) {
			e := NewExpander(2, policy, logger.Nop())

			once, err := e.Expand(context.Background(), topPanel(), daily)
			require.NoError(t, err)
			twice, err := e.Expand(context.Background(), once.FillMissing(0), daily)
			require.NoError(t, err)

			assert.Equal(t, once.FillMissing(0).Values, twice.Values)
		})
	}
}

func TestExpand_Errors(t *testing.T) {
	e := NewExpander(2, LeadingZero, logger.Nop())

	_, err := e.Expand(context.Background(), nil, daily)
	assert.ErrorIs(t, err, contracts.ErrEmptyPanel)

	_, err = e.Expand(context.Background(), topPanel(), nil)
	assert.ErrorIs(t, err, contracts.ErrEmptyPanel)
}
