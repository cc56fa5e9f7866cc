package s2_signals

import (
	"context"
	"fmt"

	"github.com/wonny/aegis-factor/internal/contracts"
	"github.com/wonny/aegis-factor/internal/s1_calendar"
	"github.com/wonny/aegis-factor/pkg/logger"
)

// Fields names the dataset fields the builder reads
type Fields struct {
	Equity      string
	Liabilities string
	NetIncome   string
}

// DefaultFields returns the field names of the source dataset
func DefaultFields() Fields {
	return Fields{
		Equity:      contracts.FieldTotalEquity,
		Liabilities: contracts.FieldTotalLiabilities,
		NetIncome:   contracts.FieldNetIncome,
	}
}

// Builder produces the FactorSet consumed by the ranker
// ⭐ SSOT: S2 팩터 생성 오케스트레이션은 여기서만
type Builder struct {
	calc   *FactorCalculator
	fields Fields
	logger *logger.Logger
}

// NewBuilder creates a new factor builder
func NewBuilder(calc *FactorCalculator, fields Fields, log *logger.Logger) *Builder {
	return &Builder{
		calc:   calc,
		fields: fields,
		logger: log,
	}
}

// Build computes leverage, profitability and growth at every rebalancing date
func (b *Builder) Build(ctx context.Context, ds *contracts.Dataset) (*contracts.FactorSet, error) {
	equity, err := ds.Get(b.fields.Equity)
	if err != nil {
		return nil, err
	}
	liabilities, err := ds.Get(b.fields.Liabilities)
	if err != nil {
		return nil, err
	}
	netIncome, err := ds.Get(b.fields.NetIncome)
	if err != nil {
		return nil, err
	}
	if equity.Rows() == 0 || equity.Cols() == 0 {
		return nil, fmt.Errorf("%s: %w", b.fields.Equity, contracts.ErrEmptyPanel)
	}

	leverage, err := b.calc.Leverage(liabilities, equity)
	if err != nil {
		return nil, err
	}
	profitability, err := b.calc.Profitability(netIncome, equity)
	if err != nil {
		return nil, err
	}

	// 월초 리밸런싱 날짜만 사용
	mask := s1_calendar.MonthStarts(equity.Dates)
	incomeAtRebalance := netIncome.Restrict(mask)

	set := &contracts.FactorSet{
		Rebalance:     s1_calendar.RebalanceDates(equity.Dates),
		Profitability: profitability.Restrict(mask),
		Leverage:      leverage.Restrict(mask),
		Growth:        b.calc.Growth(incomeAtRebalance),
	}

	b.logger.WithFields(map[string]interface{}{
		"trading_days":    equity.Rows(),
		"rebalance_dates": len(set.Rebalance),
		"assets":          equity.Cols(),
		"growth_window":   b.calc.GrowthWindow(),
	}).Info("Factor generation completed")

	return set, nil
}
