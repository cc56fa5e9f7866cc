package audit

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/wonny/aegis-factor/internal/contracts"
	"github.com/wonny/aegis-factor/pkg/logger"
)

// ErrNoReturns is returned when a series has no defined return
var ErrNoReturns = errors.New("no defined returns")

// DefaultPeriodsPerYear is the trading-day count used to annualize
const DefaultPeriodsPerYear = 252

// Analyzer implements S7: performance summary of a return series
// ⭐ SSOT: S7 성과 분석 로직은 여기서만
type Analyzer struct {
	periodsPerYear int
	riskFree       float64 // per period
	logger         *logger.Logger
}

// NewAnalyzer creates a new performance analyzer.
// riskFree is the risk-free return per period, not per year.
func NewAnalyzer(periodsPerYear int, riskFree float64, logger *logger.Logger) *Analyzer {
	if periodsPerYear <= 0 {
		periodsPerYear = DefaultPeriodsPerYear
	}
	return &Analyzer{
		periodsPerYear: periodsPerYear,
		riskFree:       riskFree,
		logger:         logger,
	}
}

// PerformanceReport represents performance analysis report
type PerformanceReport struct {
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	TradingDays int       `json:"trading_days"`

	// 수익률
	TotalReturn float64 `json:"total_return"`
	CAGR        float64 `json:"cagr"`

	// 리스크 지표
	Volatility  float64 `json:"volatility"`
	Sharpe      float64 `json:"sharpe"`
	Sortino     float64 `json:"sortino"`
	MaxDrawdown float64 `json:"max_drawdown"`

	BestDay  float64 `json:"best_day"`
	WorstDay float64 `json:"worst_day"`

	// 일간 VaR (95%)
	TailRisk TailRisk `json:"tail_risk"`
}

// Analyze summarizes the defined points of a return series.
// Undefined days are skipped; they never count as zero returns.
func (a *Analyzer) Analyze(ctx context.Context, series contracts.Series) (*PerformanceReport, error) {
	dates, returns := series.Defined()
	if len(returns) == 0 {
		return nil, ErrNoReturns
	}

	report := &PerformanceReport{
		StartDate:   dates[0],
		EndDate:     dates[len(dates)-1],
		TradingDays: len(returns),
	}

	report.TotalReturn = a.calculateTotalReturn(returns)
	report.CAGR = a.calculateCAGR(report.TotalReturn, len(returns))
	report.Volatility = a.calculateVolatility(returns)
	report.Sharpe = a.calculateSharpe(returns)
	report.Sortino = a.calculateSortino(returns)
	report.MaxDrawdown = a.calculateMaxDrawdown(returns)
	report.BestDay, report.WorstDay = bestWorst(returns)
	report.TailRisk = CalculateTailRisk(returns, VaRConfidence)

	a.logger.WithFields(map[string]interface{}{
		"trading_days":   report.TradingDays,
		"skipped_days":   series.MissingCount(),
		"cagr":           report.CAGR,
		"sharpe":         report.Sharpe,
		"max_drawdown":   report.MaxDrawdown,
		"periods_per_yr": a.periodsPerYear,
	}).Info("Performance analysis completed")

	return report, nil
}

// calculateTotalReturn calculates cumulative return
func (a *Analyzer) calculateTotalReturn(returns []float64) float64 {
	cum := 1.0
	for _, r := range returns {
		cum *= 1.0 + r
	}
	return cum - 1.0
}

// calculateCAGR annualizes the total return over len(returns) periods
func (a *Analyzer) calculateCAGR(totalReturn float64, periods int) float64 {
	years := float64(periods) / float64(a.periodsPerYear)
	if totalReturn <= -1 {
		return -1
	}
	return math.Pow(1.0+totalReturn, 1.0/years) - 1.0
}

// calculateVolatility calculates annualized volatility (sample std)
func (a *Analyzer) calculateVolatility(returns []float64) float64 {
	return stdDev(returns) * math.Sqrt(float64(a.periodsPerYear))
}

// calculateSharpe = mean excess return / sample std, annualized.
// 0 for a flat series.
func (a *Analyzer) calculateSharpe(returns []float64) float64 {
	sd := stdDev(returns)
	if sd == 0 {
		return 0
	}
	return (mean(returns) - a.riskFree) / sd * math.Sqrt(float64(a.periodsPerYear))
}

// calculateSortino uses the downside deviation below the risk-free rate,
// averaged over all periods. 0 when there is no downside.
func (a *Analyzer) calculateSortino(returns []float64) float64 {
	var sumSq float64
	for _, r := range returns {
		if d := r - a.riskFree; d < 0 {
			sumSq += d * d
		}
	}
	downside := math.Sqrt(sumSq/float64(len(returns))) * math.Sqrt(float64(a.periodsPerYear))
	if downside == 0 {
		return 0
	}
	return (mean(returns) - a.riskFree) * float64(a.periodsPerYear) / downside
}

// calculateMaxDrawdown calculates maximum drawdown, measured from the
// starting capital as well as from later peaks
func (a *Analyzer) calculateMaxDrawdown(returns []float64) float64 {
	cumValue := 1.0
	peak := 1.0
	maxDD := 0.0

	for _, r := range returns {
		cumValue *= 1.0 + r
		if cumValue > peak {
			peak = cumValue
		}
		if dd := (cumValue - peak) / peak; dd < maxDD {
			maxDD = dd
		}
	}

	return maxDD
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stdDev is the sample standard deviation (n-1); 0 below two points
func stdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var variance float64
	for _, x := range xs {
		variance += (x - m) * (x - m)
	}
	return math.Sqrt(variance / float64(len(xs)-1))
}

func bestWorst(xs []float64) (best, worst float64) {
	best, worst = xs[0], xs[0]
	for _, x := range xs[1:] {
		best = math.Max(best, x)
		worst = math.Min(worst, x)
	}
	return best, worst
}
