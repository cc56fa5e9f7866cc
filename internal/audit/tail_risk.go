package audit

import (
	"math"
	"sort"
)

// VaRConfidence is the confidence level of the reported daily VaR
const VaRConfidence = 0.95

// TailRisk is the historical-simulation value at risk of a return series.
// Both numbers are returns, so a loss is negative.
type TailRisk struct {
	Confidence        float64 `json:"confidence"`
	VaR               float64 `json:"var"`
	ExpectedShortfall float64 `json:"expected_shortfall"` // mean return at or below VaR
}

// CalculateTailRisk VaR 계산 (Historical Simulation)
// The (1-confidence) quantile interpolates linearly between order statistics.
func CalculateTailRisk(returns []float64, confidence float64) TailRisk {
	out := TailRisk{Confidence: confidence}
	if len(returns) == 0 {
		return out
	}

	// 오름차순: 손실이 앞에
	sorted := append([]float64(nil), returns...)
	sort.Float64s(sorted)

	out.VaR = quantile(sorted, 1-confidence)

	var sum float64
	n := 0
	for _, r := range sorted {
		if r > out.VaR {
			break
		}
		sum += r
		n++
	}
	if n > 0 {
		out.ExpectedShortfall = sum / float64(n)
	}
	return out
}

// quantile of an ascending slice, linear between neighbours
func quantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}
