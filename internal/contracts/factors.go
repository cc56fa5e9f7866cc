package contracts

import (
	"sort"
	"time"
)

// Factor names one of the ranking factors
type Factor string

const (
	FactorProfitability Factor = "profitability" // net income / equity
	FactorLeverage      Factor = "leverage"      // liabilities / equity
	FactorGrowth        Factor = "growth"        // trailing net income growth
)

// Factors lists the factors in ranking order
var Factors = []Factor{FactorProfitability, FactorLeverage, FactorGrowth}

// FactorSet holds the three factor panels restricted to rebalancing dates
// ⭐ SSOT: S2 → S3 팩터 데이터 전달
type FactorSet struct {
	Rebalance     []time.Time
	Profitability *Panel
	Leverage      *Panel
	Growth        *Panel
}

// Get returns the panel for f
func (s *FactorSet) Get(f Factor) *Panel {
	switch f {
	case FactorProfitability:
		return s.Profitability
	case FactorLeverage:
		return s.Leverage
	case FactorGrowth:
		return s.Growth
	}
	return nil
}

// RankSet holds one cross-sectional rank table per factor
// ⭐ SSOT: S3 → S4 랭크 데이터 전달
type RankSet struct {
	Profitability *Panel
	Leverage      *Panel
	Growth        *Panel
}

// Get returns the rank table for f
func (s *RankSet) Get(f Factor) *Panel {
	switch f {
	case FactorProfitability:
		return s.Profitability
	case FactorLeverage:
		return s.Leverage
	case FactorGrowth:
		return s.Growth
	}
	return nil
}

// Selection is the S4 output: composite scores, their re-rank, and the 0/1 mask
// ⭐ SSOT: S4 → S5 선정 결과 전달
type Selection struct {
	TopK      int
	Composite *Panel // sum of factor ranks, missing if any rank is missing
	Rank      *Panel // composite re-ranked ascending, 1 = best
	Top       *Panel // Rank where selected, missing elsewhere
	Mask      *Panel // 1 selected, 0 otherwise
}

// Member is one selected asset at a rebalancing date
type Member struct {
	Asset     string  `json:"asset"`
	Rank      float64 `json:"rank"`
	Composite float64 `json:"composite"`
}

// Dates returns the rebalancing dates of the selection
func (s *Selection) Dates() []time.Time {
	return append([]time.Time(nil), s.Mask.Dates...)
}

// Members returns the selected assets at date ordered by composite rank
func (s *Selection) Members(date time.Time) []Member {
	i := s.Mask.RowOf(date)
	if i < 0 {
		return nil
	}
	members := make([]Member, 0, s.TopK)
	for j, asset := range s.Mask.Assets {
		if s.Mask.At(i, j).Unwrap() != 1 {
			continue
		}
		members = append(members, Member{
			Asset:     asset,
			Rank:      s.Rank.At(i, j).Unwrap(),
			Composite: s.Composite.At(i, j).Unwrap(),
		})
	}
	sort.SliceStable(members, func(a, b int) bool {
		return members[a].Rank < members[b].Rank
	})
	return members
}
