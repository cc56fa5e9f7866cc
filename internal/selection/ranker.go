package selection

import (
	"context"
	"fmt"
	"sort"

	"github.com/wonny/aegis-factor/internal/contracts"
	"github.com/wonny/aegis-factor/pkg/logger"
)

// Direction decides which end of a factor ranks first
type Direction string

const (
	Ascending  Direction = "ascending"  // rank 1 = lowest value
	Descending Direction = "descending" // rank 1 = highest value
)

// TiePolicy decides the rank shared by equal values
type TiePolicy string

const (
	TieAverage TiePolicy = "average" // mean of the tied positions
	TieMin     TiePolicy = "min"     // lowest tied position
	TieFirst   TiePolicy = "first"   // column order breaks the tie
)

// Ranker implements S3: cross-sectional ranking per rebalancing date
// ⭐ SSOT: S3 랭킹 로직은 여기서만
type Ranker struct {
	ties   TiePolicy
	logger *logger.Logger
}

// NewRanker creates a new ranker
func NewRanker(ties TiePolicy, logger *logger.Logger) *Ranker {
	return &Ranker{
		ties:   ties,
		logger: logger,
	}
}

// Rank ranks every row of p independently.
// Missing cells stay missing and do not consume a rank slot.
func (r *Ranker) Rank(p *contracts.Panel, dir Direction) *contracts.Panel {
	out := contracts.NewPanel(p.Name, p.Dates, p.Assets)
	for i, row := range p.Values {
		out.Values[i] = rankRow(row, dir, r.ties)
	}
	return out
}

// RankFactors ranks each factor of set in its configured direction
func (r *Ranker) RankFactors(ctx context.Context, set *contracts.FactorSet, dirs map[contracts.Factor]Direction) (*contracts.RankSet, error) {
	ranks := &contracts.RankSet{}
	for _, f := range contracts.Factors {
		dir, ok := dirs[f]
		if !ok {
			return nil, fmt.Errorf("no rank direction for factor %s", f)
		}
		panel := set.Get(f)
		if panel == nil {
			return nil, fmt.Errorf("factor %s: %w", f, contracts.ErrFieldMissing)
		}

		ranked := r.Rank(panel, dir)
		switch f {
		case contracts.FactorProfitability:
			ranks.Profitability = ranked
		case contracts.FactorLeverage:
			ranks.Leverage = ranked
		case contracts.FactorGrowth:
			ranks.Growth = ranked
		}

		r.logger.WithFields(map[string]interface{}{
			"factor":    string(f),
			"direction": string(dir),
			"dates":     ranked.Rows(),
		}).Debug("Factor ranked")
	}

	r.logger.WithFields(map[string]interface{}{
		"dates":      set.Profitability.Rows(),
		"tie_policy": string(r.ties),
	}).Info("Ranking completed")

	return ranks, nil
}

// rankRow assigns 1-based ranks to the defined cells of one date
func rankRow(row []contracts.Cell, dir Direction, ties TiePolicy) []contracts.Cell {
	out := make([]contracts.Cell, len(row))
	idx := make([]int, 0, len(row))
	for j, c := range row {
		out[j] = contracts.Missing()
		if c.IsSome() {
			idx = append(idx, j)
		}
	}

	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := row[idx[a]].Unwrap(), row[idx[b]].Unwrap()
		if dir == Descending {
			return va > vb
		}
		return va < vb
	})

	for start := 0; start < len(idx); {
		end := start + 1
		for end < len(idx) && row[idx[end]].Unwrap() == row[idx[start]].Unwrap() {
			end++
		}
		// positions start+1 .. end share one value
		for k := start; k < end; k++ {
			var rank float64
			switch ties {
			case TieMin:
				rank = float64(start + 1)
			case TieFirst:
				rank = float64(k + 1)
			default:
				rank = float64(start+1+end) / 2
			}
			out[idx[k]] = contracts.Value(rank)
		}
		start = end
	}

	return out
}
