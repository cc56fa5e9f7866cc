package quality

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/aegis-factor/internal/contracts"
	"github.com/wonny/aegis-factor/pkg/logger"
)

// Config holds quality gate settings
type Config struct {
	Required    []string // fields that must exist with one shared shape
	MinCoverage float64  // warn below this share of defined cells; 0 disables
}

// Snapshot records the structural check of one dataset
type Snapshot struct {
	Source    string             `json:"source"`
	Dates     int                `json:"dates"`
	Assets    int                `json:"assets"`
	FirstDate time.Time          `json:"first_date"`
	LastDate  time.Time          `json:"last_date"`
	Coverage  map[string]float64 `json:"coverage"` // defined cells / all cells
	Warnings  []string           `json:"warnings,omitempty"`
	Passed    bool               `json:"passed"`
}

// QualityGate validates dataset structure before any computation
type QualityGate struct {
	config Config
	logger *logger.Logger
}

// NewQualityGate creates a new QualityGate instance
func NewQualityGate(config Config, log *logger.Logger) *QualityGate {
	return &QualityGate{
		config: config,
		logger: log,
	}
}

// Check validates the dataset.
// ⭐ SSOT: S0 → S1 품질 검증
// Missing fields, empty panels, unordered dates and misaligned panels are
// fatal. Low coverage only adds a warning; missing cells are legitimate data.
func (g *QualityGate) Check(ctx context.Context, ds *contracts.Dataset) (*Snapshot, error) {
	if len(g.config.Required) == 0 {
		return nil, fmt.Errorf("quality gate: no required fields configured")
	}

	ref, err := ds.Get(g.config.Required[0])
	if err != nil {
		return nil, err
	}
	if ref.Rows() == 0 || ref.Cols() == 0 {
		return nil, fmt.Errorf("%s: %w", ref.Name, contracts.ErrEmptyPanel)
	}
	for i := 1; i < ref.Rows(); i++ {
		if !ref.Dates[i].After(ref.Dates[i-1]) {
			return nil, fmt.Errorf("%w: %s dates not strictly increasing at row %d", contracts.ErrPanelMismatch, ref.Name, i)
		}
	}

	snapshot := &Snapshot{
		Source:    ds.Source,
		Dates:     ref.Rows(),
		Assets:    ref.Cols(),
		FirstDate: ref.Dates[0],
		LastDate:  ref.Dates[ref.Rows()-1],
		Coverage:  make(map[string]float64, len(g.config.Required)),
	}

	for _, field := range g.config.Required {
		p, err := ds.Get(field)
		if err != nil {
			return nil, err
		}
		if err := ref.SameShape(p); err != nil {
			return nil, fmt.Errorf("field %s: %w", field, err)
		}

		snapshot.Coverage[field] = coverage(p)
		if g.config.MinCoverage > 0 && snapshot.Coverage[field] < g.config.MinCoverage {
			msg := fmt.Sprintf("%s coverage %.1f%% below %.1f%%", field, snapshot.Coverage[field]*100, g.config.MinCoverage*100)
			snapshot.Warnings = append(snapshot.Warnings, msg)
			g.logger.WithField("field", field).Warn(msg)
		}
	}
	snapshot.Passed = true

	g.logger.WithFields(map[string]interface{}{
		"dates":    snapshot.Dates,
		"assets":   snapshot.Assets,
		"warnings": len(snapshot.Warnings),
	}).Info("Quality gate passed")

	return snapshot, nil
}

func coverage(p *contracts.Panel) float64 {
	total := p.Rows() * p.Cols()
	if total == 0 {
		return 0
	}
	defined := 0
	for i := range p.Values {
		defined += p.CountDefined(i)
	}
	return float64(defined) / float64(total)
}
