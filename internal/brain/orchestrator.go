package brain

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/aegis-factor/internal/audit"
	"github.com/wonny/aegis-factor/internal/backtest"
	"github.com/wonny/aegis-factor/internal/contracts"
	"github.com/wonny/aegis-factor/internal/portfolio"
	"github.com/wonny/aegis-factor/internal/s0_data"
	"github.com/wonny/aegis-factor/internal/s0_data/quality"
	"github.com/wonny/aegis-factor/internal/s1_calendar"
	"github.com/wonny/aegis-factor/internal/s2_signals"
	"github.com/wonny/aegis-factor/internal/selection"
	"github.com/wonny/aegis-factor/internal/strategyconfig"
	"github.com/wonny/aegis-factor/pkg/logger"
)

// ResultStore persists a finished run
type ResultStore interface {
	SaveRun(ctx context.Context, rec *audit.RunRecord) error
}

// Orchestrator coordinates the entire pipeline
// ⭐ SSOT: 파이프라인 조율은 여기서만
type Orchestrator struct {
	cfg        *strategyconfig.Config
	configHash string

	// Stage components
	loader        s0_data.Loader
	qualityGate   *quality.QualityGate
	exporter      *s0_data.Exporter
	signalBuilder *s2_signals.Builder
	ranker        *selection.Ranker
	selector      *selection.Selector
	expander      *portfolio.Expander
	engine        *backtest.Engine
	analyzer      *audit.Analyzer

	store ResultStore

	logger *logger.Logger
}

// RunConfig holds configuration for a pipeline run
type RunConfig struct {
	RunID   uuid.UUID // generated when zero
	Export  bool      // write the flat CSV exports (needs SetExporter)
	Persist bool      // save the run (needs SetStore)
}

// RunResult holds the results of a complete pipeline run
type RunResult struct {
	RunID           uuid.UUID
	StartedAt       time.Time
	ConfigHash      string
	Success         bool
	Error           error
	CompletedStages []string

	Quality   *quality.Snapshot
	Dataset   *contracts.Dataset
	Rebalance []time.Time
	Factors   *contracts.FactorSet
	Ranks     *contracts.RankSet
	Selection *contracts.Selection
	Signals   *contracts.Panel
	Returns   *backtest.Result
	Report    *audit.PerformanceReport

	ExportedFiles []string
	Duration      time.Duration
}

// NewOrchestrator wires every stage from the strategy config
func NewOrchestrator(cfg *strategyconfig.Config, loader s0_data.Loader, log *logger.Logger) (*Orchestrator, error) {
	hash, err := strategyconfig.Hash(cfg)
	if err != nil {
		return nil, fmt.Errorf("hash strategy config: %w", err)
	}

	calc := s2_signals.NewFactorCalculator(cfg.Signals.GrowthWindow, log.Stage("S2:Factors"))
	fields := s2_signals.Fields{
		Equity:      cfg.Data.EquityField,
		Liabilities: cfg.Data.LiabilitiesField,
		NetIncome:   cfg.Data.NetIncomeField,
	}

	return &Orchestrator{
		cfg:        cfg,
		configHash: hash,
		loader:     loader,
		qualityGate: quality.NewQualityGate(quality.Config{
			Required: []string{cfg.Data.CloseField, cfg.Data.EquityField, cfg.Data.LiabilitiesField, cfg.Data.NetIncomeField},
		}, log.Stage("S0:Data")),
		signalBuilder: s2_signals.NewBuilder(calc, fields, log.Stage("S2:Factors")),
		ranker:        selection.NewRanker(selection.TiePolicy(cfg.Ranking.TiePolicy), log.Stage("S3:Ranker")),
		selector:      selection.NewSelector(cfg.Ranking.TopK, cfg.Signals.GrowthWindow, log.Stage("S4:Selector")),
		expander:      portfolio.NewExpander(cfg.Ranking.TopK, portfolio.LeadingPolicy(cfg.Portfolio.LeadingSignal), log.Stage("S5:Signals")),
		engine:        backtest.NewEngine(log.Stage("S6:Returns")),
		analyzer:      audit.NewAnalyzer(cfg.Report.PeriodsPerYear, cfg.Report.RiskFree, log.Stage("S7:Report")),
		logger:        log,
	}, nil
}

// SetExporter enables flat exports
func (o *Orchestrator) SetExporter(e *s0_data.Exporter) {
	o.exporter = e
}

// SetStore enables persistence
func (o *Orchestrator) SetStore(s ResultStore) {
	o.store = s
}

// Config returns the strategy config in use
func (o *Orchestrator) Config() *strategyconfig.Config {
	return o.cfg
}

// Run executes the complete pipeline once
// S0 → S1 → S2 → S3 → S4 → S5 → S6 → S7
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	startTime := time.Now()

	if config.RunID == uuid.Nil {
		config.RunID = uuid.New()
	}

	result := &RunResult{
		RunID:           config.RunID,
		StartedAt:       startTime,
		ConfigHash:      o.configHash,
		CompletedStages: make([]string, 0, 8),
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":      config.RunID.String(),
		"strategy":    o.cfg.Meta.StrategyID,
		"config_hash": o.configHash,
		"top_k":       o.cfg.Ranking.TopK,
	}).Info("Starting pipeline run")

	fail := func(stage string, err error) (*RunResult, error) {
		result.Error = fmt.Errorf("%s failed: %w", stage, err)
		result.Duration = time.Since(startTime)
		o.logger.WithError(err).WithField("stage", stage).Error("Pipeline run aborted")
		return result, result.Error
	}

	// S0: Load + Quality Gate (+ export)
	if err := o.runS0(ctx, config, result); err != nil {
		return fail("S0", err)
	}
	result.CompletedStages = append(result.CompletedStages, "S0:Data")

	// S1: Calendar
	result.Rebalance = s1_calendar.RebalanceDates(result.Dataset.Fields[o.cfg.Data.EquityField].Dates)
	if len(result.Rebalance) == 0 {
		return fail("S1", contracts.ErrNoRebalanceDates)
	}
	result.CompletedStages = append(result.CompletedStages, "S1:Calendar")

	// S2: Factors
	factors, err := o.signalBuilder.Build(ctx, result.Dataset)
	if err != nil {
		return fail("S2", err)
	}
	result.Factors = factors
	result.CompletedStages = append(result.CompletedStages, "S2:Factors")

	// S3: Ranking
	ranks, err := o.ranker.RankFactors(ctx, factors, o.directions())
	if err != nil {
		return fail("S3", err)
	}
	result.Ranks = ranks
	result.CompletedStages = append(result.CompletedStages, "S3:Ranker")

	// S4: Selection
	sel, err := o.selector.Select(ctx, ranks)
	if err != nil {
		return fail("S4", err)
	}
	result.Selection = sel
	result.CompletedStages = append(result.CompletedStages, "S4:Selector")

	// S5: Daily signals
	prices := result.Dataset.Fields[o.cfg.Data.CloseField]
	signals, err := o.expander.Expand(ctx, sel.Top, prices.Dates)
	if err != nil {
		return fail("S5", err)
	}
	result.Signals = signals
	result.CompletedStages = append(result.CompletedStages, "S5:Signals")

	// S6: Returns
	returns, err := o.engine.Run(ctx, prices, signals)
	if err != nil {
		return fail("S6", err)
	}
	result.Returns = returns
	result.CompletedStages = append(result.CompletedStages, "S6:Returns")

	// S7: Report
	report, err := o.analyzer.Analyze(ctx, returns.Returns)
	if err != nil {
		return fail("S7", err)
	}
	result.Report = report
	result.CompletedStages = append(result.CompletedStages, "S7:Report")

	if config.Persist {
		if o.store == nil {
			return fail("persist", fmt.Errorf("no result store configured"))
		}
		rec := audit.NewRunRecord(result.RunID, result.StartedAt, result.Dataset.Source, o.configHash,
			report, returns.Returns, returns.Holdings, sel)
		if err := o.store.SaveRun(ctx, rec); err != nil {
			return fail("persist", err)
		}
	}

	result.Success = true
	result.Duration = time.Since(startTime)

	o.logger.WithFields(map[string]interface{}{
		"run_id":       config.RunID.String(),
		"duration":     result.Duration.Seconds(),
		"stages":       len(result.CompletedStages),
		"return_days":  report.TradingDays,
		"cagr":         report.CAGR,
		"max_drawdown": report.MaxDrawdown,
	}).Info("Pipeline run completed successfully")

	return result, nil
}

// runS0 loads the dataset, gates it, and optionally exports it
func (o *Orchestrator) runS0(ctx context.Context, config RunConfig, result *RunResult) error {
	ds, err := o.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	snapshot, err := o.qualityGate.Check(ctx, ds)
	if err != nil {
		return fmt.Errorf("quality gate: %w", err)
	}
	result.Dataset = ds
	result.Quality = snapshot

	if config.Export {
		if o.exporter == nil {
			return fmt.Errorf("no exporter configured")
		}
		files, err := o.exporter.Export(ctx, ds, o.Exports())
		if err != nil {
			return err
		}
		result.ExportedFiles = files
	}

	return nil
}

// ExportData runs S0 only: load, gate and write the flat files
func (o *Orchestrator) ExportData(ctx context.Context) (*RunResult, error) {
	startTime := time.Now()
	result := &RunResult{
		RunID:      uuid.New(),
		StartedAt:  startTime,
		ConfigHash: o.configHash,
	}

	if err := o.runS0(ctx, RunConfig{Export: true}, result); err != nil {
		result.Error = fmt.Errorf("S0 failed: %w", err)
		result.Duration = time.Since(startTime)
		return result, result.Error
	}

	result.CompletedStages = []string{"S0:Data"}
	result.Success = true
	result.Duration = time.Since(startTime)

	o.logger.WithField("files", len(result.ExportedFiles)).Info("Export completed")
	return result, nil
}

// Exports lists the flat files written by S0
func (o *Orchestrator) Exports() []s0_data.Export {
	return []s0_data.Export{
		{Field: o.cfg.Data.CloseField, File: o.cfg.Export.ClosePrices},
		{Field: o.cfg.Data.EquityField, File: o.cfg.Export.TotalEquity},
		{Field: o.cfg.Data.LiabilitiesField, File: o.cfg.Export.TotalLiabilities},
	}
}

func (o *Orchestrator) directions() map[contracts.Factor]selection.Direction {
	d := o.cfg.Ranking.Directions
	return map[contracts.Factor]selection.Direction{
		contracts.FactorProfitability: selection.Direction(d.Profitability),
		contracts.FactorLeverage:      selection.Direction(d.Leverage),
		contracts.FactorGrowth:        selection.Direction(d.Growth),
	}
}
