package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/aegis-factor/internal/contracts"
)

// ErrRunNotFound is returned when no stored run matches
var ErrRunNotFound = errors.New("run not found")

// RunRecord is everything persisted for one pipeline run
type RunRecord struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	DataSource string
	ConfigHash string
	Report     *PerformanceReport
	Returns    []DailyReturn
	Selections []SelectionRow
}

// DailyReturn is one strategy return; Return is nil on excluded days
type DailyReturn struct {
	Date     time.Time `json:"date"`
	Return   *float64  `json:"return"`
	Holdings int       `json:"holdings"`
}

// SelectionRow is one selected asset at a rebalancing date
type SelectionRow struct {
	Date      time.Time `json:"date"`
	Asset     string    `json:"asset"`
	Rank      float64   `json:"rank"`
	Composite float64   `json:"composite"`
}

// StoredReport is the persisted summary of one run
type StoredReport struct {
	RunID      uuid.UUID         `json:"run_id"`
	StartedAt  time.Time         `json:"started_at"`
	DataSource string            `json:"data_source"`
	ConfigHash string            `json:"config_hash"`
	Report     PerformanceReport `json:"report"`
}

// Summary returns the stored form of the record
func (rec *RunRecord) Summary() *StoredReport {
	out := &StoredReport{
		RunID:      rec.RunID,
		StartedAt:  rec.StartedAt,
		DataSource: rec.DataSource,
		ConfigHash: rec.ConfigHash,
	}
	if rec.Report != nil {
		out.Report = *rec.Report
	}
	return out
}

// NewRunRecord flattens the pipeline outputs for persistence
func NewRunRecord(runID uuid.UUID, startedAt time.Time, source, configHash string,
	report *PerformanceReport, returns contracts.Series, holdings []int, sel *contracts.Selection) *RunRecord {
	rec := &RunRecord{
		RunID:      runID,
		StartedAt:  startedAt,
		DataSource: source,
		ConfigHash: configHash,
		Report:     report,
		Returns:    make([]DailyReturn, 0, returns.Len()),
	}

	for i, d := range returns.Dates {
		dr := DailyReturn{Date: d}
		if v := returns.Values[i]; v.IsSome() {
			r := v.Unwrap()
			dr.Return = &r
		}
		if i < len(holdings) {
			dr.Holdings = holdings[i]
		}
		rec.Returns = append(rec.Returns, dr)
	}

	if sel != nil {
		for _, d := range sel.Dates() {
			for _, m := range sel.Members(d) {
				rec.Selections = append(rec.Selections, SelectionRow{
					Date:      d,
					Asset:     m.Asset,
					Rank:      m.Rank,
					Composite: m.Composite,
				})
			}
		}
	}

	return rec
}

// Repository handles run persistence
// ⭐ SSOT: 실행 결과 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new audit repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const schemaDDL = `
	CREATE SCHEMA IF NOT EXISTS factor;

	CREATE TABLE IF NOT EXISTS factor.runs (
		run_id        UUID PRIMARY KEY,
		started_at    TIMESTAMPTZ NOT NULL,
		data_source   TEXT NOT NULL,
		config_hash   TEXT NOT NULL,
		start_date    DATE,
		end_date      DATE,
		trading_days  INTEGER,
		total_return  DOUBLE PRECISION,
		cagr          DOUBLE PRECISION,
		volatility    DOUBLE PRECISION,
		sharpe        DOUBLE PRECISION,
		sortino       DOUBLE PRECISION,
		max_drawdown  DOUBLE PRECISION,
		best_day      DOUBLE PRECISION,
		worst_day     DOUBLE PRECISION,
		var_95        DOUBLE PRECISION,
		cvar_95       DOUBLE PRECISION
	);

	CREATE TABLE IF NOT EXISTS factor.daily_returns (
		run_id    UUID NOT NULL REFERENCES factor.runs(run_id) ON DELETE CASCADE,
		date      DATE NOT NULL,
		ret       DOUBLE PRECISION,
		holdings  INTEGER NOT NULL,
		PRIMARY KEY (run_id, date)
	);

	CREATE TABLE IF NOT EXISTS factor.selections (
		run_id     UUID NOT NULL REFERENCES factor.runs(run_id) ON DELETE CASCADE,
		date       DATE NOT NULL,
		asset      TEXT NOT NULL,
		rank       DOUBLE PRECISION NOT NULL,
		composite  DOUBLE PRECISION NOT NULL,
		PRIMARY KEY (run_id, date, asset)
	);
`

// EnsureSchema creates the factor schema and tables if absent
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SaveRun stores one run in a single transaction
func (r *Repository) SaveRun(ctx context.Context, rec *RunRecord) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	rep := rec.Report
	if rep == nil {
		rep = &PerformanceReport{}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO factor.runs (
			run_id, started_at, data_source, config_hash, start_date, end_date,
			trading_days, total_return, cagr, volatility, sharpe, sortino, max_drawdown,
			best_day, worst_day, var_95, cvar_95
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`,
		rec.RunID, rec.StartedAt, rec.DataSource, rec.ConfigHash, rep.StartDate, rep.EndDate,
		rep.TradingDays, rep.TotalReturn, rep.CAGR, rep.Volatility, rep.Sharpe, rep.Sortino, rep.MaxDrawdown,
		rep.BestDay, rep.WorstDay, rep.TailRisk.VaR, rep.TailRisk.ExpectedShortfall,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"factor", "daily_returns"},
		[]string{"run_id", "date", "ret", "holdings"},
		pgx.CopyFromSlice(len(rec.Returns), func(i int) ([]any, error) {
			d := rec.Returns[i]
			return []any{rec.RunID, d.Date, d.Return, d.Holdings}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to copy daily returns: %w", err)
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"factor", "selections"},
		[]string{"run_id", "date", "asset", "rank", "composite"},
		pgx.CopyFromSlice(len(rec.Selections), func(i int) ([]any, error) {
			s := rec.Selections[i]
			return []any{rec.RunID, s.Date, s.Asset, s.Rank, s.Composite}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to copy selections: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// LatestRunID returns the most recently started run
func (r *Repository) LatestRunID(ctx context.Context) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		SELECT run_id FROM factor.runs ORDER BY started_at DESC LIMIT 1
	`).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, ErrRunNotFound
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return id, nil
}

// GetReport retrieves the stored summary of a run
func (r *Repository) GetReport(ctx context.Context, runID uuid.UUID) (*StoredReport, error) {
	out := &StoredReport{RunID: runID}
	rep := &out.Report
	err := r.pool.QueryRow(ctx, `
		SELECT started_at, data_source, config_hash, start_date, end_date,
			trading_days, total_return, cagr, volatility, sharpe, sortino, max_drawdown,
			COALESCE(best_day, 0), COALESCE(worst_day, 0),
			COALESCE(var_95, 0), COALESCE(cvar_95, 0)
		FROM factor.runs
		WHERE run_id = $1
	`, runID).Scan(
		&out.StartedAt, &out.DataSource, &out.ConfigHash, &rep.StartDate, &rep.EndDate,
		&rep.TradingDays, &rep.TotalReturn, &rep.CAGR, &rep.Volatility, &rep.Sharpe, &rep.Sortino, &rep.MaxDrawdown,
		&rep.BestDay, &rep.WorstDay,
		&rep.TailRisk.VaR, &rep.TailRisk.ExpectedShortfall,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	rep.TailRisk.Confidence = VaRConfidence
	return out, nil
}

// GetDailyReturns retrieves the return series of a run
func (r *Repository) GetDailyReturns(ctx context.Context, runID uuid.UUID) ([]DailyReturn, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT date, ret, holdings
		FROM factor.daily_returns
		WHERE run_id = $1
		ORDER BY date ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily returns: %w", err)
	}
	defer rows.Close()

	returns := make([]DailyReturn, 0)
	for rows.Next() {
		var d DailyReturn
		if err := rows.Scan(&d.Date, &d.Return, &d.Holdings); err != nil {
			return nil, fmt.Errorf("failed to scan return: %w", err)
		}
		returns = append(returns, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return returns, nil
}
