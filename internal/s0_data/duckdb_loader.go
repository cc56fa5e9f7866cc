package s0_data

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"

	"github.com/wonny/aegis-factor/internal/contracts"
	"github.com/wonny/aegis-factor/pkg/logger"
)

// DuckDBLoader reads long-format rows (date, symbol, field, value) from a
// parquet or CSV file. Panels share the union date index and universe.
type DuckDBLoader struct {
	path   string
	fields []string
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBLoader creates a loader over path
func NewDuckDBLoader(path string, fields []string, log *logger.Logger) *DuckDBLoader {
	return &DuckDBLoader{
		path:   path,
		fields: fields,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

type longRow struct {
	date   time.Time
	symbol string
	field  string
	value  sql.NullFloat64
}

// Load implements Loader
func (l *DuckDBLoader) Load(ctx context.Context) (*contracts.Dataset, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer db.Close()

	query, args, err := l.query()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", l.path, err)
	}
	defer rows.Close()

	var records []longRow
	for rows.Next() {
		var r longRow
		if err := rows.Scan(&r.date, &r.symbol, &r.field, &r.value); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	ds := pivot(l.path, records)

	l.logger.WithFields(map[string]interface{}{
		"path":   l.path,
		"rows":   len(records),
		"fields": ds.Names(),
	}).Info("Dataset loaded")

	return ds, nil
}

func (l *DuckDBLoader) query() (string, []interface{}, error) {
	q := l.sq.
		Select(
			"CAST(date AS TIMESTAMP) AS date",
			"CAST(symbol AS VARCHAR) AS symbol",
			"CAST(field AS VARCHAR) AS field",
			"CAST(value AS DOUBLE) AS value",
		).
		From(l.source()).
		OrderBy("date", "symbol")

	if len(l.fields) > 0 {
		q = q.Where(squirrel.Eq{"field": l.fields})
	}

	return q.ToSql()
}

// source is the table function reading the file
func (l *DuckDBLoader) source() string {
	path := strings.ReplaceAll(l.path, "'", "''")
	if strings.HasSuffix(strings.ToLower(l.path), ".csv") {
		return fmt.Sprintf("read_csv_auto('%s')", path)
	}
	return fmt.Sprintf("read_parquet('%s')", path)
}

// pivot builds one panel per field on the union dates and symbols
func pivot(source string, records []longRow) *contracts.Dataset {
	dateSet := make(map[int64]time.Time)
	symbolSet := make(map[string]struct{})
	fieldSet := make(map[string]struct{})
	for _, r := range records {
		dateSet[r.date.UnixNano()] = r.date.UTC()
		symbolSet[r.symbol] = struct{}{}
		fieldSet[r.field] = struct{}{}
	}

	dates := make([]time.Time, 0, len(dateSet))
	for _, d := range dateSet {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	symbols := make([]string, 0, len(symbolSet))
	for s := range symbolSet {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	rowOf := make(map[int64]int, len(dates))
	for i, d := range dates {
		rowOf[d.UnixNano()] = i
	}
	colOf := make(map[string]int, len(symbols))
	for j, s := range symbols {
		colOf[s] = j
	}

	ds := contracts.NewDataset(source)
	for field := range fieldSet {
		ds.Fields[field] = contracts.NewPanel(field, dates, symbols)
	}
	for _, r := range records {
		if !r.value.Valid {
			continue
		}
		p := ds.Fields[r.field]
		p.Values[rowOf[r.date.UnixNano()]][colOf[r.symbol]] = contracts.Value(r.value.Float64)
	}

	return ds
}
