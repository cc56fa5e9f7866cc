package s0_data

import (
	"compress/bzip2"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/wonny/aegis-factor/internal/contracts"
	"github.com/wonny/aegis-factor/pkg/logger"
)

// splitTable is one field in pandas "split" orientation
type splitTable struct {
	Columns []string          `json:"columns"`
	Index   []json.RawMessage `json:"index"`
	Data    [][]*float64      `json:"data"`
}

// JSONLoader reads a dictionary of split tables keyed by field name
type JSONLoader struct {
	path   string
	fields []string
	logger *logger.Logger
}

// NewJSONLoader creates a loader for path; a .bz2 suffix is decompressed
func NewJSONLoader(path string, fields []string, log *logger.Logger) *JSONLoader {
	return &JSONLoader{
		path:   path,
		fields: fields,
		logger: log,
	}
}

// Load implements Loader
func (l *JSONLoader) Load(ctx context.Context) (*contracts.Dataset, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(strings.ToLower(l.path), ".bz2") {
		r = bzip2.NewReader(f)
	}

	ds, err := DecodeJSON(r, l.path, l.fields)
	if err != nil {
		return nil, err
	}

	l.logger.WithFields(map[string]interface{}{
		"path":   l.path,
		"fields": ds.Names(),
	}).Info("Dataset loaded")

	return ds, nil
}

// DecodeJSON decodes a split-table dictionary from r
func DecodeJSON(r io.Reader, source string, fields []string) (*contracts.Dataset, error) {
	var tables map[string]splitTable
	if err := json.NewDecoder(r).Decode(&tables); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}

	names := make([]string, 0, len(tables))
	for name := range tables {
		if wanted(fields, name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	ds := contracts.NewDataset(source)
	for _, name := range names {
		p, err := tables[name].panel(name)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}
		ds.Fields[name] = p
	}

	return ds, nil
}

func (t splitTable) panel(name string) (*contracts.Panel, error) {
	if len(t.Data) != len(t.Index) {
		return nil, fmt.Errorf("%w: %d index entries, %d data rows", contracts.ErrPanelMismatch, len(t.Index), len(t.Data))
	}

	dates := make([]time.Time, len(t.Index))
	for i, raw := range t.Index {
		d, err := parseIndexDate(raw)
		if err != nil {
			return nil, fmt.Errorf("index row %d: %w", i, err)
		}
		dates[i] = d
	}

	p := contracts.NewPanel(name, dates, t.Columns)
	for i, row := range t.Data {
		if len(row) != len(t.Columns) {
			return nil, fmt.Errorf("%w: row %d has %d cells, %d columns", contracts.ErrPanelMismatch, i, len(row), len(t.Columns))
		}
		for j, v := range row {
			if v != nil {
				p.Values[i][j] = contracts.Value(*v)
			}
		}
	}
	return p, nil
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// parseIndexDate accepts epoch milliseconds (pandas default) or ISO strings
func parseIndexDate(raw json.RawMessage) (time.Time, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC(), nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognised date %q", s)
	}

	var ms int64
	if err := json.Unmarshal(raw, &ms); err != nil {
		return time.Time{}, fmt.Errorf("unrecognised date %s", string(raw))
	}
	return time.UnixMilli(ms).UTC(), nil
}
