package s0_data

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-factor/internal/contracts"
	"github.com/wonny/aegis-factor/pkg/logger"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewLoader(t *testing.T) {
	tests := []struct {
		path string
		want interface{}
	}{
		{"data.json", &JSONLoader{}},
		{"data.json.bz2", &JSONLoader{}},
		{"data.parquet", &DuckDBLoader{}},
		{"DATA.CSV", &DuckDBLoader{}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.IsType(t, tt.want, NewLoader(tt.path, nil, logger.Nop()))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	doc := `{
		"Close": {
			"columns": ["AAA", "BBB"],
			"index": ["2021-01-04", "2021-01-05T00:00:00.000Z"],
			"data": [[10.0, null], [11.5, 20.0]]
		},
		"Volume": {"columns": ["AAA"], "index": [1609718400000], "data": [[5]]}
	}`

	ds, err := DecodeJSON(strings.NewReader(doc), "inline", []string{contracts.FieldClose})
	require.NoError(t, err)

	assert.Equal(t, []string{contracts.FieldClose}, ds.Names(), "filtered fields are skipped")

	p, err := ds.Get(contracts.FieldClose)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(2021, 1, 4), day(2021, 1, 5)}, p.Dates)
	assert.Equal(t, []string{"AAA", "BBB"}, p.Assets)
	assert.Equal(t, 10.0, p.At(0, 0).Unwrap())
	assert.True(t, p.At(0, 1).IsNone())
	assert.Equal(t, 20.0, p.At(1, 1).Unwrap())
}

func TestDecodeJSON_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"ragged row", `{"Close": {"columns": ["A", "B"], "index": ["2021-01-04"], "data": [[1.0]]}}`},
		{"index length", `{"Close": {"columns": ["A"], "index": ["2021-01-04", "2021-01-05"], "data": [[1.0]]}}`},
		{"bad date", `{"Close": {"columns": ["A"], "index": ["yesterday"], "data": [[1.0]]}}`},
		{"not json", `{"Close": [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeJSON(strings.NewReader(tt.doc), "inline", nil)
			assert.Error(t, err)
		})
	}
}

func TestJSONLoader_Bzip2(t *testing.T) {
	ds, err := NewJSONLoader("testdata/sample.json.bz2", nil, logger.Nop()).Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{contracts.FieldClose, contracts.FieldTotalEquity}, ds.Names())

	prices, err := ds.Get(contracts.FieldClose)
	require.NoError(t, err)
	assert.Equal(t, []time.Time{day(2021, 1, 4), day(2021, 1, 5)}, prices.Dates)
	assert.Equal(t, 20.5, prices.At(0, 1).Unwrap())
	assert.True(t, prices.At(1, 1).IsNone())
}

func TestJSONLoader_MissingFile(t *testing.T) {
	_, err := NewJSONLoader("testdata/nope.json", nil, logger.Nop()).Load(context.Background())
	assert.Error(t, err)
}

func TestDuckDBLoader_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "long.csv")
	rows := "date,symbol,field,value\n" +
		"2021-01-04,BBB,Close,20.0\n" +
		"2021-01-04,AAA,Close,10.0\n" +
		"2021-01-05,AAA,Close,11.0\n" +
		"2021-01-05,AAA,Net Income,3.0\n" +
		"2021-01-04,AAA,Volume,100\n"
	require.NoError(t, os.WriteFile(path, []byte(rows), 0o644))

	loader := NewDuckDBLoader(path, []string{contracts.FieldClose, contracts.FieldNetIncome}, logger.Nop())
	ds, err := loader.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{contracts.FieldClose, contracts.FieldNetIncome}, ds.Names())

	prices, err := ds.Get(contracts.FieldClose)
	require.NoError(t, err)
	income, err := ds.Get(contracts.FieldNetIncome)
	require.NoError(t, err)

	require.NoError(t, prices.SameShape(income), "panels share the union index")
	assert.Equal(t, []string{"AAA", "BBB"}, prices.Assets)
	assert.Equal(t, []time.Time{day(2021, 1, 4), day(2021, 1, 5)}, prices.Dates)
	assert.Equal(t, 10.0, prices.At(0, 0).Unwrap())
	assert.True(t, prices.At(1, 1).IsNone(), "BBB has no close on the 5th")
	assert.True(t, income.At(0, 0).IsNone())
	assert.Equal(t, 3.0, income.At(1, 0).Unwrap())
}

func TestDuckDBLoader_Query(t *testing.T) {
	loader := NewDuckDBLoader("it's.parquet", []string{"Close"}, logger.Nop())

	query, args, err := loader.query()
	require.NoError(t, err)

	assert.Contains(t, query, "read_parquet('it''s.parquet')")
	assert.Contains(t, query, "field IN ($1)")
	assert.Equal(t, []interface{}{"Close"}, args)
}
