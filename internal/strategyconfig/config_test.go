package strategyconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := "../../config/strategy/factor_quality.yaml"

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skip("config file not found")
	}

	cfg, yamlData, err := Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, yamlData)

	// 파일 설정 == 기본 설정
	assert.Equal(t, Default(), cfg)

	hash, err := Hash(cfg)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	// 동일 설정 → 동일 해시
	hash2, err := Hash(cfg)
	require.NoError(t, err)
	assert.Equal(t, hash, hash2)
}

func TestLoad_UnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("ranking:\n  top_kk: 5\n"), 0o644))

	_, _, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "top_kk")
}

func TestLoadOrDefault(t *testing.T) {
	cfg, data, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Contains(t, string(data), "growth_window: 3")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"default is valid", func(*Config) {}, ""},
		{"top_k zero", func(c *Config) { c.Ranking.TopK = 0 }, "ranking.top_k"},
		{"unknown tie policy", func(c *Config) { c.Ranking.TiePolicy = "dense" }, "ranking.tie_policy"},
		{"bad direction", func(c *Config) { c.Ranking.Directions.Leverage = "up" }, "ranking.directions.leverage"},
		{"growth window zero", func(c *Config) { c.Signals.GrowthWindow = 0 }, "signals.growth_window"},
		{"leading policy", func(c *Config) { c.Portfolio.LeadingSignal = "ffill" }, "portfolio.leading_signal"},
		{"missing field name", func(c *Config) { c.Data.NetIncomeField = "" }, "data.net_income_field"},
		{"negative risk free", func(c *Config) { c.Report.RiskFree = -0.01 }, "report.risk_free"},
		{"duplicate field", func(c *Config) { c.Data.EquityField = "Close" }, "data"},
		{"duplicate export", func(c *Config) { c.Export.TotalEquity = "close_prices.csv" }, "export"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)

			err := Validate(cfg)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}

			var verr ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestHash_ChangesWithConfig(t *testing.T) {
	a, err := Hash(Default())
	require.NoError(t, err)

	cfg := Default()
	cfg.Ranking.TopK = 20
	b, err := Hash(cfg)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestNewDecisionSnapshot(t *testing.T) {
	snap, err := NewDecisionSnapshot(Default(), []byte("meta: {}"), "data.json.bz2")
	require.NoError(t, err)

	assert.Equal(t, "quality_factor", snap.StrategyID)
	assert.Equal(t, "data.json.bz2", snap.DataSource)
	assert.Len(t, snap.ConfigHash, 64)
}
