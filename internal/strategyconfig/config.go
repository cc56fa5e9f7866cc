package strategyconfig

import "time"

// Config는 퀄리티 팩터 전략의 전체 설정
type Config struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Data      Data      `yaml:"data" json:"data"`
	Export    Export    `yaml:"export" json:"export"`
	Signals   Signals   `yaml:"signals" json:"signals"`
	Ranking   Ranking   `yaml:"ranking" json:"ranking"`
	Portfolio Portfolio `yaml:"portfolio" json:"portfolio"`
	Report    Report    `yaml:"report" json:"report"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id" validate:"required"`
	Version    string `yaml:"version" json:"version" validate:"required"`
}

// Data S0: dataset field names
type Data struct {
	CloseField       string `yaml:"close_field" json:"close_field" validate:"required"`
	EquityField      string `yaml:"equity_field" json:"equity_field" validate:"required"`
	LiabilitiesField string `yaml:"liabilities_field" json:"liabilities_field" validate:"required"`
	NetIncomeField   string `yaml:"net_income_field" json:"net_income_field" validate:"required"`
}

// Export S0: flat CSV file names
type Export struct {
	ClosePrices      string `yaml:"close_prices" json:"close_prices" validate:"required"`
	TotalEquity      string `yaml:"total_equity" json:"total_equity" validate:"required"`
	TotalLiabilities string `yaml:"total_liabilities" json:"total_liabilities" validate:"required"`
}

// Signals S2: 팩터 계산
type Signals struct {
	GrowthWindow int `yaml:"growth_window" json:"growth_window" validate:"min=1"` // 리밸런싱 기간 수
}

// Ranking S3/S4: 랭킹 및 선정
type Ranking struct {
	TopK       int        `yaml:"top_k" json:"top_k" validate:"min=1"`
	TiePolicy  string     `yaml:"tie_policy" json:"tie_policy" validate:"oneof=average min first"`
	Directions Directions `yaml:"directions" json:"directions"`
}

// Directions 팩터별 정렬 방향
type Directions struct {
	Profitability string `yaml:"profitability" json:"profitability" validate:"oneof=ascending descending"`
	Leverage      string `yaml:"leverage" json:"leverage" validate:"oneof=ascending descending"`
	Growth        string `yaml:"growth" json:"growth" validate:"oneof=ascending descending"`
}

// Portfolio S5: 신호 확장
type Portfolio struct {
	LeadingSignal string `yaml:"leading_signal" json:"leading_signal" validate:"oneof=zero missing"`
}

// Report S7: 성과 분석
type Report struct {
	PeriodsPerYear int     `yaml:"periods_per_year" json:"periods_per_year" validate:"min=1"`
	RiskFree       float64 `yaml:"risk_free" json:"risk_free" validate:"gte=0"` // per period
}

// DecisionSnapshot 감사용 설정 스냅샷
type DecisionSnapshot struct {
	ConfigHash string    `json:"config_hash"`
	ConfigYAML string    `json:"config_yaml"`
	StrategyID string    `json:"strategy_id"`
	DataSource string    `json:"data_source"`
	CreatedAt  time.Time `json:"created_at"`
}

// Default returns the reference strategy: ROE, debt-to-equity and
// 3-period net income growth, top 10 names, monthly
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "quality_factor",
			Version:    "1.0.0",
		},
		Data: Data{
			CloseField:       "Close",
			EquityField:      "Total Equity",
			LiabilitiesField: "Total Liabilities",
			NetIncomeField:   "Net Income",
		},
		Export: Export{
			ClosePrices:      "close_prices.csv",
			TotalEquity:      "total_equity.csv",
			TotalLiabilities: "total_liabilities.csv",
		},
		Signals: Signals{GrowthWindow: 3},
		Ranking: Ranking{
			TopK:      10,
			TiePolicy: "average",
			Directions: Directions{
				Profitability: "descending",
				Leverage:      "ascending",
				Growth:        "descending",
			},
		},
		Portfolio: Portfolio{LeadingSignal: "zero"},
		Report:    Report{PeriodsPerYear: 252},
	}
}
