package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	dataPath     string
	strategyPath string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "aegis-factor - 퀄리티 팩터 리서치 파이프라인",
	Long: `aegis-factor Unified CLI

수익성(ROE), 레버리지(부채비율), 순이익 성장률 세 가지 퀄리티 팩터로
매월 상위 K 종목을 선정하고 동일가중 일간 수익률을 백테스트합니다.
S0 데이터 로드부터 S7 성과 리포트까지 8단계 파이프라인.

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant run --data multifactor_data_2017_2022.json.bz2
  go run ./cmd/quant export --export-dir ./out
  go run ./cmd/quant selection --date 2021-06-01
  go run ./cmd/quant api
  go run ./cmd/quant test-db`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "dataset path (default is DATA_PATH)")
	rootCmd.PersistentFlags().StringVar(&strategyPath, "strategy", "", "strategy YAML (default is STRATEGY_CONFIG, then built-in)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
