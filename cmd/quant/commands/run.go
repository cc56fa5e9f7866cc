package commands

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/wonny/aegis-factor/internal/brain"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "전체 파이프라인 실행 (S0 → S7)",
	Long: `데이터셋을 로드하고 전체 파이프라인을 한 번 실행합니다.

이 명령어는:
- S0 데이터 로드 + 품질 게이트 (선택: CSV export)
- S1 월초 리밸런싱 날짜 산출
- S2 수익성/레버리지/성장률 팩터 계산
- S3 팩터별 횡단면 랭킹
- S4 복합 점수 및 상위 K 종목 선정
- S5 일간 보유 신호 확장
- S6 동일가중 일간 수익률
- S7 성과 리포트 출력 (선택: DB 저장)

Example:
  go run ./cmd/quant run --data multifactor_data_2017_2022.json.bz2
  go run ./cmd/quant run --strategy config/strategy/factor_quality.yaml --export-dir ./out
  go run ./cmd/quant run --persist --json`,
	RunE: runPipeline,
}

var (
	runExportDir string
	runPersist   bool
	runJSON      bool
)

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runExportDir, "export-dir", "", "flat CSV export directory (empty disables export)")
	runCmd.Flags().BoolVar(&runPersist, "persist", false, "save the run to PostgreSQL")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the report as JSON")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	env, err := newPipeline(ctx, pipelineOptions{exportDir: runExportDir, persist: runPersist})
	if err != nil {
		return err
	}
	defer env.Close()

	result, err := env.orch.Run(ctx, brain.RunConfig{
		Export:  runExportDir != "",
		Persist: runPersist,
	})
	if err != nil {
		PrintError(err.Error())
		return err
	}

	if runJSON {
		out, err := json.MarshalIndent(result.Report, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	PrintRunSummary(result)
	PrintReport(result.Report)
	for _, file := range result.ExportedFiles {
		PrintSuccess("Exported " + file)
	}
	if runPersist {
		PrintSuccess("Run saved: " + result.RunID.String())
	}
	return nil
}
