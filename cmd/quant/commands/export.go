package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "S0 데이터 CSV export",
	Long: `데이터셋을 로드하고 품질 게이트를 통과한 뒤
종가, 자본총계, 부채총계를 날짜 x 종목 CSV 파일로 저장합니다.

Example:
  go run ./cmd/quant export --export-dir ./out
  go run ./cmd/quant export --data prices.parquet --export-dir ./out`,
	RunE: runExport,
}

var exportDir string

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportDir, "export-dir", "", "export directory (default is EXPORT_DIR)")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	env, err := newPipeline(ctx, pipelineOptions{exportDir: exportDir, defaultExportDir: true})
	if err != nil {
		return err
	}
	defer env.Close()

	result, err := env.orch.ExportData(ctx)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	PrintDoubleSeparator()
	fmt.Printf("  Export (%s)\n", env.cfg.DataPath)
	PrintDoubleSeparator()
	q := result.Quality
	fmt.Printf("  Period    : %s ~ %s\n", q.FirstDate.Format(dateLayout), q.LastDate.Format(dateLayout))
	fmt.Printf("  Shape     : %d dates x %d assets\n", q.Dates, q.Assets)
	for _, w := range q.Warnings {
		PrintWarning(w)
	}
	for _, file := range result.ExportedFiles {
		PrintSuccess(file)
	}
	return nil
}
