package commands

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/wonny/aegis-factor/internal/audit"
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "저장된 성과 리포트 조회",
	Long: `run --persist 로 저장된 실행 결과의 성과 리포트를 조회합니다.
REDIS_URL 이 설정되어 있으면 Redis 캐시를 먼저 조회하고,
없으면 PostgreSQL 에서 읽어 캐시에 채웁니다.

Example:
  go run ./cmd/quant report
  go run ./cmd/quant report --run-id 3f1c...
  go run ./cmd/quant report --json`,
	RunE: runReport,
}

var (
	reportRunID string
	reportJSON  bool
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVar(&reportRunID, "run-id", "", "run to show (default is the latest)")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "print as JSON")
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	env, err := newEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	if !env.cfg.Database.Enabled() {
		return fmt.Errorf("report requires DATABASE_URL")
	}

	reports, err := env.openReports(ctx)
	if err != nil {
		return err
	}

	var stored *audit.StoredReport
	if reportRunID != "" {
		id, perr := uuid.Parse(reportRunID)
		if perr != nil {
			return fmt.Errorf("invalid --run-id: %w", perr)
		}
		stored, err = reports.cache.Get(ctx, id)
	} else {
		stored, err = reports.cache.Latest(ctx)
	}
	if err != nil {
		PrintError(err.Error())
		return err
	}

	if reportJSON {
		out, err := json.MarshalIndent(stored, "", "  ")
		if err != nil {
			return fmt.Errorf("encode report: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  Run %s\n", stored.RunID)
	PrintSeparator()
	PrintKeyValue("Started", stored.StartedAt.Format("2006-01-02 15:04:05"), 12)
	PrintKeyValue("Data", stored.DataSource, 12)
	PrintKeyValue("Config", shortHash(stored.ConfigHash), 12)
	PrintReport(&stored.Report)
	return nil
}
