package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-factor/internal/brain"
)

// selectionCmd represents the selection command
var selectionCmd = &cobra.Command{
	Use:   "selection",
	Short: "리밸런싱 날짜별 선정 종목 조회",
	Long: `파이프라인을 실행하고 리밸런싱 날짜의 선정 종목을 출력합니다.
--date 를 생략하면 마지막 리밸런싱 날짜를 출력합니다.

Example:
  go run ./cmd/quant selection
  go run ./cmd/quant selection --date 2021-06-01
  go run ./cmd/quant selection --all`,
	RunE: runSelection,
}

var (
	selectionDate string
	selectionAll  bool
)

func init() {
	rootCmd.AddCommand(selectionCmd)

	selectionCmd.Flags().StringVar(&selectionDate, "date", "", "rebalancing date (YYYY-MM-DD)")
	selectionCmd.Flags().BoolVar(&selectionAll, "all", false, "print every rebalancing date")
}

func runSelection(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var target time.Time
	if selectionDate != "" {
		d, err := time.Parse(dateLayout, selectionDate)
		if err != nil {
			return fmt.Errorf("invalid --date %q: %w", selectionDate, err)
		}
		target = d
	}

	env, err := newPipeline(ctx, pipelineOptions{})
	if err != nil {
		return err
	}
	defer env.Close()

	result, err := env.orch.Run(ctx, brain.RunConfig{})
	if err != nil {
		PrintError(err.Error())
		return err
	}

	dates := result.Selection.Dates()
	switch {
	case selectionAll:
	case !target.IsZero():
		if result.Selection.Mask.RowOf(target) < 0 {
			return fmt.Errorf("%s is not a rebalancing date", selectionDate)
		}
		dates = []time.Time{target}
	default:
		dates = dates[len(dates)-1:]
	}

	for _, d := range dates {
		PrintSelection(d, result.Selection.Members(d))
	}
	return nil
}
