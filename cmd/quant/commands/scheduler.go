package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wonny/aegis-factor/internal/api"
	"github.com/wonny/aegis-factor/internal/api/handlers"
	"github.com/wonny/aegis-factor/internal/brain"
	"github.com/wonny/aegis-factor/internal/scheduler"
	"github.com/wonny/aegis-factor/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "월간 리밸런싱 스케줄러 시작",
	Long: `크론 스케줄에 맞춰 전체 파이프라인을 다시 실행합니다.

이 명령어는:
- monthly_rebalance 작업 등록 (기본: 매월 1일 18:00, REBALANCE_CRON)
- 실행 중인 작업이 있으면 해당 tick 은 건너뜀
- --serve 지정 시 최신 결과를 API 로 제공 (+ /ws/runs 실시간 알림)

스케줄러는 Ctrl+C로 종료할 수 있습니다.

Example:
  go run ./cmd/quant scheduler
  go run ./cmd/quant scheduler --cron "0 0 18 1 * *" --persist
  go run ./cmd/quant scheduler --run-now --serve`,
	RunE: runScheduler,
}

var (
	schedulerCron    string
	schedulerPersist bool
	schedulerRunNow  bool
	schedulerServe   bool
)

func init() {
	rootCmd.AddCommand(schedulerCmd)

	schedulerCmd.Flags().StringVar(&schedulerCron, "cron", "", "cron expression with seconds (default is REBALANCE_CRON)")
	schedulerCmd.Flags().BoolVar(&schedulerPersist, "persist", false, "save every run to PostgreSQL")
	schedulerCmd.Flags().BoolVar(&schedulerRunNow, "run-now", false, "run once immediately before waiting for the schedule")
	schedulerCmd.Flags().BoolVar(&schedulerServe, "serve", false, "serve the latest run over the API")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env, err := newPipeline(ctx, pipelineOptions{persist: schedulerPersist})
	if err != nil {
		return err
	}
	defer env.Close()

	schedule := env.cfg.RebalanceCron
	if schedulerCron != "" {
		schedule = schedulerCron
	}

	holder := &handlers.ResultHolder{}
	stream := handlers.NewRunStream(env.log)
	onResult := func(r *brain.RunResult) {
		holder.Set(r)
		stream.Publish(r)
	}

	sched := scheduler.New(env.log)
	job := jobs.NewRebalanceJob(env.orch, schedule, schedulerPersist, onResult, env.log)
	if err := sched.AddJob(job); err != nil {
		return fmt.Errorf("add job: %w", err)
	}

	if schedulerRunNow {
		if err := sched.RunJob(ctx, job.Name()); err != nil {
			PrintError(err.Error())
		}
	}

	sched.Start()
	defer sched.Stop()

	PrintDoubleSeparator()
	fmt.Println("  Scheduler started")
	for _, name := range sched.GetAllJobs() {
		fmt.Printf("  - %s (%s)\n", name, schedule)
	}
	PrintDoubleSeparator()

	if schedulerServe {
		router := api.NewRouter(handlers.NewResultsHandler(holder, env.log), stream, env.log)
		return api.New(env.cfg, env.log, router).Run(ctx)
	}

	PrintInfo("Press Ctrl+C to stop")
	<-ctx.Done()
	fmt.Println("Shutting down scheduler...")
	return nil
}
