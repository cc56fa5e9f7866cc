package jobs

import (
	"context"

	"github.com/wonny/aegis-factor/internal/brain"
	"github.com/wonny/aegis-factor/pkg/logger"
)

// Runner runs one pipeline pass
type Runner interface {
	Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error)
}

// RebalanceJob reruns the full pipeline on the monthly schedule
type RebalanceJob struct {
	runner   Runner
	schedule string
	persist  bool
	onResult func(*brain.RunResult)
	logger   *logger.Logger
}

// NewRebalanceJob creates a new rebalance job.
// onResult, when set, receives every successful run.
func NewRebalanceJob(runner Runner, schedule string, persist bool, onResult func(*brain.RunResult), log *logger.Logger) *RebalanceJob {
	return &RebalanceJob{
		runner:   runner,
		schedule: schedule,
		persist:  persist,
		onResult: onResult,
		logger:   log,
	}
}

// Name returns the job name
func (j *RebalanceJob) Name() string {
	return "monthly_rebalance"
}

// Schedule returns the cron schedule
func (j *RebalanceJob) Schedule() string {
	return j.schedule
}

// Run executes one pipeline pass
func (j *RebalanceJob) Run(ctx context.Context) error {
	result, err := j.runner.Run(ctx, brain.RunConfig{Persist: j.persist})
	if err != nil {
		return err
	}

	if j.onResult != nil {
		j.onResult(result)
	}

	fields := map[string]interface{}{
		"run_id": result.RunID.String(),
		"stages": len(result.CompletedStages),
	}
	if result.Selection != nil {
		dates := result.Selection.Dates()
		if len(dates) > 0 {
			last := dates[len(dates)-1]
			fields["rebalance_date"] = last.Format("2006-01-02")
			fields["selected"] = len(result.Selection.Members(last))
		}
	}
	j.logger.WithFields(fields).Info("Rebalance completed")

	return nil
}
