package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-factor/pkg/logger"
)

type fakeJob struct {
	name     string
	schedule string
	err      error
	calls    atomic.Int32
	block    chan struct{}
	started  chan struct{}
}

func (j *fakeJob) Name() string     { return j.name }
func (j *fakeJob) Schedule() string { return j.schedule }

func (j *fakeJob) Run(ctx context.Context) error {
	j.calls.Add(1)
	if j.started != nil {
		close(j.started)
	}
	if j.block != nil {
		<-j.block
	}
	return j.err
}

func TestAddJob(t *testing.T) {
	s := New(logger.Nop())

	require.NoError(t, s.AddJob(&fakeJob{name: "a", schedule: "0 0 18 1 * *"}))
	assert.Error(t, s.AddJob(&fakeJob{name: "a", schedule: "0 0 18 1 * *"}), "duplicate name")
	assert.Error(t, s.AddJob(&fakeJob{name: "b", schedule: "every full moon"}), "bad schedule")

	assert.Equal(t, []string{"a"}, s.GetAllJobs())
}

func TestRunJob_NoRetry(t *testing.T) {
	s := New(logger.Nop())
	job := &fakeJob{name: "fail", schedule: "@monthly", err: errors.New("load failed")}
	require.NoError(t, s.AddJob(job))

	err := s.RunJob(context.Background(), "fail")
	assert.EqualError(t, err, "load failed")
	assert.Equal(t, int32(1), job.calls.Load(), "failed run is not retried")

	history, err := s.GetJobHistory("fail")
	require.NoError(t, err)
	last, ok := history.Last()
	require.True(t, ok)
	assert.False(t, last.Success)
	assert.Equal(t, "load failed", last.Error)
	assert.Equal(t, 1, history.Failures())

	assert.Error(t, s.RunJob(context.Background(), "missing"))
}

func TestRunJob_SkipsWhileRunning(t *testing.T) {
	s := New(logger.Nop())
	slow := &fakeJob{name: "slow", schedule: "@monthly", block: make(chan struct{}), started: make(chan struct{})}
	require.NoError(t, s.AddJob(slow))

	done := make(chan error, 1)
	go func() { done <- s.RunJob(context.Background(), "slow") }()
	<-slow.started

	assert.ErrorIs(t, s.RunJob(context.Background(), "slow"), ErrJobRunning)

	close(slow.block)
	require.NoError(t, <-done)

	history, err := s.GetJobHistory("slow")
	require.NoError(t, err)
	require.Len(t, history.Results, 2)
	assert.True(t, history.Results[0].Skipped)
	assert.True(t, history.Results[1].Success)
	assert.Equal(t, 0, history.Failures())
	assert.Equal(t, int32(1), slow.calls.Load())
}

func TestJobHistory_Bounded(t *testing.T) {
	var h JobHistory
	for i := 0; i < maxHistory+5; i++ {
		h.AddResult(JobResult{JobName: "x", Success: true})
	}
	assert.Len(t, h.Results, maxHistory)
}
