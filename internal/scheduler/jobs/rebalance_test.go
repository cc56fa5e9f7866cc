package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/wonny/aegis-factor/internal/brain"
	"github.com/wonny/aegis-factor/pkg/logger"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, config brain.RunConfig) (*brain.RunResult, error) {
	args := m.Called(ctx, config)
	res, _ := args.Get(0).(*brain.RunResult)
	return res, args.Error(1)
}

func TestRebalanceJob_Run(t *testing.T) {
	runner := &mockRunner{}
	result := &brain.RunResult{RunID: uuid.New(), Success: true}
	runner.On("Run", mock.Anything, brain.RunConfig{Persist: true}).Return(result, nil).Once()

	var got *brain.RunResult
	job := NewRebalanceJob(runner, "0 0 18 1 * *", true, func(r *brain.RunResult) { got = r }, logger.Nop())

	assert.Equal(t, "monthly_rebalance", job.Name())
	assert.Equal(t, "0 0 18 1 * *", job.Schedule())
	require.NoError(t, job.Run(context.Background()))

	runner.AssertExpectations(t)
	assert.Same(t, result, got)
}

func TestRebalanceJob_Failure(t *testing.T) {
	runner := &mockRunner{}
	runner.On("Run", mock.Anything, mock.Anything).Return(nil, errors.New("S0 failed")).Once()

	called := false
	job := NewRebalanceJob(runner, "@monthly", false, func(*brain.RunResult) { called = true }, logger.Nop())

	assert.EqualError(t, job.Run(context.Background()), "S0 failed")
	assert.False(t, called)
}
