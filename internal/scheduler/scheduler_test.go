package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mengeling/fantasy-football-draft-board-v2/internal/pipeline"

	"github.com/stretchr/testify/assert"
)

type countingRunner struct {
	calls atomic.Int32
	err   error
}

func (r *countingRunner) TriggerIngestion(ctx context.Context) (pipeline.RunSummary, error) {
	r.calls.Add(1)
	return pipeline.RunSummary{}, r.err
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	s := NewScheduler(&countingRunner{}, "every night")
	assert.Error(t, s.Start(context.Background()))
}

func TestStart_RunsOnSchedule(t *testing.T) {
	runner := &countingRunner{}
	s := NewScheduler(runner, "@every 1s")
	assert.NoError(t, s.Start(context.Background()))
	defer s.Stop(time.Second)

	assert.Eventually(t, func() bool { return runner.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestRunNow_SwallowsErrors(t *testing.T) {
	for _, err := range []error{nil, pipeline.ErrRunInProgress, errors.New("boom")} {
		runner := &countingRunner{err: err}
		s := NewScheduler(runner, "0 2 * * *")
		s.RunNow(context.Background())
		assert.Equal(t, int32(1), runner.calls.Load())
	}
}
