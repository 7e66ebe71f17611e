package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	done := make(chan string, 1)
	q := NewQueue[string]("test", func(ctx context.Context, job Job[string]) error {
		done <- job.Payload
		return nil
	}, QueueConfig{})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job[string]{ID: "1", Payload: "ledger"}))

	select {
	case got := <-done:
		assert.Equal(t, "ledger", got)
	case <-time.After(time.Second):
		t.Fatal("job not processed")
	}
}

func TestQueueRetriesThenCallsFailureHook(t *testing.T) {
	var calls int32
	failed := make(chan Job[int], 1)
	q := NewQueue[int]("retry", func(ctx context.Context, job Job[int]) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	}, QueueConfig{MaxRetries: 2, RetryDelay: 5 * time.Millisecond})
	q.OnFailure(func(ctx context.Context, job Job[int], err error) {
		failed <- job
	})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job[int]{ID: "x", Payload: 7}))

	select {
	case job := <-failed:
		assert.Equal(t, 3, job.Attempt)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	case <-time.After(2 * time.Second):
		t.Fatal("failure hook not invoked")
	}
}

func TestEnqueueBeforeStartFails(t *testing.T) {
	q := NewQueue[int]("idle", func(ctx context.Context, job Job[int]) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job[int]{ID: "1"}))
}
