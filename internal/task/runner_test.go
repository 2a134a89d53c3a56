package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForIDs(t *testing.T, done <-chan string, n int) []string {
	t.Helper()
	var ids []string
	for len(ids) < n {
		select {
		case id := <-done:
			ids = append(ids, id)
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out after %d of %d tasks", len(ids), n)
		}
	}
	return ids
}

func TestTaskRunnerSubmit(t *testing.T) {
	t.Parallel()

	t.Run("runs submitted tasks", func(t *testing.T) {
		t.Parallel()
		enricher := &fakeEnricher{done: make(chan string, 2)}
		factory := NewCardEnrichmentTaskFactory(enricher, testLogger)
		runner := NewTaskRunner(DefaultTaskRunnerConfig(), testLogger)

		require.NoError(t, runner.Start(context.Background()))
		t.Cleanup(runner.Stop)

		for _, id := range []string{"x", "y"} {
			task, err := factory.CreateTask(id)
			require.NoError(t, err)
			require.NoError(t, runner.Submit(context.Background(), task))
		}

		assert.ElementsMatch(t, []string{"x", "y"}, waitForIDs(t, enricher.done, 2))
	})

	t.Run("queue full", func(t *testing.T) {
		t.Parallel()
		runner := NewTaskRunner(TaskRunnerConfig{WorkerCount: 1, QueueSize: 1}, testLogger)

		require.NoError(t, runner.Submit(context.Background(), newFuncTask(noop)))
		err := runner.Submit(context.Background(), newFuncTask(noop))

		assert.ErrorIs(t, err, ErrQueueFull)
	})

	t.Run("submit after stop", func(t *testing.T) {
		t.Parallel()
		runner := NewTaskRunner(DefaultTaskRunnerConfig(), testLogger)
		require.NoError(t, runner.Start(context.Background()))
		runner.Stop()

		assert.ErrorIs(t, runner.Submit(context.Background(), newFuncTask(noop)), ErrQueueClosed)
	})
}

func TestTaskRunnerRecovery(t *testing.T) {
	t.Parallel()

	t.Run("requeues recovered tasks", func(t *testing.T) {
		t.Parallel()
		enricher := &fakeEnricher{done: make(chan string, 3)}
		factory := NewCardEnrichmentTaskFactory(enricher, testLogger)
		runner := NewTaskRunner(DefaultTaskRunnerConfig(), testLogger)
		runner.SetRecovery(PendingEnrichmentRecovery(enricher, factory, 0))

		require.NoError(t, runner.Start(context.Background()))
		t.Cleanup(runner.Stop)

		assert.ElementsMatch(t, []string{"a", "b", "c"}, waitForIDs(t, enricher.done, 3))
	})

	t.Run("recovery failure stops start", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("db down")
		runner := NewTaskRunner(DefaultTaskRunnerConfig(), testLogger)
		runner.SetRecovery(func(context.Context) ([]Task, error) { return nil, boom })

		err := runner.Start(context.Background())

		assert.ErrorIs(t, err, boom)
	})

	t.Run("overflow is dropped", func(t *testing.T) {
		t.Parallel()
		runner := NewTaskRunner(TaskRunnerConfig{WorkerCount: 1, QueueSize: 1}, testLogger)
		block := make(chan struct{})
		runner.SetRecovery(func(context.Context) ([]Task, error) {
			wait := func(context.Context) error { <-block; return nil }
			return []Task{newFuncTask(wait), newFuncTask(wait), newFuncTask(wait)}, nil
		})

		require.NoError(t, runner.Start(context.Background()))
		close(block)
		runner.Stop()
	})
}

func TestTaskRunnerLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("start twice", func(t *testing.T) {
		t.Parallel()
		runner := NewTaskRunner(DefaultTaskRunnerConfig(), testLogger)
		require.NoError(t, runner.Start(context.Background()))
		t.Cleanup(runner.Stop)

		assert.ErrorIs(t, runner.Start(context.Background()), ErrRunnerStarted)
	})

	t.Run("run returns when context is cancelled", func(t *testing.T) {
		t.Parallel()
		runner := NewTaskRunner(DefaultTaskRunnerConfig(), testLogger)
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() { done <- runner.Run(ctx) }()
		cancel()

		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("Run did not return")
		}
	})

	t.Run("error handler sees failures", func(t *testing.T) {
		t.Parallel()
		failed := make(chan error, 1)
		runner := NewTaskRunner(DefaultTaskRunnerConfig(), testLogger)
		runner.SetErrorHandler(func(_ Task, err error) { failed <- err })
		require.NoError(t, runner.Start(context.Background()))
		t.Cleanup(runner.Stop)

		boom := errors.New("boom")
		require.NoError(t, runner.Submit(context.Background(), newFuncTask(func(context.Context) error { return boom })))

		select {
		case err := <-failed:
			assert.ErrorIs(t, err, boom)
		case <-time.After(5 * time.Second):
			t.Fatal("error handler was not called")
		}
	})
}
