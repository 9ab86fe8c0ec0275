package retention_test

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bionicotaku/lingo-services-greeter/internal/contract"
	"github.com/bionicotaku/lingo-services-greeter/internal/infrastructure/configloader"
	"github.com/bionicotaku/lingo-services-greeter/internal/repositories"
	"github.com/bionicotaku/lingo-services-greeter/internal/tasks/retention"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/require"
)

type countingArchive struct {
	calls atomic.Int32
	n     int64
	err   error
}

func (s *countingArchive) CountArchived(context.Context) (int64, error) {
	s.calls.Add(1)
	return s.n, s.err
}

func TestTask_RunOnceCountsArchivedEntries(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store := contract.NewMemoryStore(
		contract.WithClock(func() time.Time { return now }),
		contract.WithMinTTL(time.Hour),
	)
	require.NoError(t, store.Set(ctx, contract.GreetingCountKey, []byte{0x01}))
	backend := repositories.NewMemoryContractBackend(store, log.NewStdLogger(io.Discard))

	task := retention.NewTask(backend, retention.Config{Enabled: true}, log.NewStdLogger(io.Discard))

	n, err := task.RunOnce(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
	require.Equal(t, 1, store.Len())

	now = now.Add(2 * time.Hour)
	n, err = task.RunOnce(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
	require.Equal(t, 1, store.Len(), "archived entries are kept")

	restored, err := store.Restore(ctx, contract.GreetingCountKey, time.Hour)
	require.NoError(t, err)
	require.True(t, restored)
	n, err = task.RunOnce(ctx)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestTask_RunOncePropagatesError(t *testing.T) {
	counter := &countingArchive{err: errors.New("boom")}
	task := retention.NewTask(counter, retention.Config{Enabled: true}, log.NewStdLogger(io.Discard))

	_, err := task.RunOnce(context.Background())
	require.EqualError(t, err, "boom")
}

func TestTask_StartScansUntilStopped(t *testing.T) {
	counter := &countingArchive{n: 2}
	task := retention.NewTask(counter, retention.Config{Enabled: true, Interval: 5 * time.Millisecond}, log.NewStdLogger(io.Discard))

	done := make(chan error, 1)
	go func() { done <- task.Start(context.Background()) }()

	require.Eventually(t, func() bool { return counter.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	require.NoError(t, task.Stop(context.Background()))
	require.NoError(t, task.Stop(context.Background()))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("task did not stop")
	}
}

func TestTask_DisabledReturnsImmediately(t *testing.T) {
	counter := &countingArchive{}
	task := retention.ProvideTask(counter, &configloader.Tasks{}, log.NewStdLogger(io.Discard))

	require.NoError(t, task.Start(context.Background()))
	require.Zero(t, counter.calls.Load())
}
