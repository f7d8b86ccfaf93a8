package async

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProcessor struct {
	mu    sync.Mutex
	paths []string
	fail  map[string]bool
	count atomic.Int32
}

func (r *recordingProcessor) ProcessFile(_ context.Context, job Job) error {
	r.count.Add(1)
	r.mu.Lock()
	r.paths = append(r.paths, job.Path)
	r.mu.Unlock()
	if r.fail[job.Path] {
		return errors.New("boom")
	}
	return nil
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestQueueProcessesEveryJob(t *testing.T) {
	proc := &recordingProcessor{fail: map[string]bool{"b.txt": true}}
	q := NewProcessorQueue(proc, quiet(), WithWorkers(3), WithQueueSize(2))

	for _, p := range []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt"} {
		require.NoError(t, q.Enqueue(context.Background(), Job{Path: p}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	assert.EqualValues(t, 5, proc.count.Load())
	assert.ElementsMatch(t, []string{"a.txt", "b.txt", "c.txt", "d.txt", "e.txt"}, proc.paths)
}

func TestEnqueueAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(&recordingProcessor{}, quiet())
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{Path: "late.txt"})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

type blockingProcessor struct{ release chan struct{} }

func (b blockingProcessor) ProcessFile(ctx context.Context, _ Job) error {
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return nil
}

func TestEnqueueHonoursContextWhenFull(t *testing.T) {
	bp := blockingProcessor{release: make(chan struct{})}
	q := NewProcessorQueue(bp, quiet(), WithWorkers(1), WithQueueSize(1))
	defer func() {
		close(bp.release)
		q.Shutdown(context.Background())
	}()

	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "1"}))
	// The worker may or may not have picked job 1 yet; fill until blocked.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	var err error
	for i := 0; i < 3 && err == nil; i++ {
		err = q.Enqueue(ctx, Job{Path: "more"})
	}
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type stuckProcessor struct {
	started chan struct{}
	errs    chan error
	calls   atomic.Int32
}

func (s *stuckProcessor) ProcessFile(ctx context.Context, _ Job) error {
	s.calls.Add(1)
	s.started <- struct{}{}
	<-ctx.Done()
	s.errs <- ctx.Err()
	return ctx.Err()
}

func TestShutdownDeadlineCancelsInFlightJobs(t *testing.T) {
	sp := &stuckProcessor{started: make(chan struct{}, 2), errs: make(chan error, 2)}
	q := NewProcessorQueue(sp, quiet(), WithWorkers(1), WithProcessTimeout(time.Minute))

	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "first.txt"}))
	<-sp.started
	require.NoError(t, q.Enqueue(context.Background(), Job{Path: "queued.txt"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	q.Shutdown(ctx)

	select {
	case err := <-sp.errs:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("in-flight job was not cancelled")
	}

	q.wg.Wait()
	assert.EqualValues(t, 1, sp.calls.Load())
}
