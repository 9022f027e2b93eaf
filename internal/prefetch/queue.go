package prefetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/treadline/treadline/internal/client/stride"
	"github.com/treadline/treadline/internal/xslog"
)

const (
	// idleFallback is the pause between drained tasks when no idle
	// signal is wired, so background prefetching never starves
	// interactive work.
	idleFallback = 10 * time.Millisecond

	// maxIdleWait bounds how long the drain loop waits for an idle
	// signal before making progress anyway.
	maxIdleWait = time.Second
)

// Queue drains prefetch tasks one at a time in FIFO order. It is either
// idle (empty, no loop running) or draining; authentication loss empties
// it wholesale, there is no paused state. Foreground batches bypass the
// queue and fan out concurrently.
type Queue struct {
	mu       sync.Mutex
	tasks    []Task
	draining bool
	closed   bool

	tracker *Tracker
	logger  *slog.Logger
	limiter *rate.Limiter
	idle    <-chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
}

type QueueOptions struct {
	Logger *slog.Logger

	// Rate and Burst bound how fast background tasks may start.
	// A zero Rate disables the limiter.
	Rate  rate.Limit
	Burst int

	// IdleSignal, when non-nil, is the host's idle scheduling channel;
	// the drain loop waits on it (bounded) between tasks.
	IdleSignal <-chan struct{}
}

func NewQueue(tracker *Tracker, opts QueueOptions) *Queue {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	q := &Queue{
		tracker: tracker,
		logger:  logger,
		idle:    opts.IdleSignal,
		ctx:     ctx,
		cancel:  cancel,
	}
	if opts.Rate > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		q.limiter = rate.NewLimiter(opts.Rate, burst)
	}
	return q
}

// Enqueue appends tasks and starts the draining loop if it is not already
// running. delay, when positive, raises each task's minimum delay.
func (q *Queue) Enqueue(tasks []Task, delay time.Duration) {
	if len(tasks) == 0 {
		return
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	for _, t := range tasks {
		if delay > t.Delay {
			t.Delay = delay
		}
		q.tasks = append(q.tasks, t)
	}
	start := !q.draining
	if start {
		q.draining = true
	}
	queued := len(q.tasks)
	q.mu.Unlock()

	q.logger.Debug("enqueued prefetch tasks",
		xslog.Count(len(tasks)),
		xslog.QueueLen(queued),
	)

	if start {
		go q.drain()
	}
}

// RunForeground executes tasks concurrently and waits for all of them to
// settle, then applies the shared error policy. Used when the caller
// wants the cache populated before proceeding.
func (q *Queue) RunForeground(ctx context.Context, tasks []Task, delay time.Duration) {
	if len(tasks) == 0 || q.isClosed() {
		return
	}

	type taskError struct {
		task Task
		err  error
	}
	var (
		mu   sync.Mutex
		errs []taskError
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range tasks {
		if delay > t.Delay {
			t.Delay = delay
		}
		g.Go(func() error {
			if t.RequiresAuth && !q.tracker.CanPrefetch() {
				return nil
			}
			if !waitDelay(gctx, t.Delay) {
				return nil
			}
			if err := runGuarded(gctx, t); err != nil {
				mu.Lock()
				errs = append(errs, taskError{task: t, err: err})
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	authSeen := false
	for _, te := range errs {
		if stride.IsAuthError(te.err) {
			if !authSeen {
				authSeen = true
				q.onAuthFailure(ctx, te.task, te.err)
			}
			continue
		}
		q.logger.DebugContext(ctx, "prefetch task failed",
			xslog.CacheKey(te.task.Key),
			xslog.Error(te.err),
		)
	}
}

// Clear atomically empties the queue. A draining loop that finds the
// queue empty returns to idle.
func (q *Queue) Clear() {
	q.mu.Lock()
	n := len(q.tasks)
	q.tasks = nil
	q.mu.Unlock()

	if n > 0 {
		q.logger.Debug("cleared prefetch queue", xslog.Count(n))
	}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

func (q *Queue) Draining() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.draining
}

// Close empties the queue and stops any in-flight waits. Enqueue after
// Close is a no-op.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.tasks = nil
	q.mu.Unlock()

	q.cancel()
}

func (q *Queue) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// drain pulls tasks one at a time while the queue is non-empty and
// authenticated prefetching is allowed, yielding between iterations.
func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if q.closed || len(q.tasks) == 0 || !q.tracker.CanPrefetch() {
			q.draining = false
			q.mu.Unlock()
			return
		}
		t := q.tasks[0]
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		q.runTask(q.ctx, t)
		q.yield(q.ctx)
	}
}

func (q *Queue) runTask(ctx context.Context, t Task) {
	// re-check at execution time: the answer may have changed since
	// enqueue. A drop here is silent, not a failure.
	if t.RequiresAuth && !q.tracker.CanPrefetch() {
		q.logger.DebugContext(ctx, "dropping prefetch task",
			xslog.TaskID(t.ID.String()),
			xslog.CacheKey(t.Key),
		)
		return
	}

	if !waitDelay(ctx, t.Delay) {
		return
	}

	if q.limiter != nil {
		if err := q.limiter.Wait(ctx); err != nil {
			return
		}
	}

	err := runGuarded(ctx, t)
	if err == nil {
		return
	}
	if stride.IsAuthError(err) {
		q.onAuthFailure(ctx, t, err)
		return
	}
	q.logger.DebugContext(ctx, "prefetch task failed",
		xslog.CacheKey(t.Key),
		xslog.Error(err),
	)
}

// onAuthFailure transitions the tracker to unauthenticated, which cascades
// into queue clearing; tasks still pending behind the failed one are
// discarded.
func (q *Queue) onAuthFailure(ctx context.Context, t Task, err error) {
	q.logger.InfoContext(ctx, "prefetch hit authorization failure",
		xslog.CacheKey(t.Key),
		xslog.Error(err),
	)
	q.tracker.Update(Snapshot{})
}

func runGuarded(ctx context.Context, t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("prefetch task %s panicked: %v", t.Key, r)
		}
	}()
	return t.Run(ctx)
}

// yield hands control back between tasks. With an idle signal wired it
// waits for the host to report spare capacity, bounded so tasks still make
// progress under constant activity; otherwise a short fixed pause.
func (q *Queue) yield(ctx context.Context) {
	if q.idle != nil {
		select {
		case <-q.idle:
		case <-time.After(maxIdleWait):
		case <-ctx.Done():
		}
		return
	}

	select {
	case <-time.After(idleFallback):
	case <-ctx.Done():
	}
}

func waitDelay(ctx context.Context, delay time.Duration) bool {
	if delay <= 0 {
		return true
	}
	select {
	case <-time.After(delay):
		return true
	case <-ctx.Done():
		return false
	}
}
