package prefetch

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func newAuthedQueue() (*Queue, *Tracker) {
	tracker := NewTracker(testLogger())
	tracker.Update(authedSnapshot())
	return NewQueue(tracker, QueueOptions{Logger: testLogger()}), tracker
}

// recordingTask appends its label to order when invoked.
func recordingTask(mu *sync.Mutex, order *[]string, label string) Task {
	return Task{
		ID:           uuid.New(),
		Key:          label,
		Priority:     PriorityMedium,
		RequiresAuth: true,
		Run: func(context.Context) error {
			mu.Lock()
			*order = append(*order, label)
			mu.Unlock()
			return nil
		},
	}
}

func TestQueueFIFOOrder(t *testing.T) {
	t.Parallel()

	q, _ := newAuthedQueue()
	defer q.Close()

	var (
		mu    sync.Mutex
		order []string
	)
	q.Enqueue([]Task{
		recordingTask(&mu, &order, "t1"),
		recordingTask(&mu, &order, "t2"),
		recordingTask(&mu, &order, "t3"),
	}, 0)

	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 3
	})

	mu.Lock()
	defer mu.Unlock()
	if diff := cmp.Diff([]string{"t1", "t2", "t3"}, order); diff != "" {
		t.Errorf("execution order mismatch (-want +got):\n%s", diff)
	}
}

func TestQueueGatesUnauthenticatedWork(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(testLogger())
	q := NewQueue(tracker, QueueOptions{Logger: testLogger()})
	defer q.Close()

	var (
		mu    sync.Mutex
		order []string
	)
	q.Enqueue([]Task{recordingTask(&mu, &order, "t1")}, 0)

	waitFor(t, time.Second, func() bool { return !q.Draining() })
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 0 {
		t.Errorf("unauthenticated task ran: %v", order)
	}
}

func TestQueueClearedOnLogout(t *testing.T) {
	t.Parallel()

	q, tracker := newAuthedQueue()
	defer q.Close()

	// mirror the coordinator's logout wiring
	tracker.Subscribe(func(prev, next Snapshot) {
		if prev.Authenticated && !next.Authenticated {
			q.Clear()
		}
	})

	started := make(chan struct{})
	release := make(chan struct{})
	var (
		mu    sync.Mutex
		order []string
	)

	first := Task{
		ID:           uuid.New(),
		Key:          "blocker",
		RequiresAuth: true,
		Run: func(context.Context) error {
			close(started)
			<-release
			return nil
		},
	}
	q.Enqueue([]Task{
		first,
		recordingTask(&mu, &order, "t2"),
		recordingTask(&mu, &order, "t3"),
	}, 0)

	<-started
	tracker.Update(Snapshot{})

	if got := q.Len(); got != 0 {
		t.Errorf("queue length after logout = %d, want 0", got)
	}

	close(release)
	waitFor(t, time.Second, func() bool { return !q.Draining() })

	mu.Lock()
	defer mu.Unlock()
	if len(order) != 0 {
		t.Errorf("tasks queued before logout still ran: %v", order)
	}
}

func TestQueueAuthFailureDropsRemainingTasks(t *testing.T) {
	t.Parallel()

	q, tracker := newAuthedQueue()
	defer q.Close()

	var (
		mu    sync.Mutex
		order []string
	)
	failing := Task{
		ID:           uuid.New(),
		Key:          "expired",
		RequiresAuth: true,
		Run: func(context.Context) error {
			return errors.New("Unauthorized: token expired")
		},
	}
	q.Enqueue([]Task{
		failing,
		recordingTask(&mu, &order, "behind"),
	}, 0)

	waitFor(t, time.Second, func() bool { return !q.Draining() })

	if tracker.CanPrefetch() {
		t.Error("CanPrefetch() = true after authorization failure")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(order) != 0 {
		t.Errorf("task behind the failed one ran: %v", order)
	}
}

func TestQueueTransientFailureDoesNotAbortSiblings(t *testing.T) {
	t.Parallel()

	q, tracker := newAuthedQueue()
	defer q.Close()

	var (
		mu    sync.Mutex
		order []string
	)
	failing := Task{
		ID:           uuid.New(),
		Key:          "flaky",
		RequiresAuth: true,
		Run: func(context.Context) error {
			return errors.New("connection reset by peer")
		},
	}
	q.Enqueue([]Task{
		failing,
		recordingTask(&mu, &order, "after"),
	}, 0)

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 1
	})

	if !tracker.CanPrefetch() {
		t.Error("transient failure flipped auth state")
	}
}

func TestQueuePanickingTaskIsIsolated(t *testing.T) {
	t.Parallel()

	q, _ := newAuthedQueue()
	defer q.Close()

	var (
		mu    sync.Mutex
		order []string
	)
	panicking := Task{
		ID:           uuid.New(),
		Key:          "boom",
		RequiresAuth: true,
		Run: func(context.Context) error {
			panic("task exploded")
		},
	}
	q.Enqueue([]Task{
		panicking,
		recordingTask(&mu, &order, "survivor"),
	}, 0)

	waitFor(t, time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 1
	})
}

func TestQueueRunForegroundFansOut(t *testing.T) {
	t.Parallel()

	q, _ := newAuthedQueue()
	defer q.Close()

	const n = 3
	var (
		mu      sync.Mutex
		arrived int
	)
	all := make(chan struct{})
	timedOut := false

	tasks := make([]Task, n)
	for i := range tasks {
		tasks[i] = Task{
			ID:           uuid.New(),
			Key:          "concurrent",
			RequiresAuth: true,
			Run: func(context.Context) error {
				mu.Lock()
				arrived++
				if arrived == n {
					close(all)
				}
				mu.Unlock()

				// all tasks must be in flight at once for this to unblock
				select {
				case <-all:
				case <-time.After(500 * time.Millisecond):
					mu.Lock()
					timedOut = true
					mu.Unlock()
				}
				return nil
			},
		}
	}

	q.RunForeground(context.Background(), tasks, 0)

	mu.Lock()
	defer mu.Unlock()
	if arrived != n {
		t.Errorf("arrived = %d, want %d", arrived, n)
	}
	if timedOut {
		t.Error("foreground tasks did not run concurrently")
	}
}

func TestQueueRunForegroundAuthFailurePolicy(t *testing.T) {
	t.Parallel()

	q, tracker := newAuthedQueue()
	defer q.Close()

	var ran int
	var mu sync.Mutex
	count := func() Task {
		return Task{
			ID:           uuid.New(),
			Key:          "counted",
			RequiresAuth: true,
			Run: func(context.Context) error {
				mu.Lock()
				ran++
				mu.Unlock()
				return nil
			},
		}
	}
	failing := Task{
		ID:           uuid.New(),
		Key:          "denied",
		RequiresAuth: true,
		Run: func(context.Context) error {
			return errors.New("access denied for resource")
		},
	}

	q.RunForeground(context.Background(), []Task{count(), failing, count()}, 0)

	mu.Lock()
	if ran != 2 {
		t.Errorf("sibling tasks ran %d times, want 2", ran)
	}
	mu.Unlock()
	if tracker.CanPrefetch() {
		t.Error("CanPrefetch() = true after foreground authorization failure")
	}
}

func TestQueueDelayRaisesTaskDelay(t *testing.T) {
	t.Parallel()

	q, _ := newAuthedQueue()
	defer q.Close()

	done := make(chan struct{})
	task := Task{
		ID:           uuid.New(),
		Key:          "delayed",
		RequiresAuth: true,
		Run: func(context.Context) error {
			close(done)
			return nil
		},
	}

	start := time.Now()
	q.RunForeground(context.Background(), []Task{task}, 50*time.Millisecond)
	<-done

	if elapsed := time.Since(start); elapsed < 50*time.Millisecond {
		t.Errorf("task ran after %v, want at least 50ms", elapsed)
	}
}

func TestQueueEnqueueAfterClose(t *testing.T) {
	t.Parallel()

	q, _ := newAuthedQueue()
	q.Close()
	q.Close() // idempotent

	var (
		mu    sync.Mutex
		order []string
	)
	q.Enqueue([]Task{recordingTask(&mu, &order, "late")}, 0)

	time.Sleep(30 * time.Millisecond)
	if q.Len() != 0 || q.Draining() {
		t.Error("closed queue accepted work")
	}
	mu.Lock()
	defer mu.Unlock()
	if len(order) != 0 {
		t.Error("task ran on a closed queue")
	}
}
