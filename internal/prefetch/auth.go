package prefetch

import (
	"log/slog"
	"sync"
	"time"

	"github.com/treadline/treadline/internal/xslog"
)

// Snapshot is the latest known authentication state. It is an immutable
// value, replaced wholesale on every transition and never partially
// mutated.
type Snapshot struct {
	Authenticated bool
	Loading       bool
	UserID        string
}

// snapshotFreshness bounds how long the derived can-prefetch boolean may
// be served without re-deriving it, so bursts of rapid checks stay cheap
// while real transitions (which refresh it via Update) are never missed.
const snapshotFreshness = 30 * time.Second

// Listener receives the previous and new snapshots on every update, in
// registration order.
type Listener func(prev, next Snapshot)

type listenerEntry struct {
	id int
	fn Listener
}

// Tracker is the single source of truth for whether it is currently safe
// to issue authenticated prefetch work. Its own logic never fails; a
// panicking listener is isolated and logged.
type Tracker struct {
	mu        sync.Mutex
	current   Snapshot
	listeners []listenerEntry
	nextID    int

	cachedOK bool
	cachedAt time.Time

	logger *slog.Logger
	now    func() time.Time
}

func NewTracker(logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		logger: logger,
		now:    time.Now,
	}
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Update replaces the current snapshot and synchronously notifies every
// registered listener in registration order.
func (t *Tracker) Update(next Snapshot) {
	t.mu.Lock()
	prev := t.current
	t.current = next
	t.cachedOK = next.Authenticated && !next.Loading
	t.cachedAt = t.now()
	notify := make([]listenerEntry, len(t.listeners))
	copy(notify, t.listeners)
	t.mu.Unlock()

	for _, entry := range notify {
		t.notify(entry.fn, prev, next)
	}
}

func (t *Tracker) notify(fn Listener, prev, next Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("auth listener panicked",
				xslog.ErrorAny(r),
				xslog.Stack(),
			)
		}
	}()
	fn(prev, next)
}

// CanPrefetch reports whether authenticated prefetch work may be issued
// right now: the freshest known snapshot must be authenticated and not
// mid-transition.
func (t *Tracker) CanPrefetch() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.now().Sub(t.cachedAt) <= snapshotFreshness {
		return t.cachedOK
	}
	t.cachedOK = t.current.Authenticated && !t.current.Loading
	t.cachedAt = t.now()
	return t.cachedOK
}

// Subscribe registers a listener and returns an idempotent unsubscribe
// function that is safe to call while a notification round is in flight.
func (t *Tracker) Subscribe(fn Listener) (unsubscribe func()) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.listeners = append(t.listeners, listenerEntry{id: id, fn: fn})
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			for i, entry := range t.listeners {
				if entry.id == id {
					t.listeners = append(t.listeners[:i], t.listeners[i+1:]...)
					return
				}
			}
		})
	}
}
