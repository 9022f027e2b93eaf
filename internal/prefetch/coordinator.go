package prefetch

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/treadline/treadline/internal/cache"
	"github.com/treadline/treadline/internal/session"
	"github.com/treadline/treadline/internal/xcontext"
	"github.com/treadline/treadline/internal/xslog"
)

const (
	// defaultWarmupDelay lets other post-login setup settle before the
	// critical-data warm-up fires.
	defaultWarmupDelay = 150 * time.Millisecond

	defaultCacheTTL = 5 * time.Minute
)

// AuthProvider is the externally owned authentication state: the current
// snapshot plus change notifications. The provider must push every
// sign-in/sign-out transition through the subscribed callback.
type AuthProvider interface {
	Snapshot() Snapshot
	Subscribe(fn func(Snapshot)) (unsubscribe func())
}

// InteractionSource is a UI element that emits discrete interaction
// signals (pointer-enter, focus, touch-start) for a link. The view layer
// implements it.
type InteractionSource interface {
	// AddInteractionListener registers fn to run on every interaction
	// signal. The returned function removes the listener.
	AddInteractionListener(fn func()) (remove func())
}

type Config struct {
	Source DataSource
	Store  cache.Store
	Auth   AuthProvider
	Logger *slog.Logger

	// CacheTTL for warmed entries. Zero means defaultCacheTTL.
	CacheTTL time.Duration

	// Rate and Burst bound background prefetch issuance. Zero Rate
	// disables the limiter.
	Rate  rate.Limit
	Burst int

	// IdleSignal, when non-nil, is the host's idle scheduling channel.
	IdleSignal <-chan struct{}

	// WarmupDelay overrides the post-login warm-up delay. Zero means
	// defaultWarmupDelay.
	WarmupDelay time.Duration
}

// Options controls how resolved tasks are dispatched.
type Options struct {
	// Foreground runs the tasks concurrently and waits for them instead
	// of queueing them for background draining.
	Foreground bool

	// Delay raises the minimum delay of every dispatched task.
	Delay time.Duration
}

// Coordinator is the public façade of the prefetch engine and the owner
// of its session lifecycle. A session holds exactly one live Coordinator;
// use Replace to construct a successor.
type Coordinator struct {
	logger    *slog.Logger
	sessionID string

	tracker  *Tracker
	observer *Observer
	routes   *RouteResolver
	behavior *BehaviorResolver
	queue    *Queue
	store    cache.Store

	ctx    context.Context
	cancel context.CancelFunc

	warmupDelay time.Duration
	warmupMu    sync.Mutex
	warmupTimer *time.Timer

	unsubAuth    func()
	unsubTracker func()

	closeOnce sync.Once
	closed    atomic.Bool
}

func NewCoordinator(cfg Config) *Coordinator {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sessionID := session.NewID()
	logger = logger.With(xslog.SessionID(sessionID))

	warmupDelay := cfg.WarmupDelay
	if warmupDelay <= 0 {
		warmupDelay = defaultWarmupDelay
	}
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	tracker := NewTracker(logger)
	f := &fetcher{
		source:  cfg.Source,
		store:   cfg.Store,
		tracker: tracker,
		logger:  logger,
		ttl:     ttl,
	}
	observer := NewObserver(tracker)

	ctx, cancel := context.WithCancel(context.Background())
	ctx = xcontext.SetSessionID(ctx, sessionID)
	ctx = xslog.WithLogger(ctx, logger)

	c := &Coordinator{
		logger:    logger,
		sessionID: sessionID,
		tracker:   tracker,
		observer:  observer,
		routes:    &RouteResolver{f: f},
		behavior:  &BehaviorResolver{f: f, observer: observer},
		store:     cfg.Store,
		ctx:       ctx,
		cancel:    cancel,

		warmupDelay: warmupDelay,
	}
	c.queue = NewQueue(tracker, QueueOptions{
		Logger:     logger,
		Rate:       cfg.Rate,
		Burst:      cfg.Burst,
		IdleSignal: cfg.IdleSignal,
	})

	c.unsubTracker = tracker.Subscribe(c.onAuthChange)
	if cfg.Auth != nil {
		c.unsubAuth = cfg.Auth.Subscribe(func(s Snapshot) {
			tracker.Update(s)
		})
		// seed with the provider's current state; an already
		// authenticated session warms up immediately
		tracker.Update(cfg.Auth.Snapshot())
	}

	return c
}

// Replace tears down old (if any) and constructs its successor. This is
// the only supported way to reset the subsystem: it guarantees no
// duplicate listeners survive.
func Replace(old *Coordinator, cfg Config) *Coordinator {
	if old != nil {
		old.Teardown()
	}
	return NewCoordinator(cfg)
}

// PrefetchCriticalData dispatches the critical-data task set.
func (c *Coordinator) PrefetchCriticalData(opts Options) {
	if c.closed.Load() {
		return
	}
	c.dispatch(c.routes.Critical(), opts)
}

// PrefetchForRoute dispatches the task set for a navigation target.
func (c *Coordinator) PrefetchForRoute(route string, opts Options) {
	if c.closed.Load() {
		return
	}
	tasks := c.routes.Resolve(route)
	c.logger.Debug("resolved route prefetch",
		xslog.Route(route),
		xslog.Count(len(tasks)),
	)
	c.dispatch(tasks, opts)
}

// PrefetchBasedOnBehavior dispatches tasks derived from accumulated
// interaction and visit signals.
func (c *Coordinator) PrefetchBasedOnBehavior(opts Options) {
	if c.closed.Load() {
		return
	}
	c.dispatch(c.behavior.Resolve(), opts)
}

// likelyNextRoutes is a static adjacency of where users tend to go next.
var likelyNextRoutes = map[string][]string{
	"/":         {"/shoes", "/runs"},
	"/shoes":    {"/runs", "/stats"},
	"/runs":     {"/shoes", "/activity"},
	"/activity": {"/stats"},
	"/stats":    {"/activity"},
}

// PreloadLikelyRoutes warms the routes a user is likely to visit after
// currentRoute, combining the static adjacency with behavior-derived
// suggestions.
func (c *Coordinator) PreloadLikelyRoutes(currentRoute string, opts Options) {
	if c.closed.Load() {
		return
	}

	var tasks []Task
	seen := make(map[string]bool)
	add := func(ts []Task) {
		for _, t := range ts {
			if seen[t.Key] {
				continue
			}
			seen[t.Key] = true
			tasks = append(tasks, t)
		}
	}

	for _, next := range likelyNextRoutes[normalizeRoute(currentRoute)] {
		add(c.routes.Resolve(next))
	}
	add(c.behavior.Resolve())

	c.dispatch(tasks, opts)
}

// NavigationObserved is the explicit callback the owning router calls on
// every navigation commit. It records the visit and prefetches for the
// new route.
func (c *Coordinator) NavigationObserved(route string) {
	if c.closed.Load() {
		return
	}
	c.observer.RecordVisit(route)
	c.PrefetchForRoute(route, Options{})
}

// AttachHoverPrefetch wires an interaction source so that its first
// signal triggers a prefetch for route; every signal is still recorded as
// an interaction. The returned detach function is idempotent.
func (c *Coordinator) AttachHoverPrefetch(src InteractionSource, route string, opts Options) (detach func()) {
	var fired sync.Once
	remove := src.AddInteractionListener(func() {
		if c.closed.Load() {
			return
		}
		c.observer.RecordInteraction(route)
		fired.Do(func() {
			c.PrefetchForRoute(route, opts)
		})
	})

	var detachOnce sync.Once
	return func() {
		detachOnce.Do(remove)
	}
}

// Stats is a read-only diagnostic snapshot.
type Stats struct {
	SessionID    string
	QueueLen     int
	Draining     bool
	Interactions int
	HistorySize  int
	Auth         Snapshot
	CanPrefetch  bool
}

func (c *Coordinator) Stats() Stats {
	return Stats{
		SessionID:    c.sessionID,
		QueueLen:     c.queue.Len(),
		Draining:     c.queue.Draining(),
		Interactions: len(c.observer.Interactions()),
		HistorySize:  len(c.observer.History()),
		Auth:         c.tracker.Snapshot(),
		CanPrefetch:  c.tracker.CanPrefetch(),
	}
}

// Teardown detaches every listener this Coordinator registered and clears
// all component state. Safe to call more than once.
func (c *Coordinator) Teardown() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		if c.unsubAuth != nil {
			c.unsubAuth()
		}
		if c.unsubTracker != nil {
			c.unsubTracker()
		}
		c.cancelWarmup()
		c.queue.Close()
		c.observer.Reset()
		c.cancel()
		c.logger.Debug("prefetch coordinator torn down")
	})
}

func (c *Coordinator) dispatch(tasks []Task, opts Options) {
	if len(tasks) == 0 {
		return
	}
	if opts.Foreground {
		c.queue.RunForeground(c.ctx, tasks, opts.Delay)
		return
	}
	c.queue.Enqueue(tasks, opts.Delay)
}

func (c *Coordinator) onAuthChange(prev, next Snapshot) {
	switch {
	case prev.Authenticated && !next.Authenticated:
		c.logoutCleanup()
	case !prev.Authenticated && next.Authenticated:
		c.scheduleWarmup()
	}
}

// logoutCleanup discards all speculative state: pending tasks, behavior
// signals, and every auth-scoped cache entry.
func (c *Coordinator) logoutCleanup() {
	c.queue.Clear()
	c.observer.Reset()
	c.cancelWarmup()
	if err := c.store.InvalidateAuthScoped(c.ctx); err != nil {
		c.logger.Warn("failed to purge auth-scoped cache entries", xslog.Error(err))
	}
}

// scheduleWarmup arms a short delay before the post-login critical-data
// prefetch, replacing any warm-up already pending.
func (c *Coordinator) scheduleWarmup() {
	c.warmupMu.Lock()
	defer c.warmupMu.Unlock()
	if c.closed.Load() {
		return
	}
	if c.warmupTimer != nil {
		c.warmupTimer.Stop()
	}
	c.warmupTimer = time.AfterFunc(c.warmupDelay, func() {
		if c.closed.Load() {
			return
		}
		c.PrefetchCriticalData(Options{})
	})
}

func (c *Coordinator) cancelWarmup() {
	c.warmupMu.Lock()
	defer c.warmupMu.Unlock()
	if c.warmupTimer != nil {
		c.warmupTimer.Stop()
		c.warmupTimer = nil
	}
}
