package prefetch

import "sync"

// historyCapacity bounds the route visit history, most-recent-first.
const historyCapacity = 10

// Observer passively records navigation commits and link interactions to
// infer intent. It is an advisory signal source, never a source of truth
// for authorization: recording is skipped entirely while authenticated
// prefetching is disallowed, so no bookkeeping accrues for an
// unauthenticated session.
type Observer struct {
	mu      sync.Mutex
	tracker *Tracker
	counts  map[string]int
	history []string
}

func NewObserver(tracker *Tracker) *Observer {
	return &Observer{
		tracker: tracker,
		counts:  make(map[string]int),
	}
}

// RecordVisit prepends route to the visit history, truncating to capacity.
func (o *Observer) RecordVisit(route string) {
	if !o.tracker.CanPrefetch() {
		return
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.history = append([]string{route}, o.history...)
	if len(o.history) > historyCapacity {
		o.history = o.history[:historyCapacity]
	}
}

// RecordInteraction increments the interaction count for route.
func (o *Observer) RecordInteraction(route string) {
	if !o.tracker.CanPrefetch() {
		return
	}

	o.mu.Lock()
	o.counts[route]++
	o.mu.Unlock()
}

// Interactions returns a copy of the per-route interaction counts.
func (o *Observer) Interactions() map[string]int {
	o.mu.Lock()
	defer o.mu.Unlock()
	counts := make(map[string]int, len(o.counts))
	for route, n := range o.counts {
		counts[route] = n
	}
	return counts
}

// History returns a copy of the visit history, most recent first.
func (o *Observer) History() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	history := make([]string, len(o.history))
	copy(history, o.history)
	return history
}

// Reset drops all recorded state. Called on sign-out and teardown.
func (o *Observer) Reset() {
	o.mu.Lock()
	o.counts = make(map[string]int)
	o.history = nil
	o.mu.Unlock()
}
