package prefetch

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/treadline/treadline/internal/cache"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func authedSnapshot() Snapshot {
	return Snapshot{Authenticated: true, UserID: "user-1"}
}

// fakeSource counts remote calls per operation and can fail or block
// selected operations.
type fakeSource struct {
	mu    sync.Mutex
	calls map[string]int
	errs  map[string]error

	// block, when non-nil, stalls every operation until closed.
	block chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		calls: make(map[string]int),
		errs:  make(map[string]error),
	}
}

func (s *fakeSource) failWith(op string, err error) {
	s.mu.Lock()
	s.errs[op] = err
	s.mu.Unlock()
}

func (s *fakeSource) count(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *fakeSource) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.calls {
		n += c
	}
	return n
}

func (s *fakeSource) op(op string) (any, error) {
	s.mu.Lock()
	blocked := s.block
	s.mu.Unlock()
	if blocked != nil {
		<-blocked
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[op]++
	if err := s.errs[op]; err != nil {
		return nil, err
	}
	return map[string]string{"op": op}, nil
}

func (s *fakeSource) ListShoes(context.Context) (any, error) {
	return s.op(cache.KeyShoesList)
}

func (s *fakeSource) GetShoe(_ context.Context, id string) (any, error) {
	return s.op(cache.KeyShoeDetail(id))
}

func (s *fakeSource) ListRunsForShoe(_ context.Context, shoeID string) (any, error) {
	return s.op(cache.KeyShoeRuns(shoeID))
}

func (s *fakeSource) ListRuns(context.Context) (any, error) {
	return s.op(cache.KeyRunsList)
}

func (s *fakeSource) GetRun(_ context.Context, id string) (any, error) {
	return s.op(cache.KeyRunDetail(id))
}

func (s *fakeSource) RecentActivity(context.Context) (any, error) {
	return s.op(cache.KeyActivityRecent)
}

func (s *fakeSource) SummaryStats(context.Context) (any, error) {
	return s.op(cache.KeyStatsSummary)
}

var _ DataSource = (*fakeSource)(nil)

// fakeProvider is an AuthProvider driven directly by tests.
type fakeProvider struct {
	mu        sync.Mutex
	current   Snapshot
	listeners map[int]func(Snapshot)
	nextID    int
}

func newFakeProvider(initial Snapshot) *fakeProvider {
	return &fakeProvider{
		current:   initial,
		listeners: make(map[int]func(Snapshot)),
	}
}

func (p *fakeProvider) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *fakeProvider) Subscribe(fn func(Snapshot)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *fakeProvider) set(s Snapshot) {
	p.mu.Lock()
	p.current = s
	notify := make([]func(Snapshot), 0, len(p.listeners))
	for _, fn := range p.listeners {
		notify = append(notify, fn)
	}
	p.mu.Unlock()
	for _, fn := range notify {
		fn(s)
	}
}

var _ AuthProvider = (*fakeProvider)(nil)

func newTestFetcher(src DataSource, store cache.Store, tracker *Tracker) *fetcher {
	return &fetcher{
		source:  src,
		store:   store,
		tracker: tracker,
		logger:  testLogger(),
		ttl:     time.Minute,
	}
}

func taskKeys(tasks []Task) []string {
	keys := make([]string, len(tasks))
	for i, t := range tasks {
		keys[i] = t.Key
	}
	return keys
}

// waitFor polls cond until it holds or the timeout elapses.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("condition not met within %v", timeout)
}
