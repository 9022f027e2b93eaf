package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/treadline/treadline/internal/prefetch"
	"github.com/treadline/treadline/internal/xslog"
)

var _ prefetch.AuthProvider = (*TokenProvider)(nil)

// TokenProvider derives authentication state from an oauth2.TokenSource.
// A valid token means the session is authenticated; a failed or expired
// token means it is not. Watch polls for transitions and pushes them to
// subscribers.
type TokenProvider struct {
	ts     oauth2.TokenSource
	userID string
	logger *slog.Logger

	mu        sync.Mutex
	last      prefetch.Snapshot
	seeded    bool
	listeners map[int]func(prefetch.Snapshot)
	nextID    int
}

func NewTokenProvider(ts oauth2.TokenSource, userID string, logger *slog.Logger) *TokenProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenProvider{
		ts:        ts,
		userID:    userID,
		logger:    logger,
		listeners: make(map[int]func(prefetch.Snapshot)),
	}
}

func (p *TokenProvider) Snapshot() prefetch.Snapshot {
	return p.derive()
}

func (p *TokenProvider) derive() prefetch.Snapshot {
	token, err := p.ts.Token()
	if err != nil || !token.Valid() {
		if err != nil {
			p.logger.Debug("token source unavailable", xslog.Error(err))
		}
		return prefetch.Snapshot{}
	}
	return prefetch.Snapshot{
		Authenticated: true,
		UserID:        p.userID,
	}
}

func (p *TokenProvider) Subscribe(fn func(prefetch.Snapshot)) (unsubscribe func()) {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.listeners, id)
			p.mu.Unlock()
		})
	}
}

// Watch polls the token source at interval and notifies subscribers on
// every transition. Blocks until ctx is done; run it in its own
// goroutine.
func (p *TokenProvider) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.check()
		}
	}
}

func (p *TokenProvider) check() {
	next := p.derive()

	p.mu.Lock()
	if p.seeded && next == p.last {
		p.mu.Unlock()
		return
	}
	p.seeded = true
	p.last = next
	notify := make([]func(prefetch.Snapshot), 0, len(p.listeners))
	for _, fn := range p.listeners {
		notify = append(notify, fn)
	}
	p.mu.Unlock()

	for _, fn := range notify {
		fn(next)
	}
}
