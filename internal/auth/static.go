// Package auth provides prefetch.AuthProvider implementations bridging
// the application's authentication state into the prefetch engine.
package auth

import (
	"sync"

	"github.com/treadline/treadline/internal/prefetch"
)

var _ prefetch.AuthProvider = (*StaticProvider)(nil)

// StaticProvider is a manually driven provider: the owner calls Set on
// every sign-in/sign-out. Used by the CLI and in tests.
type StaticProvider struct {
	mu        sync.Mutex
	current   prefetch.Snapshot
	listeners map[int]func(prefetch.Snapshot)
	nextID    int
}

func NewStaticProvider(initial prefetch.Snapshot) *StaticProvider {
	return &StaticProvider{
		current:   initial,
		listeners: make(map[int]func(prefetch.Snapshot)),
	}
}

func (p *StaticProvider) Snapshot() prefetch.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Set replaces the snapshot and notifies subscribers.
func (p *StaticProvider) Set(s prefetch.Snapshot) {
	p.mu.Lock()
	p.current = s
	notify := make([]func(prefetch.Snapshot), 0, len(p.listeners))
	for _, fn := range p.listeners {
		notify = append(notify, fn)
	}
	p.mu.Unlock()

	for _, fn := range notify {
		fn(s)
	}
}

func (p *StaticProvider) Subscribe(fn func(prefetch.Snapshot)) (unsubscribe func()) {
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
