package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	go_json "github.com/goccy/go-json"
)

var _ Store = (*MemoryStore)(nil)

type memoryEntry struct {
	data       []byte
	authScoped bool
	expiresAt  time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// MemoryStore is the default in-process cache backend.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	closed  bool

	done chan struct{}
}

func NewMemoryStore() *MemoryStore {
	m := &MemoryStore{
		entries: make(map[string]memoryEntry),
		done:    make(chan struct{}),
	}

	go m.cleanupLoop()

	return m
}

func (m *MemoryStore) Get(_ context.Context, key string, dest any) (bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	closed := m.closed
	m.mu.RUnlock()

	if closed {
		return false, ErrClosed
	}
	if !ok || e.expired(time.Now()) {
		return false, nil
	}

	if err := go_json.Unmarshal(e.data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache entry %q: %w", key, err)
	}
	return true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value any, opts Options) error {
	data, err := go_json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry %q: %w", key, err)
	}

	e := memoryEntry{data: data, authScoped: opts.AuthScoped}
	if opts.TTL > 0 {
		e.expiresAt = time.Now().Add(opts.TTL)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	m.entries[key] = e
	return nil
}

func (m *MemoryStore) Invalidate(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) InvalidateAuthScoped(_ context.Context) error {
	m.mu.Lock()
	for key, e := range m.entries {
		if e.authScoped {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
	return nil
}

// Len reports the number of live entries. Diagnostic only.
func (m *MemoryStore) Len() int {
	now := time.Now()
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, e := range m.entries {
		if !e.expired(now) {
			n++
		}
	}
	return n
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.done)
	m.entries = nil
	return nil
}

func (m *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			m.mu.Lock()
			for key, e := range m.entries {
				if e.expired(now) {
					delete(m.entries, key)
				}
			}
			m.mu.Unlock()
		}
	}
}
