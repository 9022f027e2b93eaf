package prefetch

import (
	"testing"
	"time"
)

func TestTrackerCanPrefetch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		snapshot Snapshot
		want     bool
	}{
		{
			name:     "authenticated and settled",
			snapshot: Snapshot{Authenticated: true},
			want:     true,
		},
		{
			name:     "authenticated but loading",
			snapshot: Snapshot{Authenticated: true, Loading: true},
			want:     false,
		},
		{
			name:     "unauthenticated",
			snapshot: Snapshot{},
			want:     false,
		},
		{
			name:     "unauthenticated and loading",
			snapshot: Snapshot{Loading: true},
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tracker := NewTracker(testLogger())
			tracker.Update(tt.snapshot)
			if got := tracker.CanPrefetch(); got != tt.want {
				t.Errorf("CanPrefetch() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTrackerFreshnessWindow(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tracker := NewTracker(testLogger())
	tracker.now = func() time.Time { return now }

	tracker.Update(authedSnapshot())
	if !tracker.CanPrefetch() {
		t.Fatal("CanPrefetch() = false after authenticated update")
	}

	// simulate a snapshot that went stale without an Update notification:
	// within the freshness window the cached answer is served, after it
	// the live snapshot wins
	tracker.mu.Lock()
	tracker.current = Snapshot{}
	tracker.mu.Unlock()

	now = now.Add(snapshotFreshness - time.Second)
	if !tracker.CanPrefetch() {
		t.Error("CanPrefetch() = false inside freshness window, want cached true")
	}

	now = now.Add(2 * time.Second)
	if tracker.CanPrefetch() {
		t.Error("CanPrefetch() = true after freshness window, want re-derived false")
	}
}

func TestTrackerUpdateRefreshesImmediately(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(testLogger())
	tracker.Update(authedSnapshot())
	if !tracker.CanPrefetch() {
		t.Fatal("CanPrefetch() = false after login")
	}

	tracker.Update(Snapshot{})
	if tracker.CanPrefetch() {
		t.Error("CanPrefetch() = true immediately after logout update")
	}
}

func TestTrackerListenersRunInOrder(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(testLogger())

	var order []int
	for i := range 3 {
		tracker.Subscribe(func(_, _ Snapshot) {
			order = append(order, i)
		})
	}

	tracker.Update(authedSnapshot())

	want := []int{0, 1, 2}
	if len(order) != len(want) {
		t.Fatalf("got %d notifications, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("notification order = %v, want %v", order, want)
		}
	}
}

func TestTrackerPanickingListenerIsIsolated(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(testLogger())

	var before, after bool
	tracker.Subscribe(func(_, _ Snapshot) { before = true })
	tracker.Subscribe(func(_, _ Snapshot) { panic("listener exploded") })
	tracker.Subscribe(func(_, _ Snapshot) { after = true })

	tracker.Update(authedSnapshot())

	if !before || !after {
		t.Errorf("listeners around panicking one: before=%v after=%v, want both true", before, after)
	}
	if got := tracker.Snapshot(); !got.Authenticated {
		t.Error("update did not complete after listener panic")
	}
}

func TestTrackerUnsubscribe(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(testLogger())

	var calls int
	unsubscribe := tracker.Subscribe(func(_, _ Snapshot) { calls++ })

	tracker.Update(authedSnapshot())
	unsubscribe()
	unsubscribe() // idempotent
	tracker.Update(Snapshot{})

	if calls != 1 {
		t.Errorf("listener called %d times, want 1", calls)
	}
}

func TestTrackerUnsubscribeDuringNotification(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(testLogger())

	var unsubscribeSecond func()
	var secondCalls int

	tracker.Subscribe(func(_, _ Snapshot) {
		unsubscribeSecond()
	})
	unsubscribeSecond = tracker.Subscribe(func(_, _ Snapshot) {
		secondCalls++
	})

	// the first listener unsubscribes the second mid-round; the current
	// round still delivers to it, later rounds do not
	tracker.Update(authedSnapshot())
	tracker.Update(Snapshot{})

	if secondCalls != 1 {
		t.Errorf("second listener called %d times, want 1", secondCalls)
	}
}

func TestTrackerPassesPrevAndNext(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(testLogger())

	var gotPrev, gotNext Snapshot
	tracker.Subscribe(func(prev, next Snapshot) {
		gotPrev, gotNext = prev, next
	})

	tracker.Update(authedSnapshot())
	tracker.Update(Snapshot{Loading: true})

	if !gotPrev.Authenticated {
		t.Error("prev snapshot lost the authenticated state")
	}
	if !gotNext.Loading {
		t.Error("next snapshot missing the loading state")
	}
}
