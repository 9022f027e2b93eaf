package prefetch

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newAuthedObserver() *Observer {
	tracker := NewTracker(testLogger())
	tracker.Update(authedSnapshot())
	return NewObserver(tracker)
}

func TestObserverHistoryMostRecentFirst(t *testing.T) {
	t.Parallel()

	o := newAuthedObserver()
	o.RecordVisit("/shoes")
	o.RecordVisit("/runs")
	o.RecordVisit("/stats")

	want := []string{"/stats", "/runs", "/shoes"}
	if diff := cmp.Diff(want, o.History()); diff != "" {
		t.Errorf("History() mismatch (-want +got):\n%s", diff)
	}
}

func TestObserverHistoryCapacity(t *testing.T) {
	t.Parallel()

	o := newAuthedObserver()
	for i := range historyCapacity + 5 {
		o.RecordVisit(fmt.Sprintf("/shoes/%d", i))
	}

	history := o.History()
	if len(history) != historyCapacity {
		t.Fatalf("History() length = %d, want %d", len(history), historyCapacity)
	}
	if history[0] != fmt.Sprintf("/shoes/%d", historyCapacity+4) {
		t.Errorf("History()[0] = %q, want most recent visit", history[0])
	}
}

func TestObserverInteractionCounts(t *testing.T) {
	t.Parallel()

	o := newAuthedObserver()
	o.RecordInteraction("/shoes/42")
	o.RecordInteraction("/shoes/42")
	o.RecordInteraction("/runs/7")

	want := map[string]int{
		"/shoes/42": 2,
		"/runs/7":   1,
	}
	if diff := cmp.Diff(want, o.Interactions()); diff != "" {
		t.Errorf("Interactions() mismatch (-want +got):\n%s", diff)
	}
}

func TestObserverSkipsRecordingWhenUnauthenticated(t *testing.T) {
	t.Parallel()

	tracker := NewTracker(testLogger())
	o := NewObserver(tracker)

	o.RecordVisit("/shoes")
	o.RecordInteraction("/shoes/42")

	if len(o.History()) != 0 {
		t.Error("visit recorded for unauthenticated session")
	}
	if len(o.Interactions()) != 0 {
		t.Error("interaction recorded for unauthenticated session")
	}
}

func TestObserverAccessorsReturnCopies(t *testing.T) {
	t.Parallel()

	o := newAuthedObserver()
	o.RecordVisit("/shoes")
	o.RecordInteraction("/shoes/42")

	history := o.History()
	history[0] = "/mutated"
	counts := o.Interactions()
	counts["/shoes/42"] = 99

	if got := o.History()[0]; got != "/shoes" {
		t.Errorf("history corrupted through accessor copy: %q", got)
	}
	if got := o.Interactions()["/shoes/42"]; got != 1 {
		t.Errorf("counts corrupted through accessor copy: %d", got)
	}
}

func TestObserverReset(t *testing.T) {
	t.Parallel()

	o := newAuthedObserver()
	o.RecordVisit("/shoes")
	o.RecordInteraction("/shoes/42")

	o.Reset()

	if len(o.History()) != 0 || len(o.Interactions()) != 0 {
		t.Error("Reset() left recorded state behind")
	}
}
