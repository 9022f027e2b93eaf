package prefetch

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Task is one deferred, idempotent remote read whose result lands in the
// shared cache ahead of actual need. Tasks are created per prefetch
// request and discarded after they run or are dropped on auth loss.
//
// The priority tag is recorded for diagnostics only; the queue drains in
// strict FIFO order regardless of it.
type Task struct {
	ID       uuid.UUID
	Key      string
	Priority Priority

	// Delay is a minimum wait applied before the task's operation runs.
	Delay time.Duration

	// RequiresAuth tasks are silently dropped whenever authenticated
	// prefetching is not currently allowed.
	RequiresAuth bool

	Run func(ctx context.Context) error
}
