package prefetch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/treadline/treadline/internal/cache"
	"github.com/treadline/treadline/internal/xslog"
)

// fetcher builds prefetch tasks: each one executes a remote read and
// writes the result into the shared cache as an auth-scoped entry.
type fetcher struct {
	source  DataSource
	store   cache.Store
	tracker *Tracker
	logger  *slog.Logger
	ttl     time.Duration
}

func (f *fetcher) task(key string, priority Priority, fn func(ctx context.Context) (any, error)) Task {
	return Task{
		ID:           uuid.New(),
		Key:          key,
		Priority:     priority,
		RequiresAuth: true,
		Run: func(ctx context.Context) error {
			value, err := fn(ctx)
			if err != nil {
				return err
			}

			// A fetch already mid-flight when authentication is lost is
			// not aborted; its result must not land in the cache.
			if !f.tracker.CanPrefetch() {
				f.logger.DebugContext(ctx, "discarding prefetch result after auth loss",
					xslog.CacheKey(key),
				)
				return nil
			}

			if err := f.store.Set(ctx, key, value, cache.Options{TTL: f.ttl, AuthScoped: true}); err != nil {
				return fmt.Errorf("failed to cache %q: %w", key, err)
			}
			return nil
		},
	}
}

func (f *fetcher) shoesList(priority Priority) Task {
	return f.task(cache.KeyShoesList, priority, f.source.ListShoes)
}

func (f *fetcher) runsList(priority Priority) Task {
	return f.task(cache.KeyRunsList, priority, f.source.ListRuns)
}

func (f *fetcher) recentActivity(priority Priority) Task {
	return f.task(cache.KeyActivityRecent, priority, f.source.RecentActivity)
}

func (f *fetcher) statsSummary(priority Priority) Task {
	return f.task(cache.KeyStatsSummary, priority, f.source.SummaryStats)
}

func (f *fetcher) shoeDetail(shoeID string, priority Priority) Task {
	return f.task(cache.KeyShoeDetail(shoeID), priority, func(ctx context.Context) (any, error) {
		return f.source.GetShoe(ctx, shoeID)
	})
}

func (f *fetcher) shoeRuns(shoeID string, priority Priority) Task {
	return f.task(cache.KeyShoeRuns(shoeID), priority, func(ctx context.Context) (any, error) {
		return f.source.ListRunsForShoe(ctx, shoeID)
	})
}

func (f *fetcher) runDetail(runID string, priority Priority) Task {
	return f.task(cache.KeyRunDetail(runID), priority, func(ctx context.Context) (any, error) {
		return f.source.GetRun(ctx, runID)
	})
}
