package prefetch

import "context"

// DataSource is the slice of the remote data-access layer the prefetch
// engine warms. Results are opaque cacheable payloads; authorization
// failures must surface as errors whose message carries one of the
// recognized markers (see stride.IsAuthError).
type DataSource interface {
	ListShoes(ctx context.Context) (any, error)
	GetShoe(ctx context.Context, id string) (any, error)
	ListRunsForShoe(ctx context.Context, shoeID string) (any, error)
	ListRuns(ctx context.Context) (any, error)
	GetRun(ctx context.Context, id string) (any, error)
	RecentActivity(ctx context.Context) (any, error)
	SummaryStats(ctx context.Context) (any, error)
}
