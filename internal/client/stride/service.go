package stride

import "context"

type ShoeService interface {
	List(ctx context.Context, params *ListParams) (*PaginatedResponse[Shoe], error)
	Get(ctx context.Context, id string) (*Shoe, error)
	ListRuns(ctx context.Context, shoeID string, params *ListParams) (*PaginatedResponse[Run], error)
}

type RunService interface {
	List(ctx context.Context, params *ListParams) (*PaginatedResponse[Run], error)
	Get(ctx context.Context, id string) (*Run, error)
}

type ActivityService interface {
	Recent(ctx context.Context, limit int) ([]ActivityEntry, error)
}

type StatsService interface {
	Summary(ctx context.Context) (*SummaryStats, error)
}
