package stride

import "context"

const (
	prefetchListLimit     = 25
	prefetchActivityLimit = 20
)

// PrefetchSource exposes the slice of the API the prefetch engine warms.
// It satisfies prefetch.DataSource; results are opaque to the caller and
// land in the shared cache as-is.
type PrefetchSource struct {
	client *Client
}

func NewPrefetchSource(client *Client) *PrefetchSource {
	return &PrefetchSource{client: client}
}

func (s *PrefetchSource) ListShoes(ctx context.Context) (any, error) {
	resp, err := s.client.Shoe.List(ctx, &ListParams{Limit: prefetchListLimit})
	if err != nil {
		return nil, err
	}
	return resp.Records, nil
}

func (s *PrefetchSource) GetShoe(ctx context.Context, id string) (any, error) {
	return s.client.Shoe.Get(ctx, id)
}

func (s *PrefetchSource) ListRunsForShoe(ctx context.Context, shoeID string) (any, error) {
	resp, err := s.client.Shoe.ListRuns(ctx, shoeID, &ListParams{Limit: prefetchListLimit})
	if err != nil {
		return nil, err
	}
	return resp.Records, nil
}

func (s *PrefetchSource) ListRuns(ctx context.Context) (any, error) {
	resp, err := s.client.Run.List(ctx, &ListParams{Limit: prefetchListLimit})
	if err != nil {
		return nil, err
	}
	return resp.Records, nil
}

func (s *PrefetchSource) GetRun(ctx context.Context, id string) (any, error) {
	return s.client.Run.Get(ctx, id)
}

func (s *PrefetchSource) RecentActivity(ctx context.Context) (any, error) {
	return s.client.Activity.Recent(ctx, prefetchActivityLimit)
}

func (s *PrefetchSource) SummaryStats(ctx context.Context) (any, error) {
	return s.client.Stats.Summary(ctx)
}
