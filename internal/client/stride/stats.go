package stride

import (
	"context"
	"net/http"
)

type statsService struct {
	client *Client
}

func (s *statsService) Summary(ctx context.Context) (*SummaryStats, error) {
	const route = "/v1/stats/summary"

	var stats SummaryStats
	if err := s.client.do(ctx, http.MethodGet, route, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
