package stride

import (
	"context"
	"fmt"
	"net/http"
)

type runService struct {
	client *Client
}

func (s *runService) List(ctx context.Context, params *ListParams) (*PaginatedResponse[Run], error) {
	const route = "/v1/runs"

	var resp PaginatedResponse[Run]
	if err := s.client.do(ctx, http.MethodGet, route, params.values(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *runService) Get(ctx context.Context, id string) (*Run, error) {
	const route = "/v1/runs"
	path := fmt.Sprintf("%s/%s", route, id)

	var run Run
	if err := s.client.do(ctx, http.MethodGet, path, nil, &run); err != nil {
		return nil, err
	}
	return &run, nil
}
