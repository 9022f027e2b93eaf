package stride

import (
	"context"
	"fmt"
	"net/http"
)

type shoeService struct {
	client *Client
}

func (s *shoeService) List(ctx context.Context, params *ListParams) (*PaginatedResponse[Shoe], error) {
	const route = "/v1/shoes"

	var resp PaginatedResponse[Shoe]
	if err := s.client.do(ctx, http.MethodGet, route, params.values(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *shoeService) Get(ctx context.Context, id string) (*Shoe, error) {
	const route = "/v1/shoes"
	path := fmt.Sprintf("%s/%s", route, id)

	var shoe Shoe
	if err := s.client.do(ctx, http.MethodGet, path, nil, &shoe); err != nil {
		return nil, err
	}
	return &shoe, nil
}

func (s *shoeService) ListRuns(ctx context.Context, shoeID string, params *ListParams) (*PaginatedResponse[Run], error) {
	const route = "/v1/shoes"
	path := fmt.Sprintf("%s/%s/runs", route, shoeID)

	var resp PaginatedResponse[Run]
	if err := s.client.do(ctx, http.MethodGet, path, params.values(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
