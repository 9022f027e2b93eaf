package stride

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

type activityService struct {
	client *Client
}

func (s *activityService) Recent(ctx context.Context, limit int) ([]ActivityEntry, error) {
	const route = "/v1/activity"

	var query url.Values
	if limit > 0 {
		query = url.Values{"limit": []string{strconv.Itoa(limit)}}
	}

	var resp struct {
		Entries []ActivityEntry `json:"entries"`
	}
	if err := s.client.do(ctx, http.MethodGet, route, query, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}
