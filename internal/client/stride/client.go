package stride

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	go_json "github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/treadline/treadline/internal/version"
)

// Client talks to the Stride API, the managed backend that owns shoes,
// runs, and usage analytics.
type Client struct {
	Shoe     ShoeService
	Run      RunService
	Activity ActivityService
	Stats    StatsService

	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func New(tokenSource oauth2.TokenSource, opts ...Option) *Client {
	const baseURL = "https://api.treadline.app"

	cfg := &clientConfig{
		baseURL:     baseURL,
		tokenSource: tokenSource,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	transport := &strideTransport{
		base:        http.DefaultTransport,
		tokenSource: cfg.tokenSource,
	}

	c := &Client{
		baseURL:    cfg.baseURL,
		httpClient: &http.Client{Transport: transport, Timeout: cfg.timeout},
		logger:     cfg.logger,
	}

	c.Shoe = &shoeService{client: c}
	c.Run = &runService{client: c}
	c.Activity = &activityService{client: c}
	c.Stats = &statsService{client: c}

	return c
}

type clientConfig struct {
	baseURL     string
	tokenSource oauth2.TokenSource
	logger      *slog.Logger
	timeout     time.Duration
}

type Option func(*clientConfig)

func WithBaseURL(baseURL string) Option {
	return func(cfg *clientConfig) { cfg.baseURL = baseURL }
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *clientConfig) { cfg.logger = logger }
}

func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) { cfg.timeout = d }
}

func (c *Client) do(ctx context.Context, method string, path string, query url.Values, result any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return parseAPIError(resp)
	}

	if result != nil && resp.StatusCode != http.StatusNoContent {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("reading response: %w", err)
		}
		if err := go_json.NewDecoder(bytes.NewReader(body)).Decode(result); err != nil {
			return fmt.Errorf("decoding response: %w\nbody: %s", err, string(body))
		}
	}

	return nil
}

type strideTransport struct {
	base        http.RoundTripper
	tokenSource oauth2.TokenSource
}

var _ http.RoundTripper = (*strideTransport)(nil)

func (t *strideTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", "treadline/"+version.Get())
	req.Header.Set("Accept", "application/json")

	if t.tokenSource != nil {
		token, err := t.tokenSource.Token()
		if err != nil {
			return nil, fmt.Errorf("getting token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("round trip: %w", err)
	}
	return resp, nil
}
