package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/oauth2"

	"github.com/treadline/treadline/internal/auth"
	"github.com/treadline/treadline/internal/cache"
	"github.com/treadline/treadline/internal/client/stride"
	"github.com/treadline/treadline/internal/config"
	"github.com/treadline/treadline/internal/paths"
	"github.com/treadline/treadline/internal/xslog"
)

func newLogger(cfg config.Config) (*slog.Logger, error) {
	level, err := xslog.Parse(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return xslog.NewLogger(os.Stderr, level), nil
}

func newStore(ctx context.Context, cfg config.Config) (cache.Store, error) {
	switch cfg.CacheBackend {
	case "memory":
		return cache.NewMemoryStore(), nil
	case "redis":
		return cache.NewRedisStore(ctx, cfg.RedisURL)
	case "sqlite":
		path := cfg.CachePath
		if path == "" {
			var err error
			if path, err = paths.CacheDB(); err != nil {
				return nil, err
			}
		}
		if _, err := paths.EnsureDir(); err != nil {
			return nil, err
		}
		return cache.NewSQLiteStore(ctx, path)
	default:
		return nil, fmt.Errorf("unknown cache backend: %q (valid: memory, redis, sqlite)", cfg.CacheBackend)
	}
}

func newTokenSource() (*auth.FileTokenSource, error) {
	tokenPath, err := paths.Token()
	if err != nil {
		return nil, err
	}
	return auth.NewFileTokenSource(tokenPath, nil), nil
}

func newStrideClient(cfg config.Config, ts oauth2.TokenSource, logger *slog.Logger) *stride.Client {
	return stride.New(ts,
		stride.WithBaseURL(cfg.ServerURL),
		stride.WithLogger(logger),
	)
}
