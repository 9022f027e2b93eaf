package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/treadline/treadline/internal/auth"
	"github.com/treadline/treadline/internal/client/stride"
	"github.com/treadline/treadline/internal/config"
	"github.com/treadline/treadline/internal/prefetch"
	"github.com/treadline/treadline/internal/xslog"
)

func warmCmd() *cobra.Command {
	var route string

	cmd := &cobra.Command{
		Use:   "warm",
		Short: "Warm the local cache",
		Long:  "Fetches the critical data set (and, with --route, the data for that route) into the local cache.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Read()
			if err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			store, err := newStore(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to open cache store: %w", err)
			}
			defer func() { _ = store.Close() }()
			logger.Debug("cache store ready", xslog.Backend(cfg.CacheBackend))

			ts, err := newTokenSource()
			if err != nil {
				return err
			}

			client := newStrideClient(cfg, ts, logger)
			provider := auth.NewTokenProvider(ts, "", logger)

			c := prefetch.NewCoordinator(prefetch.Config{
				Source:   stride.NewPrefetchSource(client),
				Store:    store,
				Auth:     provider,
				Logger:   logger,
				CacheTTL: cfg.CacheTTL,
				Rate:     rate.Limit(cfg.PrefetchRate),
				Burst:    cfg.PrefetchBurst,
			})
			defer c.Teardown()

			stats := c.Stats()
			if !stats.CanPrefetch {
				return fmt.Errorf("not authenticated: run `treadline auth login` first")
			}

			c.PrefetchCriticalData(prefetch.Options{Foreground: true})
			if route != "" {
				c.PrefetchForRoute(route, prefetch.Options{Foreground: true})
				c.PreloadLikelyRoutes(route, prefetch.Options{Foreground: true})
			}

			stats = c.Stats()
			fmt.Printf("Cache warmed (session %s)\n", stats.SessionID)
			return nil
		},
	}

	cmd.Flags().StringVar(&route, "route", "", "also warm the data for this route, e.g. /shoes or /runs/123")

	return cmd
}
