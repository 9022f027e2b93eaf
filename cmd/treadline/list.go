package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/treadline/treadline/internal/client/stride"
	"github.com/treadline/treadline/internal/config"
)

func withClient(cmd *cobra.Command, fn func(*stride.Client) error) error {
	cfg, err := config.Read()
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ts, err := newTokenSource()
	if err != nil {
		return err
	}

	return fn(newStrideClient(cfg, ts, logger))
}

func shoesCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "shoes",
		Short: "List your shoes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(client *stride.Client) error {
				resp, err := client.Shoe.List(cmd.Context(), &stride.ListParams{Limit: limit})
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tBRAND\tKM\tSTATUS")
				for _, shoe := range resp.Records {
					status := "active"
					if shoe.RetiredAt != nil {
						status = "retired"
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%.1f/%.0f\t%s\n",
						shoe.ID, shoe.Name, shoe.Brand, shoe.DistanceKm, shoe.MaxKm, status)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 25, "maximum number of shoes to list")

	return cmd
}

func runsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List your recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(client *stride.Client) error {
				resp, err := client.Run.List(cmd.Context(), &stride.ListParams{Limit: limit})
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tDATE\tKM\tDURATION")
				for _, run := range resp.Records {
					fmt.Fprintf(w, "%s\t%s\t%.1f\t%s\n",
						run.ID,
						run.StartedAt.Format("2006-01-02"),
						run.DistanceKm,
						run.Duration.Round(time.Second))
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 25, "maximum number of runs to list")

	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show your usage summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd, func(client *stride.Client) error {
				stats, err := client.Stats.Summary(cmd.Context())
				if err != nil {
					return err
				}

				fmt.Printf("Total runs:      %d\n", stats.TotalRuns)
				fmt.Printf("Total distance:  %.1f km\n", stats.TotalDistanceKm)
				fmt.Printf("This week:       %.1f km\n", stats.WeeklyDistanceKm)
				fmt.Printf("Active shoes:    %d\n", stats.ActiveShoes)
				return nil
			})
		},
	}
}
