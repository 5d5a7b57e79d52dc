// Command buzzwatch monitors the Yahoo fantasy-football Buzz Index and
// sends Discord alerts when a player's add/drop activity accelerates.
//
// Usage:
//
//	buzzwatch watch
//	buzzwatch watch --iterations 5 --interval-seconds 60
//	buzzwatch once --date 2025-09-03
//	buzzwatch scrape --date 2025-09-03
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/albapepper/buzzwatch/internal/alerts"
	"github.com/albapepper/buzzwatch/internal/api"
	"github.com/albapepper/buzzwatch/internal/buzz"
	"github.com/albapepper/buzzwatch/internal/config"
	"github.com/albapepper/buzzwatch/internal/external"
	"github.com/albapepper/buzzwatch/internal/watch"
)

var logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

func main() {
	root := &cobra.Command{
		Use:   "buzzwatch",
		Short: "Yahoo Buzz Index trend watcher",
	}

	root.AddCommand(watchCmd())
	root.AddCommand(onceCmd())
	root.AddCommand(scrapeCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// watch command
// --------------------------------------------------------------------------

func watchCmd() *cobra.Command {
	var date string
	var iterations int
	var intervalSeconds int
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the poll loop continuously (or for a fixed iteration count)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				logger.Error("Failed to load configuration", "error", err)
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			w := newWatcher(cfg)
			if cfg.StatusEnabled {
				go api.Serve(ctx, cfg, w, logger)
			}

			if iterations > 0 {
				interval := cfg.CheckInterval()
				if intervalSeconds > 0 {
					interval = time.Duration(intervalSeconds) * time.Second
				}
				w.RunN(ctx, date, iterations, interval)
				return nil
			}
			w.Run(ctx, date)
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "YYYY-MM-DD date override for the buzz index page")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "Run N cycles then exit (0 = run until interrupted)")
	cmd.Flags().IntVar(&intervalSeconds, "interval-seconds", 0, "Seconds between cycles (default: CHECK_INTERVAL_MIN * 60)")
	return cmd
}

// --------------------------------------------------------------------------
// once command
// --------------------------------------------------------------------------

func onceCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "once",
		Short: "Run a single cycle and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				logger.Error("Failed to load configuration", "error", err)
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			stats := newWatcher(cfg).RunCycle(ctx, date)
			if stats.Candidates == 0 && stats.FetchError == "" {
				logger.Info("Baseline established. Run again (or use watch mode) to detect changes.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "YYYY-MM-DD date override for the buzz index page")
	return cmd
}

// --------------------------------------------------------------------------
// scrape command
// --------------------------------------------------------------------------

func scrapeCmd() *cobra.Command {
	var date string
	var limit int
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Fetch the buzz index and print parsed rows (debugging)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				logger.Error("Failed to load configuration", "error", err)
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			client := buzz.NewClient(cfg.UserAgent, cfg.RequestTimeout(), cfg.FetchRequestsPerMin, logger)
			rows, err := client.FetchRows(ctx, date)
			if err != nil {
				return err
			}
			for i, r := range rows {
				if i >= limit {
					break
				}
				fmt.Printf("%-30s adds=%6d drops=%6d team_pos=%s\n", r.Name, r.Adds, r.Drops, r.TeamPos)
			}
			fmt.Printf("Total rows: %d\n", len(rows))
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "YYYY-MM-DD date override for the buzz index page")
	cmd.Flags().IntVar(&limit, "limit", 25, "Maximum rows to print")
	return cmd
}

// --------------------------------------------------------------------------
// wiring
// --------------------------------------------------------------------------

func newWatcher(cfg *config.Config) *watch.Watcher {
	client := buzz.NewClient(cfg.UserAgent, cfg.RequestTimeout(), cfg.FetchRequestsPerMin, logger)

	// Keep the interface nil when the sender is nil, otherwise the notifier
	// sees a non-nil Transport wrapping a nil pointer.
	var transport alerts.Transport
	if sender := external.NewDiscordSender(cfg.DiscordWebhookURL, cfg.RequestTimeout()); sender != nil {
		transport = sender
	}

	notifier := alerts.NewNotifier(transport, cfg.EmbedAlertsPerMessage, cfg.MaxDiscordRetries,
		cfg.DryRun, os.Stdout, logger)
	return watch.New(cfg, client, notifier, logger)
}
