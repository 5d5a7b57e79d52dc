// Package watch drives the poll loop: one cycle fetches buzz rows, feeds
// them through the snapshot store and evaluator, governs the candidate
// conditions, and hands the approved set to the notifier. Cycles run
// strictly sequentially; shutdown takes effect between cycles so in-flight
// delivery for the current cycle can finish or exhaust its retries.
package watch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/albapepper/buzzwatch/internal/alerts"
	"github.com/albapepper/buzzwatch/internal/buzz"
	"github.com/albapepper/buzzwatch/internal/config"
)

// Fetcher obtains the current buzz index rows. A fetch failure is an error,
// distinguishable from a page with zero trending players.
type Fetcher interface {
	FetchRows(ctx context.Context, date string) ([]buzz.PlayerRow, error)
}

// CycleStats summarizes one completed (or skipped) cycle.
type CycleStats struct {
	CycleID          string    `json:"cycle_id"`
	StartedAt        time.Time `json:"started_at"`
	DurationMs       int64     `json:"duration_ms"`
	Rows             int       `json:"rows"`
	Candidates       int       `json:"candidates"`
	Approved         int       `json:"approved"`
	BatchesDelivered int       `json:"batches_delivered"`
	BatchesFailed    int       `json:"batches_failed"`
	FetchError       string    `json:"fetch_error,omitempty"`
}

// Status is the snapshot served by the operational status endpoint.
type Status struct {
	Cycles         int         `json:"cycles"`
	PlayersTracked int         `json:"players_tracked"`
	LastCycle      *CycleStats `json:"last_cycle,omitempty"`
}

// Watcher owns the per-cycle pipeline and its in-memory state. The poll
// flow is the sole mutator of store and governor state; the only concurrent
// reader is the status endpoint, which sees a copied Status under the lock.
type Watcher struct {
	cfg       *config.Config
	fetcher   Fetcher
	store     *alerts.Store
	evaluator *alerts.Evaluator
	governor  *alerts.Governor
	notifier  *alerts.Notifier
	logger    *slog.Logger
	now       func() time.Time

	mu     sync.RWMutex
	status Status
}

// New wires a watcher from loaded configuration and its collaborators.
func New(cfg *config.Config, fetcher Fetcher, notifier *alerts.Notifier, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		cfg:       cfg,
		fetcher:   fetcher,
		store:     alerts.NewStore(cfg.SmoothingN),
		evaluator: alerts.NewEvaluator(cfg),
		governor:  alerts.NewGovernor(cfg.MaxAlertsPerPlayer, cfg.MaxAlertsPerIteration),
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// RunCycle executes exactly one cycle. A fetch failure skips the cycle and
// leaves all snapshots untouched, so the next successful cycle compares
// against the last good baseline. Errors never escape; the stats record the
// outcome.
func (w *Watcher) RunCycle(ctx context.Context, date string) CycleStats {
	start := w.now()
	firstCycle := w.Status().Cycles == 0
	stats := CycleStats{
		CycleID:   uuid.NewString()[:8],
		StartedAt: start,
	}
	cyclesTotal.Inc()
	log := w.logger.With("cycle", stats.CycleID)

	rows, err := w.fetcher.FetchRows(ctx, date)
	if err != nil {
		fetchFailuresTotal.Inc()
		stats.FetchError = err.Error()
		stats.DurationMs = time.Since(start).Milliseconds()
		log.Warn("Fetch failed, skipping cycle (snapshots retained)", "error", err)
		w.record(stats)
		return stats
	}
	stats.Rows = len(rows)
	log.Info("Fetched buzz index", "rows", len(rows), "date", dateLabel(date))

	observedAt := w.now()
	var candidates []alerts.Condition
	for _, r := range rows {
		obs := alerts.Observation{
			Player:     r.Name,
			TeamPos:    r.TeamPos,
			Adds:       r.Adds,
			Drops:      r.Drops,
			ObservedAt: observedAt,
		}
		previous := w.store.Update(obs)
		for _, c := range w.evaluator.Evaluate(obs, previous) {
			conditionsTotal.WithLabelValues(c.Kind).Inc()
			candidates = append(candidates, c)
		}
	}
	playersTracked.Set(float64(w.store.Players()))
	stats.Candidates = len(candidates)

	approved := w.governor.Filter(candidates, observedAt)
	stats.Approved = len(approved)
	approvedTotal.Add(float64(len(approved)))

	// Delivery for an already-approved cycle runs to completion even if the
	// shutdown signal arrives mid-cycle.
	report := w.notifier.Deliver(context.WithoutCancel(ctx), approved)
	stats.BatchesDelivered = report.Delivered()
	stats.BatchesFailed = report.Failed()
	batchesTotal.WithLabelValues("delivered").Add(float64(report.Delivered()))
	batchesTotal.WithLabelValues("failed").Add(float64(report.Failed()))

	stats.DurationMs = time.Since(start).Milliseconds()
	switch {
	case len(approved) > 0:
		log.Info("Cycle complete",
			"candidates", len(candidates), "approved", len(approved),
			"batches_delivered", report.Delivered(), "batches_failed", report.Failed())
	case firstCycle:
		log.Info("Baseline established. Subsequent cycles will detect changes.")
	default:
		log.Info("No alerts this cycle")
	}

	w.record(stats)
	return stats
}

// Run executes cycles on the configured interval until ctx is cancelled.
// Cancellation takes effect between cycles, never mid-cycle.
func (w *Watcher) Run(ctx context.Context, date string) {
	interval := w.cfg.CheckInterval()
	w.logger.Info("Watcher started", "interval", interval, "dry_run", w.cfg.DryRun)
	for {
		w.RunCycle(ctx, date)
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			w.logger.Info("Watcher stopped")
			return
		}
	}
}

// RunN executes up to n cycles with the given wait between them, stopping
// early on cancellation. State persists across the iterations.
func (w *Watcher) RunN(ctx context.Context, date string, n int, interval time.Duration) {
	for i := 0; i < n; i++ {
		w.RunCycle(ctx, date)
		if i == n-1 {
			return
		}
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return
		}
	}
}

// Status returns a copy of the current status snapshot. Safe for concurrent
// use with the poll flow.
func (w *Watcher) Status() Status {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.status
}

func (w *Watcher) record(stats CycleStats) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status.Cycles++
	w.status.PlayersTracked = w.store.Players()
	w.status.LastCycle = &stats
}

func dateLabel(date string) string {
	if date == "" {
		return "latest"
	}
	return date
}
