package alerts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrRateLimited is returned by a Transport when the remote endpoint
// reports rate limiting. The notifier retries it the same way as any other
// transport failure; the sentinel exists so callers can label the outcome.
var ErrRateLimited = errors.New("transport rate limited")

// Transport delivers one pre-sized batch as a single outbound message. It is
// responsible only for wire formatting and the single HTTP outcome.
type Transport interface {
	Send(ctx context.Context, batch []Condition) error
}

// Notifier partitions approved conditions into fixed-size batches and
// delivers each through the transport with bounded exponential-backoff
// retry. One batch exhausting its retries never blocks subsequent batches.
//
// In dry-run mode (or with no transport configured) batches are written to
// the local sink instead: no retries, no backoff, cannot fail.
type Notifier struct {
	transport   Transport
	batchSize   int
	maxAttempts int
	dryRun      bool
	out         io.Writer
	logger      *slog.Logger

	// initialBackoff is the first retry delay; doubles per attempt up to
	// maxBackoff.
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewNotifier creates a notifier. maxAttempts bounds total delivery attempts
// per batch, including the first.
func NewNotifier(transport Transport, batchSize, maxAttempts int, dryRun bool, out io.Writer, logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize < 1 {
		batchSize = 1
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Notifier{
		transport:      transport,
		batchSize:      batchSize,
		maxAttempts:    maxAttempts,
		dryRun:         dryRun || transport == nil,
		out:            out,
		logger:         logger,
		initialBackoff: 1 * time.Second,
		maxBackoff:     10 * time.Second,
	}
}

// Deliver partitions approved into consecutive batches, preserving order,
// and delivers them one by one. The returned report is observability output;
// it does not feed back into governor state.
func (n *Notifier) Deliver(ctx context.Context, approved []Condition) DeliveryReport {
	var report DeliveryReport
	for start := 0; start < len(approved); start += n.batchSize {
		end := min(start+n.batchSize, len(approved))
		report.Batches = append(report.Batches, n.deliverBatch(ctx, approved[start:end]))
	}
	return report
}

func (n *Notifier) deliverBatch(ctx context.Context, batch []Condition) BatchResult {
	result := BatchResult{Size: len(batch)}

	if n.dryRun {
		n.printBatch(batch)
		result.Attempts = 1
		result.Delivered = true
		return result
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = n.initialBackoff
	b.RandomizationFactor = 0
	b.Multiplier = 2
	b.MaxInterval = n.maxBackoff
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(n.maxAttempts-1)), ctx)

	err := backoff.Retry(func() error {
		result.Attempts++
		if err := n.transport.Send(ctx, batch); err != nil {
			n.logger.Warn("Batch delivery attempt failed",
				"attempt", result.Attempts, "size", len(batch), "error", err)
			return err
		}
		return nil
	}, policy)

	if err != nil {
		// Exhausted retries: report and move on, never escalate.
		result.Err = err.Error()
		n.logger.Error("Batch delivery failed after retries",
			"attempts", result.Attempts, "size", len(batch), "error", err)
		return result
	}
	result.Delivered = true
	return result
}

func (n *Notifier) printBatch(batch []Condition) {
	if n.out == nil {
		return
	}
	for _, c := range batch {
		title := c.Player
		if c.TeamPos != "" {
			title = fmt.Sprintf("%s (%s)", c.Player, c.TeamPos)
		}
		fmt.Fprintf(n.out, "[DRY_RUN] %s\nKind: %s\nΔ: %d (rate %.2f/min)\n",
			title, c.Kind, c.Delta, c.Rate)
	}
}
