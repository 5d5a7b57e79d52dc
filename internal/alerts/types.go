// Package alerts implements the trend-detection and alert-governance engine:
// the in-memory snapshot store, the smoothed delta/rate evaluation, the
// multi-layer flood control (per-player daily caps, per-iteration caps), and
// batched delivery with bounded retry.
//
// Pipeline per cycle: observations → Store.Update → Evaluator.Evaluate →
// candidate conditions → Governor.Filter → Notifier.Deliver.
package alerts

import "time"

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

// Condition kinds.
const (
	KindAdd  = "add"
	KindDrop = "drop"
)

// elapsedFloorMinutes prevents division by zero when two observations land
// within clock granularity of each other.
const elapsedFloorMinutes = 1e-6

// --------------------------------------------------------------------------
// Types
// --------------------------------------------------------------------------

// Observation is one player's buzz reading at one poll time. Immutable once
// created.
type Observation struct {
	Player     string
	TeamPos    string
	Adds       int
	Drops      int
	ObservedAt time.Time
}

// Condition is a candidate alert produced by the Evaluator and consumed by
// the Governor within the same cycle. Never persisted.
type Condition struct {
	Player  string
	TeamPos string
	Kind    string // KindAdd or KindDrop
	Rate    float64
	Delta   int
	Window  []Observation // observations the baseline was drawn from
}

// BatchResult records the outcome of one delivery batch.
type BatchResult struct {
	Size      int
	Attempts  int
	Delivered bool
	Err       string
}

// DeliveryReport summarizes per-batch delivery outcomes for one cycle. It is
// observability output only and never feeds back into governor state.
type DeliveryReport struct {
	Batches []BatchResult
}

// Delivered returns the number of successfully delivered batches.
func (r DeliveryReport) Delivered() int {
	n := 0
	for _, b := range r.Batches {
		if b.Delivered {
			n++
		}
	}
	return n
}

// Failed returns the number of batches that exhausted their retries.
func (r DeliveryReport) Failed() int {
	return len(r.Batches) - r.Delivered()
}
