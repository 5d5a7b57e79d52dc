package alerts

import (
	"testing"
	"time"

	"github.com/albapepper/buzzwatch/internal/config"
)

func testEvaluator() *Evaluator {
	return &Evaluator{
		AddRateThreshold:  2.5,
		DropRateThreshold: 2.5,
		MinAbsAddDelta:    15,
		MinAbsDropDelta:   15,
		BaselinePolicy:    config.BaselineOldest,
	}
}

func TestEvaluateNoBaselineNoConditions(t *testing.T) {
	e := testEvaluator()
	conds := e.Evaluate(obsAt("Jane Doe", 40, 0, 10), nil)
	if len(conds) != 0 {
		t.Fatalf("first sighting must not fire, got %d conditions", len(conds))
	}
}

func TestEvaluateOldestBaselineScenario(t *testing.T) {
	// History [(adds=10, t=0), (adds=12, t=5)], new observation adds=40 at
	// t=10. Baseline = oldest: elapsed 10 min, delta 30, rate 3.0/min.
	e := testEvaluator()
	previous := []Observation{
		obsAt("Jane Doe", 10, 0, 0),
		obsAt("Jane Doe", 12, 0, 5),
	}

	conds := e.Evaluate(obsAt("Jane Doe", 40, 0, 10), previous)
	if len(conds) != 1 {
		t.Fatalf("expected 1 condition, got %d", len(conds))
	}
	c := conds[0]
	if c.Kind != KindAdd {
		t.Fatalf("expected add condition, got %q", c.Kind)
	}
	if c.Delta != 30 {
		t.Fatalf("expected delta 30, got %d", c.Delta)
	}
	if c.Rate < 2.999 || c.Rate > 3.001 {
		t.Fatalf("expected rate 3.0/min, got %f", c.Rate)
	}
}

func TestEvaluateMinAbsDeltaBlocks(t *testing.T) {
	// Same scenario but min abs delta 35: rate holds (3.0 > 2.5) yet delta
	// fails (30 < 35).
	e := testEvaluator()
	e.MinAbsAddDelta = 35
	previous := []Observation{
		obsAt("Jane Doe", 10, 0, 0),
		obsAt("Jane Doe", 12, 0, 5),
	}

	conds := e.Evaluate(obsAt("Jane Doe", 40, 0, 10), previous)
	if len(conds) != 0 {
		t.Fatalf("delta below minimum must not fire, got %d conditions", len(conds))
	}
}

func TestEvaluateRateStrictlyGreater(t *testing.T) {
	// Delta 15 over 6 minutes = exactly 2.5/min. Strict > means no alert.
	e := testEvaluator()
	previous := []Observation{obsAt("Jane Doe", 10, 0, 0)}

	conds := e.Evaluate(obsAt("Jane Doe", 25, 0, 6), previous)
	if len(conds) != 0 {
		t.Fatalf("rate equal to threshold must not fire, got %d conditions", len(conds))
	}
}

func TestEvaluateNegativeDeltasNeverFire(t *testing.T) {
	// Source-data correction: both counts went down. Even with zero
	// thresholds the strict > rate test keeps negative deltas silent.
	e := testEvaluator()
	e.AddRateThreshold = 0
	e.DropRateThreshold = 0
	e.MinAbsAddDelta = 0
	e.MinAbsDropDelta = 0
	previous := []Observation{obsAt("Jane Doe", 500, 500, 0)}

	conds := e.Evaluate(obsAt("Jane Doe", 100, 100, 10), previous)
	if len(conds) != 0 {
		t.Fatalf("negative deltas fired %d conditions", len(conds))
	}
}

func TestEvaluateAddAndDropIndependent(t *testing.T) {
	e := testEvaluator()
	previous := []Observation{obsAt("Jane Doe", 10, 10, 0)}

	conds := e.Evaluate(obsAt("Jane Doe", 60, 60, 10), previous)
	if len(conds) != 2 {
		t.Fatalf("expected add and drop conditions, got %d", len(conds))
	}
	if conds[0].Kind != KindAdd || conds[1].Kind != KindDrop {
		t.Fatalf("unexpected kinds: %q, %q", conds[0].Kind, conds[1].Kind)
	}
}

func TestEvaluatePreviousBaselinePolicy(t *testing.T) {
	e := testEvaluator()
	e.BaselinePolicy = config.BaselinePrevious
	previous := []Observation{
		obsAt("Jane Doe", 10, 0, 0),
		obsAt("Jane Doe", 35, 0, 5),
	}

	// Against the most recent sample the delta is only 5 — no alert. The
	// oldest-in-window policy would have seen delta 30 and fired.
	conds := e.Evaluate(obsAt("Jane Doe", 40, 0, 10), previous)
	if len(conds) != 0 {
		t.Fatalf("previous-baseline policy fired unexpectedly: %+v", conds)
	}
}

func TestEvaluateZeroElapsedUsesEpsilonFloor(t *testing.T) {
	e := testEvaluator()
	now := time.Date(2025, 9, 3, 12, 0, 0, 0, time.UTC)
	previous := []Observation{{Player: "Jane Doe", Adds: 10, ObservedAt: now}}

	// Same timestamp: elapsed floors at epsilon instead of dividing by zero,
	// so any qualifying delta fires with an enormous rate.
	conds := e.Evaluate(Observation{Player: "Jane Doe", Adds: 30, ObservedAt: now}, previous)
	if len(conds) != 1 {
		t.Fatalf("expected 1 condition at epsilon elapsed, got %d", len(conds))
	}
	if conds[0].Rate <= 0 {
		t.Fatalf("expected positive rate, got %f", conds[0].Rate)
	}
}
