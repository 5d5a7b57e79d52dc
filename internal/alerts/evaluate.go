package alerts

import (
	"time"

	"github.com/albapepper/buzzwatch/internal/config"
)

// Evaluator decides whether a single player's current reading, compared
// against a smoothed baseline from its previous window, constitutes an alert
// condition.
type Evaluator struct {
	AddRateThreshold  float64
	DropRateThreshold float64
	MinAbsAddDelta    int
	MinAbsDropDelta   int
	BaselinePolicy    string
}

// NewEvaluator builds an evaluator from loaded configuration.
func NewEvaluator(cfg *config.Config) *Evaluator {
	return &Evaluator{
		AddRateThreshold:  cfg.AddRateThreshold,
		DropRateThreshold: cfg.DropRateThreshold,
		MinAbsAddDelta:    cfg.MinAbsAddDelta,
		MinAbsDropDelta:   cfg.MinAbsDropDelta,
		BaselinePolicy:    cfg.BaselinePolicy,
	}
}

// Evaluate returns zero, one, or two conditions (add and drop are
// independent) for the current observation. An empty previous window means
// a first-ever sighting: there is no baseline, so nothing fires.
//
// The rate test is strict (>) while the absolute-delta test is inclusive
// (>=); both must hold. Rate alone false-positives on small absolute counts,
// absolute delta alone false-positives on players with naturally large
// churn. Negative deltas never fire.
func (e *Evaluator) Evaluate(current Observation, previous []Observation) []Condition {
	if len(previous) == 0 {
		return nil
	}

	baseline := previous[0]
	if e.BaselinePolicy == config.BaselinePrevious {
		baseline = previous[len(previous)-1]
	}

	elapsed := minutesBetween(current.ObservedAt, baseline.ObservedAt)
	addDelta := current.Adds - baseline.Adds
	dropDelta := current.Drops - baseline.Drops
	addRate := float64(addDelta) / elapsed
	dropRate := float64(dropDelta) / elapsed

	var conds []Condition
	if addRate > e.AddRateThreshold && addDelta >= e.MinAbsAddDelta {
		conds = append(conds, Condition{
			Player:  current.Player,
			TeamPos: current.TeamPos,
			Kind:    KindAdd,
			Rate:    addRate,
			Delta:   addDelta,
			Window:  previous,
		})
	}
	if dropRate > e.DropRateThreshold && dropDelta >= e.MinAbsDropDelta {
		conds = append(conds, Condition{
			Player:  current.Player,
			TeamPos: current.TeamPos,
			Kind:    KindDrop,
			Rate:    dropRate,
			Delta:   dropDelta,
			Window:  previous,
		})
	}
	return conds
}

// minutesBetween returns the elapsed minutes from then to now, floored at a
// small positive epsilon so back-to-back cycles never divide by zero.
func minutesBetween(now, then time.Time) float64 {
	m := now.Sub(then).Minutes()
	if m < elapsedFloorMinutes {
		return elapsedFloorMinutes
	}
	return m
}
