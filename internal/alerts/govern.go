package alerts

import "time"

// Governor applies flood control to the raw conditions of one cycle: a
// per-player daily cap followed by a per-iteration cap. Counters use the
// process-local wall-clock date and roll over lazily — there is no scheduled
// reset. Not safe for concurrent use; the poll loop is the sole mutator.
type Governor struct {
	maxPerPlayer int
	maxPerCycle  int
	counters     map[string]*dayCounter
}

type dayCounter struct {
	count int
	day   string // YYYY-MM-DD
}

// NewGovernor creates a governor with the given caps.
func NewGovernor(maxPerPlayer, maxPerCycle int) *Governor {
	return &Governor{
		maxPerPlayer: maxPerPlayer,
		maxPerCycle:  maxPerCycle,
		counters:     make(map[string]*dayCounter),
	}
}

// Filter returns the approved subset of conds, in their original order.
//
// The per-player daily cap is applied first: a condition from a player whose
// counter has reached the cap for day is dropped without touching the
// counter; otherwise the counter is incremented and the condition kept. The
// surviving sequence is then truncated to the per-iteration cap — a stable
// prefix, no priority reordering. Conditions beyond the cap are suppressed
// for this cycle, not deferred. Once a condition is counted against a
// player's daily budget it stays counted even if iteration-capped.
func (g *Governor) Filter(conds []Condition, day time.Time) []Condition {
	key := day.Format("2006-01-02")

	approved := make([]Condition, 0, len(conds))
	for _, c := range conds {
		ctr := g.counters[c.Player]
		if ctr == nil || ctr.day != key {
			ctr = &dayCounter{day: key}
			g.counters[c.Player] = ctr
		}
		if ctr.count >= g.maxPerPlayer {
			continue
		}
		ctr.count++
		approved = append(approved, c)
	}

	if len(approved) > g.maxPerCycle {
		approved = approved[:g.maxPerCycle]
	}
	return approved
}

// Count reports a player's alert count for day. Zero for unknown players or
// counters from a previous day.
func (g *Governor) Count(player string, day time.Time) int {
	ctr := g.counters[player]
	if ctr == nil || ctr.day != day.Format("2006-01-02") {
		return 0
	}
	return ctr.count
}
