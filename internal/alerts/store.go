package alerts

// Store owns one bounded history per player ever seen in the process
// lifetime. All state is in-memory and discarded on exit — trend continuity
// is deliberately lost across restarts to keep the watcher stateless.
//
// Not safe for concurrent use; the poll loop is the sole mutator.
type Store struct {
	smoothingN int
	histories  map[string]*history
}

// history is a bounded deque of a player's most recent observations, oldest
// first. Length never exceeds the smoothing window.
type history struct {
	obs []Observation
}

// NewStore creates an empty snapshot store with the given smoothing window.
func NewStore(smoothingN int) *Store {
	if smoothingN < 1 {
		smoothingN = 1
	}
	return &Store{
		smoothingN: smoothingN,
		histories:  make(map[string]*history),
	}
}

// Update appends obs to the player's history and returns a copy of the
// window as it existed before the append — empty for a first-ever sighting.
// When the append exceeds the smoothing window the oldest entry is evicted.
func (s *Store) Update(obs Observation) []Observation {
	h := s.histories[obs.Player]
	if h == nil {
		h = &history{obs: make([]Observation, 0, s.smoothingN)}
		s.histories[obs.Player] = h
	}

	previous := make([]Observation, len(h.obs))
	copy(previous, h.obs)

	h.obs = append(h.obs, obs)
	if len(h.obs) > s.smoothingN {
		h.obs = h.obs[1:]
	}
	return previous
}

// Players returns the number of distinct players tracked so far.
func (s *Store) Players() int {
	return len(s.histories)
}
