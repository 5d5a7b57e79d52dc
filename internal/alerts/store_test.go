package alerts

import (
	"testing"
	"time"
)

func obsAt(player string, adds, drops int, minute int) Observation {
	base := time.Date(2025, 9, 3, 12, 0, 0, 0, time.UTC)
	return Observation{
		Player:     player,
		Adds:       adds,
		Drops:      drops,
		ObservedAt: base.Add(time.Duration(minute) * time.Minute),
	}
}

func TestStoreFirstSightingReturnsEmptyWindow(t *testing.T) {
	s := NewStore(3)

	previous := s.Update(obsAt("Jane Doe", 10, 0, 0))
	if len(previous) != 0 {
		t.Fatalf("expected empty previous window for new player, got %d entries", len(previous))
	}
	if s.Players() != 1 {
		t.Fatalf("expected 1 tracked player, got %d", s.Players())
	}
}

func TestStoreReturnsWindowBeforeAppend(t *testing.T) {
	s := NewStore(3)
	s.Update(obsAt("Jane Doe", 10, 0, 0))
	s.Update(obsAt("Jane Doe", 12, 0, 5))

	previous := s.Update(obsAt("Jane Doe", 40, 0, 10))
	if len(previous) != 2 {
		t.Fatalf("expected 2 previous observations, got %d", len(previous))
	}
	if previous[0].Adds != 10 || previous[1].Adds != 12 {
		t.Fatalf("previous window out of order: %+v", previous)
	}
}

func TestStoreEvictsOldestBeyondWindow(t *testing.T) {
	s := NewStore(3)
	for i := 0; i < 5; i++ {
		s.Update(obsAt("Jane Doe", 10+i, 0, i))
	}

	previous := s.Update(obsAt("Jane Doe", 99, 0, 5))
	if len(previous) != 3 {
		t.Fatalf("window length %d exceeds smoothing cap 3", len(previous))
	}
	// Observations 0 and 1 must have been evicted; oldest retained is 12.
	if previous[0].Adds != 12 {
		t.Fatalf("expected oldest retained adds=12, got %d", previous[0].Adds)
	}
}

func TestStoreReturnedWindowIsACopy(t *testing.T) {
	s := NewStore(3)
	s.Update(obsAt("Jane Doe", 10, 0, 0))

	previous := s.Update(obsAt("Jane Doe", 12, 0, 5))
	previous[0].Adds = 999

	window := s.Update(obsAt("Jane Doe", 14, 0, 10))
	if window[0].Adds != 10 {
		t.Fatalf("store history mutated through returned window: adds=%d", window[0].Adds)
	}
}

func TestStoreTracksPlayersIndependently(t *testing.T) {
	s := NewStore(2)
	s.Update(obsAt("Jane Doe", 10, 0, 0))
	s.Update(obsAt("John Roe", 50, 5, 0))

	previous := s.Update(obsAt("Jane Doe", 12, 0, 5))
	if len(previous) != 1 || previous[0].Adds != 10 {
		t.Fatalf("histories bled across players: %+v", previous)
	}
	if s.Players() != 2 {
		t.Fatalf("expected 2 tracked players, got %d", s.Players())
	}
}
