package lockstore

import (
	"context"
	"testing"
	"time"
)

// rawLen counts stored entries, expired ones included.
func rawLen(s *MemoryStore) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.locks)
}

func TestStartSweeperPurgesExpired(t *testing.T) {
	s, clk := newTestMemoryStore()
	ctx := context.Background()
	s.Acquire(ctx, "lock:seat:1:1", "alice", time.Second)
	s.Acquire(ctx, "lock:seat:1:2", "bob", time.Hour)
	clk.advance(2 * time.Second)
	if rawLen(s) != 2 {
		t.Fatalf("expired entry should still be stored before a sweep, got %d", rawLen(s))
	}

	sched, err := StartSweeper(s, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("start sweeper: %v", err)
	}
	defer sched.Shutdown()

	deadline := time.Now().Add(2 * time.Second)
	for rawLen(s) != 1 {
		if time.Now().After(deadline) {
			t.Fatalf("sweeper did not purge the expired lock, %d entries left", rawLen(s))
		}
		time.Sleep(10 * time.Millisecond)
	}
	if holder, ok, _ := s.Peek(ctx, "lock:seat:1:2"); !ok || holder != "bob" {
		t.Fatalf("live lock must survive the sweep, got %q %v", holder, ok)
	}
}

func TestStartSweeperRejectsBadInterval(t *testing.T) {
	if _, err := StartSweeper(NewMemoryStore(), 0); err == nil {
		t.Fatal("expected error for a zero interval")
	}
}
