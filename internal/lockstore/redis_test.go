package lockstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb), mr
}

func TestRedisStoreAcquireSetsHolderAndTTL(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	ok, err := s.Acquire(ctx, "lock:seat:1:10", "User1", 600*time.Second)
	if err != nil || !ok {
		t.Fatalf("acquire: ok=%v err=%v", ok, err)
	}
	if got, _ := mr.Get("lock:seat:1:10"); got != "User1" {
		t.Fatalf("value = %q, want User1", got)
	}
	if ttl := mr.TTL("lock:seat:1:10"); ttl != 600*time.Second {
		t.Fatalf("ttl = %s, want 600s", ttl)
	}

	ok, err = s.Acquire(ctx, "lock:seat:1:10", "User2", 600*time.Second)
	if err != nil || ok {
		t.Fatalf("second acquire: ok=%v err=%v", ok, err)
	}
}

func TestRedisStorePeek(t *testing.T) {
	s, _ := newTestRedisStore(t)
	ctx := context.Background()

	if _, found, err := s.Peek(ctx, "missing"); err != nil || found {
		t.Fatalf("peek missing: found=%v err=%v", found, err)
	}
	s.Acquire(ctx, "k", "alice", time.Minute)
	if holder, found, err := s.Peek(ctx, "k"); err != nil || !found || holder != "alice" {
		t.Fatalf("peek = %q %v %v", holder, found, err)
	}
}

func TestRedisStoreExpiry(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	s.Acquire(ctx, "k", "alice", 10*time.Second)
	mr.FastForward(11 * time.Second)
	if ok, _ := s.Acquire(ctx, "k", "bob", 10*time.Second); !ok {
		t.Fatal("expired lock should be reclaimable")
	}
}

func TestRedisStoreReleaseIsOwnerGuarded(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()

	s.Acquire(ctx, "k", "bob", time.Minute)
	if err := s.Release(ctx, "k", "alice"); err != nil {
		t.Fatal(err)
	}
	if !mr.Exists("k") {
		t.Fatal("release by non-holder deleted the lock")
	}
	if err := s.Release(ctx, "k", "bob"); err != nil {
		t.Fatal(err)
	}
	if mr.Exists("k") {
		t.Fatal("release by holder kept the lock")
	}
	// releasing an absent key is a no-op
	if err := s.Release(ctx, "k", "bob"); err != nil {
		t.Fatal(err)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	s, mr := newTestRedisStore(t)
	mr.Close()

	_, err := s.Acquire(context.Background(), "k", "alice", time.Minute)
	if !errors.Is(err, ErrLockStoreUnavailable) {
		t.Fatalf("err = %v, want ErrLockStoreUnavailable", err)
	}
}

func TestRedisStorePeekManySingleRoundTrip(t *testing.T) {
	s, mr := newTestRedisStore(t)
	ctx := context.Background()
	s.Acquire(ctx, "lock:seat:1:2", "alice", time.Minute)
	s.Acquire(ctx, "lock:seat:1:4", "bob", time.Minute)

	keys := make([]string, 0, 100)
	for i := 1; i <= 100; i++ {
		keys = append(keys, fmt.Sprintf("lock:seat:1:%d", i))
	}
	before := mr.CommandCount()
	held, err := s.PeekMany(ctx, keys)
	if err != nil {
		t.Fatalf("peek many: %v", err)
	}
	if n := mr.CommandCount() - before; n != 1 {
		t.Fatalf("expected 1 command for 100 keys, got %d", n)
	}
	if len(held) != 2 || held["lock:seat:1:2"] != "alice" || held["lock:seat:1:4"] != "bob" {
		t.Fatalf("held = %v", held)
	}

	if held, err := s.PeekMany(ctx, nil); err != nil || len(held) != 0 {
		t.Fatalf("empty peek: %v %v", held, err)
	}
	mr.Close()
	if _, err := s.PeekMany(ctx, keys); !errors.Is(err, ErrLockStoreUnavailable) {
		t.Fatalf("err = %v, want ErrLockStoreUnavailable", err)
	}
}
