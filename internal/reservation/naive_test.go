package reservation_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/seat-lock-reservation/internal/repository"
	"github.com/iliyamo/seat-lock-reservation/internal/reservation"
)

func TestNaiveConflictWhenAlreadyBooked(t *testing.T) {
	store := repository.NewMemoryBookingStore()
	n := reservation.NewNaive(store, time.Millisecond)
	ctx := context.Background()

	if _, err := n.Reserve(ctx, reservation.Request{RequesterID: "a", ShowID: 1, SeatIDs: []uint64{9}}); err != nil {
		t.Fatal(err)
	}
	_, err := n.Reserve(ctx, reservation.Request{RequesterID: "b", ShowID: 1, SeatIDs: []uint64{9}})
	if k := reservation.KindOf(err); k != reservation.KindConflict {
		t.Fatalf("kind = %q, want CONFLICT", k)
	}
}

func TestNaiveRejectsInvalidInput(t *testing.T) {
	store := repository.NewMemoryBookingStore()
	n := reservation.NewNaive(store, time.Millisecond)
	_, err := n.Reserve(context.Background(), reservation.Request{RequesterID: "a", ShowID: 1, SeatIDs: []uint64{2, 2}})
	if k := reservation.KindOf(err); k != reservation.KindInvalidRequest {
		t.Fatalf("kind = %q, want INVALID_REQUEST", k)
	}
}

func TestNaiveCancelledDuringDelay(t *testing.T) {
	store := repository.NewMemoryBookingStore()
	n := reservation.NewNaive(store, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := n.Reserve(ctx, reservation.Request{RequesterID: "a", ShowID: 1, SeatIDs: []uint64{1}})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if c := store.ConfirmedCount(1, 1); c != 0 {
		t.Fatal("aborted naive call wrote a booking")
	}
}

// The read and the write are separated by the delay, so concurrent
// callers that all read before the first write all succeed.
func TestNaiveDoubleBooksUnderConcurrency(t *testing.T) {
	const callers = 20
	for run := 0; run < 3; run++ {
		store := repository.NewMemoryBookingStore()
		n := reservation.NewNaive(store, 50*time.Millisecond)

		var wg sync.WaitGroup
		start := make(chan struct{})
		errs := make([]error, callers)
		for i := 0; i < callers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				_, errs[i] = n.Reserve(context.Background(), reservation.Request{
					RequesterID: fmt.Sprintf("sim-user-%d", i),
					ShowID:      1,
					SeatIDs:     []uint64{60},
				})
			}(i)
		}
		close(start)
		wg.Wait()

		successes := 0
		for _, err := range errs {
			if err == nil {
				successes++
			}
		}
		if successes > 1 && store.ConfirmedCount(1, 60) == successes {
			return
		}
	}
	t.Fatal("naive path never over-admitted; the race window is not observable")
}
