// Package simulation fires concurrent reservation attempts at one seat
// and tabulates the outcomes.  It produces the evidence that the naive
// path over-admits and the secure path admits exactly one requester.
package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/seat-lock-reservation/internal/reservation"
)

// Path selects the reservation implementation under test.
type Path string

const (
	PathNaive  Path = "naive"
	PathSecure Path = "secure"
)

// DefaultRequests matches the classic 20-user contention run.
const DefaultRequests = 20

// KindThrottled tabulates attempts the server rejected before they
// reached a reservation path.
const KindThrottled reservation.Kind = "RATE_LIMITED"

// Scenario describes one simulation run.
type Scenario struct {
	Path     Path   `json:"scenario"`
	ShowID   uint64 `json:"show_id"`
	SeatID   uint64 `json:"target_seat"`
	Requests int    `json:"total_requests"`
}

// Outcome is the result of one simulated requester.
type Outcome struct {
	RequesterID string           `json:"requester_id"`
	Success     bool             `json:"success"`
	BookingID   uint64           `json:"booking_id,omitempty"`
	Error       reservation.Kind `json:"error,omitempty"`
	Message     string           `json:"message,omitempty"`
	Elapsed     time.Duration    `json:"elapsed_ns"`
}

// Report aggregates a run.
type Report struct {
	Scenario
	Successes int                      `json:"successes"`
	Throttled int                      `json:"throttled"`
	Failures  map[reservation.Kind]int `json:"failures"`
	Summary   string                   `json:"summary"`
	Results   []Outcome                `json:"results"`
}

// Run starts sc.Requests goroutines that call r.Reserve for the same
// seat, releases them together and waits for all of them.  Calls are
// never serialized by the driver itself.
func Run(ctx context.Context, r reservation.Reserver, sc Scenario) Report {
	if sc.Requests <= 0 {
		sc.Requests = DefaultRequests
	}
	runID := uuid.NewString()[:8]
	results := make([]Outcome, sc.Requests)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < sc.Requests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			req := reservation.Request{
				RequesterID: fmt.Sprintf("sim-user-%s-%d", runID, i),
				ShowID:      sc.ShowID,
				SeatIDs:     []uint64{sc.SeatID},
			}
			<-start
			began := time.Now()
			res, err := r.Reserve(ctx, req)
			out := Outcome{RequesterID: req.RequesterID, Elapsed: time.Since(began)}
			if err != nil {
				out.Error = reservation.KindOf(err)
				if errors.Is(err, ErrThrottled) {
					out.Error = KindThrottled
				}
				out.Message = err.Error()
			} else {
				out.Success = true
				out.BookingID = res.BookingID
			}
			results[i] = out
		}(i)
	}
	close(start)
	wg.Wait()

	return tabulate(sc, results)
}

func tabulate(sc Scenario, results []Outcome) Report {
	rep := Report{Scenario: sc, Failures: map[reservation.Kind]int{}, Results: results}
	for _, o := range results {
		if o.Success {
			rep.Successes++
			continue
		}
		if o.Error == KindThrottled {
			rep.Throttled++
		}
		kind := o.Error
		if kind == "" {
			kind = "UNKNOWN"
		}
		rep.Failures[kind]++
	}
	rep.Summary = summarize(sc, rep.Successes)
	if rep.Throttled > 0 {
		rep.Summary += fmt.Sprintf(" (%d throttled by the rate limiter)", rep.Throttled)
	}
	return rep
}

func summarize(sc Scenario, successes int) string {
	switch sc.Path {
	case PathNaive:
		if successes > 1 {
			return fmt.Sprintf("CRITICAL FAIL: %d users booked seat %d", successes, sc.SeatID)
		}
		return "Lucky pass (try again)"
	default:
		if successes == 1 {
			return fmt.Sprintf("SECURE: only 1 user booked seat %d, %d blocked", sc.SeatID, sc.Requests-1)
		}
		return fmt.Sprintf("Unexpected: %d bookings for seat %d", successes, sc.SeatID)
	}
}
