package cli

import (
	"fmt"
	"io"
	"math/rand"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/seat-lock-reservation/internal/lockstore"
	"github.com/iliyamo/seat-lock-reservation/internal/payment"
	"github.com/iliyamo/seat-lock-reservation/internal/repository"
	"github.com/iliyamo/seat-lock-reservation/internal/reservation"
	"github.com/iliyamo/seat-lock-reservation/internal/simulation"
)

func NewSimulateCmd() *cobra.Command {
	var (
		path         string
		seatID       uint64
		showID       uint64
		requests     int
		baseURL      string
		local        bool
		confirmDelay time.Duration
		naiveDelay   time.Duration
	)

	c := &cobra.Command{
		Use:   "simulate",
		Short: "Fire concurrent bookings at one seat and report who won",
		RunE: func(cmd *cobra.Command, args []string) error {
			p := simulation.Path(path)
			if p != simulation.PathNaive && p != simulation.PathSecure {
				return fmt.Errorf("invalid --path %q (want naive or secure)", path)
			}
			if seatID == 0 {
				seatID = uint64(50 + rand.Intn(50))
			}
			sc := simulation.Scenario{Path: p, ShowID: showID, SeatID: seatID, Requests: requests}

			var target reservation.Reserver
			if local {
				target = localReserver(p, confirmDelay, naiveDelay)
			} else {
				target = simulation.NewHTTPReserver(baseURL, p)
			}
			rep := simulation.Run(cmd.Context(), target, sc)
			printReport(cmd.OutOrStdout(), rep)
			return nil
		},
	}

	f := c.Flags()
	f.StringVar(&path, "path", string(simulation.PathSecure), "reservation path: naive or secure")
	f.Uint64Var(&seatID, "seat", 0, "target seat id (random 50-99 when 0)")
	f.Uint64Var(&showID, "show", 1, "show id")
	f.IntVar(&requests, "requests", simulation.DefaultRequests, "number of concurrent requesters")
	f.StringVar(&baseURL, "url", "http://localhost:8080", "server base URL")
	f.BoolVar(&local, "local", false, "run against in-process memory stores instead of a server")
	f.DurationVar(&confirmDelay, "confirm-delay", payment.DefaultDelay, "simulated payment latency (--local only)")
	f.DurationVar(&naiveDelay, "naive-delay", reservation.DefaultNaiveDelay, "naive read-to-write gap (--local only)")
	return c
}

func localReserver(p simulation.Path, confirmDelay, naiveDelay time.Duration) reservation.Reserver {
	bookings := repository.NewMemoryBookingStoreFor(repository.NewMemoryCatalog())
	if p == simulation.PathNaive {
		return reservation.NewNaive(bookings, naiveDelay)
	}
	return reservation.NewController(lockstore.NewMemoryStore(), bookings, payment.Simulated{Delay: confirmDelay})
}

func printReport(w io.Writer, rep simulation.Report) {
	fmt.Fprintf(w, "Scenario: %s | Show: %d | Target: Seat %d | Total Requests: %d\n", rep.Path, rep.ShowID, rep.SeatID, rep.Requests)
	fmt.Fprintf(w, "Successes: %d\n", rep.Successes)

	kinds := make([]string, 0, len(rep.Failures))
	for k := range rep.Failures {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Fprintf(w, "Failed %-20s %d\n", k+":", rep.Failures[reservation.Kind(k)])
	}
	fmt.Fprintln(w, rep.Summary)
}
