package lockstore

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartSweeper schedules MemoryStore.Sweep every interval.  Callers
// must Shutdown the returned scheduler.
func StartSweeper(s *MemoryStore, interval time.Duration) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if n := s.Sweep(); n > 0 {
				log.Printf("lockstore: swept %d expired locks", n)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, err
	}
	sched.Start()
	return sched, nil
}
