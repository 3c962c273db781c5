package reservation

import (
	"fmt"
	"slices"
)

// Request is one reservation attempt.  It lives only for the duration
// of the call.
type Request struct {
	RequesterID string
	ShowID      uint64
	SeatIDs     []uint64
	// FailureInjected makes the confirmation step fail.  Test only.
	FailureInjected bool
}

// validate rejects requests the controller must not act on and returns
// the seat ids in ascending order.  The caller's slice is not modified.
func (r Request) validate() ([]uint64, *Error) {
	if r.RequesterID == "" {
		return nil, invalidRequest("requester id is required")
	}
	if r.ShowID == 0 {
		return nil, invalidRequest("show id is required")
	}
	if len(r.SeatIDs) == 0 {
		return nil, invalidRequest("seat ids are required")
	}
	seats := slices.Clone(r.SeatIDs)
	slices.Sort(seats)
	for i, id := range seats {
		if id == 0 {
			return nil, invalidRequest("seat id must be positive")
		}
		if i > 0 && seats[i-1] == id {
			return nil, invalidRequest(fmt.Sprintf("duplicate seat id %d", id))
		}
	}
	return seats, nil
}

// LockKey is the lock store key guarding one seat of one show.
func LockKey(showID, seatID uint64) string {
	return fmt.Sprintf("lock:seat:%d:%d", showID, seatID)
}
