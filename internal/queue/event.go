// Package queue carries BookingConfirmed events over RabbitMQ: the
// publisher used by the reservation controller after a commit and the
// background consumer that appends each event to a booking log.
package queue

import (
	"time"

	"github.com/iliyamo/seat-lock-reservation/internal/model"
)

// BookingConfirmedEvent is published once per committed booking.  It
// carries enough to log or notify without querying the booking store.
type BookingConfirmedEvent struct {
	BookingID   uint64   `json:"booking_id"`
	RequesterID string   `json:"requester_id"`
	ShowID      uint64   `json:"show_id"`
	SeatIDs     []uint64 `json:"seat_ids"`
	Status      string   `json:"status"`
	ConfirmedAt string   `json:"confirmed_at"`
}

// NewBookingConfirmedEvent builds the event for a committed booking.
func NewBookingConfirmedEvent(b model.Booking) BookingConfirmedEvent {
	at := b.CreatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	return BookingConfirmedEvent{
		BookingID:   b.ID,
		RequesterID: b.RequesterID,
		ShowID:      b.ShowID,
		SeatIDs:     b.SeatIDs,
		Status:      string(b.Status),
		ConfirmedAt: at.UTC().Format(time.RFC3339),
	}
}
