package repository

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/iliyamo/seat-lock-reservation/internal/model"
)

// MemoryBookingStore is an in-process BookingRepo.  Each method is
// atomic on its own; nothing serializes a read against a later write,
// which is exactly what the naive path needs to race.
type MemoryBookingStore struct {
	mu       sync.Mutex
	nextID   uint64
	bookings map[uint64]model.Booking
	catalog  *MemoryCatalog // nil accepts any show and seat
}

// NewMemoryBookingStore returns an empty store that accepts any seat id.
func NewMemoryBookingStore() *MemoryBookingStore {
	return &MemoryBookingStore{bookings: make(map[uint64]model.Booking)}
}

// NewMemoryBookingStoreFor returns an empty store that rejects shows and
// seats missing from c with ErrUnknownSeat, as the MySQL foreign keys do.
func NewMemoryBookingStoreFor(c *MemoryCatalog) *MemoryBookingStore {
	m := NewMemoryBookingStore()
	m.catalog = c
	return m
}

func (m *MemoryBookingStore) FindConfirmedConflicts(ctx context.Context, showID uint64, seatIDs []uint64) ([]uint64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	want := make(map[uint64]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		want[id] = struct{}{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	found := make(map[uint64]struct{})
	for _, b := range m.bookings {
		if b.ShowID != showID || b.Status != model.BookingConfirmed {
			continue
		}
		for _, sid := range b.SeatIDs {
			if _, ok := want[sid]; ok {
				found[sid] = struct{}{}
			}
		}
	}
	return sortedKeys(found), nil
}

func (m *MemoryBookingStore) CreateConfirmedBooking(ctx context.Context, requesterID string, showID uint64, seatIDs []uint64) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if m.catalog != nil {
		for _, id := range seatIDs {
			if !m.catalog.HasSeat(showID, id) {
				return 0, fmt.Errorf("%w: show %d seat %d", ErrUnknownSeat, showID, id)
			}
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.bookings[m.nextID] = model.Booking{
		ID:          m.nextID,
		RequesterID: requesterID,
		ShowID:      showID,
		Status:      model.BookingConfirmed,
		SeatIDs:     slices.Clone(seatIDs),
		CreatedAt:   time.Now().UTC(),
	}
	return m.nextID, nil
}

func (m *MemoryBookingStore) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	b.SeatIDs = slices.Clone(b.SeatIDs)
	return &b, nil
}

func (m *MemoryBookingStore) BookedSeatIDs(ctx context.Context, showID uint64) ([]uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	found := make(map[uint64]struct{})
	for _, b := range m.bookings {
		if b.ShowID == showID && b.Status == model.BookingConfirmed {
			for _, sid := range b.SeatIDs {
				found[sid] = struct{}{}
			}
		}
	}
	return sortedKeys(found), nil
}

// ConfirmedCount returns how many CONFIRMED bookings claim the seat.
// More than one means the seat was double booked.
func (m *MemoryBookingStore) ConfirmedCount(showID, seatID uint64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.bookings {
		if b.ShowID == showID && b.Status == model.BookingConfirmed && slices.Contains(b.SeatIDs, seatID) {
			n++
		}
	}
	return n
}

func sortedKeys(set map[uint64]struct{}) []uint64 {
	if len(set) == 0 {
		return nil
	}
	out := make([]uint64, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// MemoryCatalog serves a fixed set of shows and seats.
type MemoryCatalog struct {
	shows map[uint64]model.Show
	seats map[uint64][]model.Seat // by screen id
}

// NewMemoryCatalog returns a catalog with one screen laid out by
// DefaultSeatLayout (seat ids 1-100) and one show (id 1) tonight at
// 20:00 UTC.
func NewMemoryCatalog() *MemoryCatalog {
	layout := DefaultSeatLayout(1)
	for i := range layout {
		layout[i].ID = uint64(i + 1)
	}
	now := time.Now().UTC()
	return &MemoryCatalog{
		shows: map[uint64]model.Show{
			1: {
				ID:         1,
				MovieID:    1,
				ScreenID:   1,
				MovieTitle: "Avengers: Secret Wars",
				StartsAt:   time.Date(now.Year(), now.Month(), now.Day(), 20, 0, 0, 0, time.UTC),
			},
		},
		seats: map[uint64][]model.Seat{1: layout},
	}
}

func (c *MemoryCatalog) GetShow(ctx context.Context, showID uint64) (*model.Show, error) {
	s, ok := c.shows[showID]
	if !ok {
		return nil, ErrShowNotFound
	}
	return &s, nil
}

// HasSeat reports whether seatID belongs to the screen of showID.
func (c *MemoryCatalog) HasSeat(showID, seatID uint64) bool {
	s, ok := c.shows[showID]
	if !ok {
		return false
	}
	for _, seat := range c.seats[s.ScreenID] {
		if seat.ID == seatID {
			return true
		}
	}
	return false
}

func (c *MemoryCatalog) ListSeatsByShow(ctx context.Context, showID uint64) ([]model.Seat, error) {
	s, ok := c.shows[showID]
	if !ok {
		return nil, ErrShowNotFound
	}
	return slices.Clone(c.seats[s.ScreenID]), nil
}
