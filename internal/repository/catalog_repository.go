package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/seat-lock-reservation/internal/model"
)

// CatalogRepo reads shows and the seats of their screens.  Catalog
// management itself happens outside this service.
type CatalogRepo struct {
	db *sql.DB
}

// NewCatalogRepo constructs a CatalogRepo with the given DB handle.
func NewCatalogRepo(db *sql.DB) *CatalogRepo { return &CatalogRepo{db: db} }

// GetShow retrieves a show with its movie title.
func (r *CatalogRepo) GetShow(ctx context.Context, showID uint64) (*model.Show, error) {
	const q = `SELECT s.id, s.movie_id, s.screen_id, m.title, s.starts_at
	           FROM shows s
	           JOIN movies m ON m.id = s.movie_id
	           WHERE s.id = ?`
	var s model.Show
	err := r.db.QueryRowContext(ctx, q, showID).Scan(&s.ID, &s.MovieID, &s.ScreenID, &s.MovieTitle, &s.StartsAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrShowNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSeatsByShow retrieves the seats of the show's screen ordered by
// row_label then seat_number.
func (r *CatalogRepo) ListSeatsByShow(ctx context.Context, showID uint64) ([]model.Seat, error) {
	const q = `SELECT st.id, st.screen_id, st.row_label, st.seat_number, st.seat_type, st.price_modifier
	           FROM seats st
	           JOIN shows s ON s.screen_id = st.screen_id
	           WHERE s.id = ?
	           ORDER BY st.row_label, st.seat_number`
	rows, err := r.db.QueryContext(ctx, q, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var seats []model.Seat
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.ScreenID, &s.RowLabel, &s.SeatNumber, &s.SeatType, &s.PriceModifier); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return seats, nil
}

// DefaultSeatLayout builds the standard 10x10 screen: rows A-J, seats
// 1-10, row A VIP at twice the base price.  IDs are left zero.
func DefaultSeatLayout(screenID uint64) []model.Seat {
	seats := make([]model.Seat, 0, 100)
	for r := 0; r < 10; r++ {
		row := fmt.Sprintf("%c", 'A'+r)
		for n := uint32(1); n <= 10; n++ {
			s := model.Seat{
				ScreenID:      screenID,
				RowLabel:      row,
				SeatNumber:    n,
				SeatType:      model.SeatTypeStandard,
				PriceModifier: 1.0,
			}
			if row == "A" {
				s.SeatType = model.SeatTypeVIP
				s.PriceModifier = 2.0
			}
			seats = append(seats, s)
		}
	}
	return seats
}
