package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/seat-lock-reservation/internal/model"
	"github.com/iliyamo/seat-lock-reservation/internal/repository"
)

// demo catalog inserted by Seed
var (
	demoMovie   = model.Movie{Title: "Avengers: Secret Wars", Description: "Demo feature", DurationMin: 150, Genre: "Action"}
	demoTheater = model.Theater{Name: "Grand Cinema", Location: "Downtown"}
	demoScreen  = model.Screen{Number: 1}
)

// Seed inserts one movie, theater, screen with 100 seats and a show
// tonight at 20:00 UTC.  It does nothing when a movie already exists and
// returns the id of the first show in that case.
func Seed(ctx context.Context, db *sql.DB) (showID uint64, err error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count movies: %w", err)
	}
	if n > 0 {
		err := db.QueryRowContext(ctx, `SELECT id FROM shows ORDER BY id LIMIT 1`).Scan(&showID)
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return showID, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	movieID, err := insertID(ctx, tx,
		`INSERT INTO movies (title, description, duration_min, genre) VALUES (?, ?, ?, ?)`,
		demoMovie.Title, demoMovie.Description, demoMovie.DurationMin, demoMovie.Genre)
	if err != nil {
		return 0, fmt.Errorf("insert movie: %w", err)
	}
	theaterID, err := insertID(ctx, tx,
		`INSERT INTO theaters (name, location) VALUES (?, ?)`,
		demoTheater.Name, demoTheater.Location)
	if err != nil {
		return 0, fmt.Errorf("insert theater: %w", err)
	}
	screenID, err := insertID(ctx, tx,
		`INSERT INTO screens (theater_id, number) VALUES (?, ?)`,
		theaterID, demoScreen.Number)
	if err != nil {
		return 0, fmt.Errorf("insert screen: %w", err)
	}

	layout := repository.DefaultSeatLayout(screenID)
	var sb strings.Builder
	sb.WriteString(`INSERT INTO seats (screen_id, row_label, seat_number, seat_type, price_modifier) VALUES `)
	args := make([]interface{}, 0, len(layout)*5)
	for i, s := range layout {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?, ?)")
		args = append(args, s.ScreenID, s.RowLabel, s.SeatNumber, s.SeatType, s.PriceModifier)
	}
	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		return 0, fmt.Errorf("insert seats: %w", err)
	}

	now := time.Now().UTC()
	startsAt := time.Date(now.Year(), now.Month(), now.Day(), 20, 0, 0, 0, time.UTC)
	showID, err = insertID(ctx, tx,
		`INSERT INTO shows (movie_id, screen_id, starts_at) VALUES (?, ?, ?)`,
		movieID, screenID, startsAt)
	if err != nil {
		return 0, fmt.Errorf("insert show: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return showID, nil
}

func insertID(ctx context.Context, tx *sql.Tx, q string, args ...interface{}) (uint64, error) {
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}
