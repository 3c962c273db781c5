package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema creates the catalog and booking tables.  booking_seats carries
// show_id so the double-check query can filter without touching shows.
// (show_id, seat_id) is indexed but not unique so the naive path can
// still write a second booking for a taken seat.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS movies (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		duration_min INT UNSIGNED NOT NULL,
		genre VARCHAR(64)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS theaters (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		location VARCHAR(255)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS screens (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		theater_id BIGINT UNSIGNED NOT NULL,
		number INT UNSIGNED NOT NULL,
		FOREIGN KEY (theater_id) REFERENCES theaters(id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS seats (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		screen_id BIGINT UNSIGNED NOT NULL,
		row_label VARCHAR(4) NOT NULL,
		seat_number INT UNSIGNED NOT NULL,
		seat_type VARCHAR(16) NOT NULL DEFAULT 'STANDARD',
		price_modifier DECIMAL(4,2) NOT NULL DEFAULT 1.00,
		UNIQUE KEY uq_seat (screen_id, row_label, seat_number),
		FOREIGN KEY (screen_id) REFERENCES screens(id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS shows (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		movie_id BIGINT UNSIGNED NOT NULL,
		screen_id BIGINT UNSIGNED NOT NULL,
		starts_at DATETIME NOT NULL,
		FOREIGN KEY (movie_id) REFERENCES movies(id),
		FOREIGN KEY (screen_id) REFERENCES screens(id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		requester_id VARCHAR(191) NOT NULL,
		show_id BIGINT UNSIGNED NOT NULL,
		status ENUM('PENDING','CONFIRMED','CANCELLED') NOT NULL DEFAULT 'PENDING',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_bookings_show_status (show_id, status),
		FOREIGN KEY (show_id) REFERENCES shows(id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS booking_seats (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		booking_id BIGINT UNSIGNED NOT NULL,
		show_id BIGINT UNSIGNED NOT NULL,
		seat_id BIGINT UNSIGNED NOT NULL,
		KEY idx_booking_seats_show_seat (show_id, seat_id),
		FOREIGN KEY (booking_id) REFERENCES bookings(id) ON DELETE CASCADE,
		FOREIGN KEY (seat_id) REFERENCES seats(id)
	) ENGINE=InnoDB`,
}

// Migrate creates any missing table.  It is safe to run on every start.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
