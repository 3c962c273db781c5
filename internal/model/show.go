package model

import "time"

// Show represents a scheduled screening of a movie on a screen.  The
// seats that can be booked for a show are the seats of its screen.
//
// Fields:
//  ID         – primary key identifier.
//  MovieID    – movie being screened.
//  ScreenID   – screen where the show is taking place.
//  MovieTitle – title of the movie (joined from movies).
//  StartsAt   – when the show begins.
type Show struct {
	ID         uint64    `json:"id"`          // shows.id
	MovieID    uint64    `json:"movie_id"`    // shows.movie_id
	ScreenID   uint64    `json:"screen_id"`   // shows.screen_id
	MovieTitle string    `json:"movie_title"` // movies.title
	StartsAt   time.Time `json:"starts_at"`   // shows.starts_at
}
