package model

// Theater is a venue containing one or more screens.
type Theater struct {
	ID       uint64 // theaters.id
	Name     string // theaters.name
	Location string // theaters.location
}

// Screen is an auditorium inside a theater.  Seats belong to a screen
// and shows are scheduled on a screen.
type Screen struct {
	ID        uint64 // screens.id
	TheaterID uint64 // screens.theater_id
	Number    uint32 // screens.number
}

// Movie is the film screened by a show.
type Movie struct {
	ID          uint64 // movies.id
	Title       string // movies.title
	Description string // movies.description
	DurationMin uint32 // movies.duration_min
	Genre       string // movies.genre
}
