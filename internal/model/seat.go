package model

// Seat describes a physical seat on a screen.  Seats are uniquely
// identified by their screen, row label and number within the row.
// The seat type is a class tag (STANDARD, VIP) and the price modifier
// multiplies the show's base price for this seat.
//
// Fields:
//  ID            – primary key identifier.
//  ScreenID      – screen to which this seat belongs.
//  RowLabel      – letter designating the row.
//  SeatNumber    – number of the seat within the row.
//  SeatType      – class tag of the seat.
//  PriceModifier – price multiplier (1.0 for standard seats).
type Seat struct {
	ID            uint64  `json:"id"`             // seats.id
	ScreenID      uint64  `json:"screen_id"`      // seats.screen_id
	RowLabel      string  `json:"row_label"`      // seats.row_label
	SeatNumber    uint32  `json:"seat_number"`    // seats.seat_number
	SeatType      string  `json:"seat_type"`      // seats.seat_type
	PriceModifier float64 `json:"price_modifier"` // seats.price_modifier
}

// Seat class tags.
const (
	SeatTypeStandard = "STANDARD"
	SeatTypeVIP      = "VIP"
)
