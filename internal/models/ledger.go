package models

// LedgerReport compares an event's seat counter with the bookings that back it.
type LedgerReport struct {
	EventID      string `json:"event_id"`
	TotalSeats   int    `json:"total_seats"`
	BookedSeats  int    `json:"booked_seats"`
	BookingSeats int    `json:"booking_seats"`
	Bookings     int    `json:"bookings"`
	Consistent   bool   `json:"consistent"`
}

func NewLedgerReport(e Event, bookings []Booking) LedgerReport {
	sum := 0
	for _, b := range bookings {
		sum += b.Seats
	}

	return LedgerReport{
		EventID:      e.ID,
		TotalSeats:   e.TotalSeats,
		BookedSeats:  e.BookedSeats,
		BookingSeats: sum,
		Bookings:     len(bookings),
		Consistent:   sum == e.BookedSeats && e.BookedSeats >= 0 && e.BookedSeats <= e.TotalSeats,
	}
}
