package models

import "time"

type Booking struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Seats     int       `json:"seats"`
	CreatedAt time.Time `json:"created_at"`
}

type Reservation struct {
	Booking Booking      `json:"booking"`
	Event   Availability `json:"event"`
}

// UserBooking is a booking shown to its owner together with the event it is for.
type UserBooking struct {
	Booking
	Event Availability `json:"event"`
}
