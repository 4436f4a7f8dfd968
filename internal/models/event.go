package models

import "time"

type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	TotalSeats  int       `json:"total_seats"`
	BookedSeats int       `json:"booked_seats"`
	CreatedAt   time.Time `json:"created_at"`
	// Version is bumped on every write and guards conditional updates.
	Version int64 `json:"-"`
}

func (e Event) Remaining() int {
	return e.TotalSeats - e.BookedSeats
}

// Availability is the public view of an event with its derived seat count.
type Availability struct {
	Event
	RemainingSeats int `json:"remaining_seats"`
}

func NewAvailability(e Event) Availability {
	return Availability{Event: e, RemainingSeats: e.Remaining()}
}

// EventDraft carries the admin-supplied fields of a new event.
type EventDraft struct {
	Title       string
	Description string
	Date        time.Time
	TotalSeats  int
}

// EventPatch carries an admin edit. Nil fields are left unchanged.
type EventPatch struct {
	Title       *string
	Description *string
	Date        *time.Time
	TotalSeats  *int
}
