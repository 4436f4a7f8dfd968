package storage

import "errors"

var (
	ErrEventNotFound   = errors.New("event not found")
	ErrBookingNotFound = errors.New("booking not found")
	// ErrVersionConflict means the event changed since it was read.
	ErrVersionConflict  = errors.New("event version conflict")
	ErrEventHasBookings = errors.New("event has bookings")
)

// SeatUpdate is a conditional write of an event's booked seat counter.
// It applies only while the stored version still equals Version.
type SeatUpdate struct {
	EventID     string
	Version     int64
	BookedSeats int
}
