package service

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrEventNotFound         = errors.New("event not found")
	ErrNotFound              = errors.New("booking not found")
	ErrInsufficientCapacity  = errors.New("not enough seats available")
	ErrInvalidCapacityChange = errors.New("total seats cannot be lower than booked seats")
	ErrConflict              = errors.New("event was modified concurrently, try again")
	ErrEventHasBookings      = errors.New("event has active bookings")
)
