// Package memory keeps events and bookings in process memory. It honours the
// same conditional-write contract as the postgres storage and backs tests and
// single-node development runs.
package memory

import (
	"context"
	"fmt"
	"seatLedger/internal/models"
	"seatLedger/internal/storage"
	"sort"
	"sync"
)

type Storage struct {
	mu       sync.RWMutex
	events   map[string]models.Event
	bookings map[string]models.Booking
}

func New() *Storage {
	return &Storage{
		events:   make(map[string]models.Event),
		bookings: make(map[string]models.Booking),
	}
}

func (s *Storage) CreateEvent(_ context.Context, event models.Event) error {
	const op = "storage.memory.CreateEvent"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[event.ID]; ok {
		return fmt.Errorf("%s: event %s already exists", op, event.ID)
	}

	event.BookedSeats = 0
	s.events[event.ID] = event

	return nil
}

func (s *Storage) Event(_ context.Context, id string) (models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	event, ok := s.events[id]
	if !ok {
		return models.Event{}, storage.ErrEventNotFound
	}

	return event, nil
}

func (s *Storage) Events(_ context.Context) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]models.Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, e)
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].Date.Equal(events[j].Date) {
			return events[i].ID < events[j].ID
		}
		return events[i].Date.Before(events[j].Date)
	})

	return events, nil
}

// UpdateEvent stores the metadata and capacity of event. The booked seat
// counter is never taken from the argument.
func (s *Storage) UpdateEvent(_ context.Context, event models.Event) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.checkVersion(event.ID, event.Version)
	if err != nil {
		return models.Event{}, err
	}

	current.Title = event.Title
	current.Description = event.Description
	current.Date = event.Date
	current.TotalSeats = event.TotalSeats
	current.Version++

	s.events[current.ID] = current

	return current, nil
}

func (s *Storage) DeleteEvent(_ context.Context, id string, version int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.checkVersion(id, version); err != nil {
		return err
	}

	for _, b := range s.bookings {
		if b.EventID == id {
			return storage.ErrEventHasBookings
		}
	}

	delete(s.events, id)

	return nil
}

func (s *Storage) Booking(_ context.Context, id string) (models.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	booking, ok := s.bookings[id]
	if !ok {
		return models.Booking{}, storage.ErrBookingNotFound
	}

	return booking, nil
}

// BookingsByUser returns the bookings of userID with their events, newest first.
func (s *Storage) BookingsByUser(_ context.Context, userID string) ([]models.UserBooking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bookings []models.UserBooking
	for _, b := range s.bookings {
		if b.UserID != userID {
			continue
		}

		event, ok := s.events[b.EventID]
		if !ok {
			event = models.Event{ID: b.EventID}
		}

		bookings = append(bookings, models.UserBooking{
			Booking: b,
			Event:   models.NewAvailability(event),
		})
	}

	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})

	return bookings, nil
}

func (s *Storage) BookingsByEvent(_ context.Context, eventID string) ([]models.Booking, error) {
	bookings := s.filterBookings(func(b models.Booking) bool { return b.EventID == eventID })

	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.Before(bookings[j].CreatedAt)
	})

	return bookings, nil
}

// InsertBooking applies upd and stores booking as one step.
func (s *Storage) InsertBooking(_ context.Context, upd storage.SeatUpdate, booking models.Booking) (models.Event, error) {
	const op = "storage.memory.InsertBooking"

	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.checkVersion(upd.EventID, upd.Version)
	if err != nil {
		return models.Event{}, err
	}

	if _, ok := s.bookings[booking.ID]; ok {
		return models.Event{}, fmt.Errorf("%s: booking %s already exists", op, booking.ID)
	}

	event.BookedSeats = upd.BookedSeats
	event.Version++

	s.events[event.ID] = event
	s.bookings[booking.ID] = booking

	return event, nil
}

// DeleteBooking applies upd and removes the booking as one step.
func (s *Storage) DeleteBooking(_ context.Context, upd storage.SeatUpdate, bookingID string) (models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, err := s.checkVersion(upd.EventID, upd.Version)
	if err != nil {
		return models.Event{}, err
	}

	if _, ok := s.bookings[bookingID]; !ok {
		return models.Event{}, storage.ErrBookingNotFound
	}

	event.BookedSeats = upd.BookedSeats
	event.Version++

	s.events[event.ID] = event
	delete(s.bookings, bookingID)

	return event, nil
}

func (s *Storage) Close() error {
	return nil
}

// checkVersion must be called with the write lock held.
func (s *Storage) checkVersion(id string, version int64) (models.Event, error) {
	event, ok := s.events[id]
	if !ok {
		return models.Event{}, storage.ErrEventNotFound
	}

	if event.Version != version {
		return models.Event{}, storage.ErrVersionConflict
	}

	return event, nil
}

func (s *Storage) filterBookings(keep func(models.Booking) bool) []models.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var bookings []models.Booking
	for _, b := range s.bookings {
		if keep(b) {
			bookings = append(bookings, b)
		}
	}

	return bookings
}
