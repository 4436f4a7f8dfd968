// Package service holds the rules that keep event seat counters and bookings
// in agreement. Inventory is the only writer of booked seats and bookings;
// Catalog manages event metadata and capacity.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"seatLedger/internal/lib/clock"
	"seatLedger/internal/lib/logger/sl"
	"seatLedger/internal/models"
	"seatLedger/internal/storage"
	"strings"
)

type Ledger interface {
	Event(ctx context.Context, id string) (models.Event, error)
	Events(ctx context.Context) ([]models.Event, error)
	Booking(ctx context.Context, id string) (models.Booking, error)
	BookingsByUser(ctx context.Context, userID string) ([]models.UserBooking, error)
	BookingsByEvent(ctx context.Context, eventID string) ([]models.Booking, error)
	InsertBooking(ctx context.Context, upd storage.SeatUpdate, booking models.Booking) (models.Event, error)
	DeleteBooking(ctx context.Context, upd storage.SeatUpdate, bookingID string) (models.Event, error)
}

type Inventory struct {
	log    *slog.Logger
	ledger Ledger
	clock  clock.Clock
	opts   options
}

func NewInventory(log *slog.Logger, ledger Ledger, clk clock.Clock, opts ...Option) *Inventory {
	return &Inventory{
		log:    log,
		ledger: ledger,
		clock:  clk,
		opts:   buildOptions(opts),
	}
}

// ReserveSeats books seats for userID. The capacity check and the counter
// write happen against the same event version; a concurrent change forces a
// fresh read and a new check.
func (s *Inventory) ReserveSeats(ctx context.Context, eventID, userID string, seats int) (models.Reservation, error) {
	const op = "service.Inventory.ReserveSeats"

	log := s.log.With(
		slog.String("op", op),
		slog.String("event_id", eventID),
		slog.String("user_id", userID),
	)

	if seats < 1 {
		return models.Reservation{}, fmt.Errorf("%s: seats must be positive, got %d: %w", op, seats, ErrInvalidInput)
	}
	if strings.TrimSpace(userID) == "" {
		return models.Reservation{}, fmt.Errorf("%s: user id is required: %w", op, ErrInvalidInput)
	}

	var reservation models.Reservation

	err := retryOnConflict(ctx, op, s.opts.maxAttempts, func() error {
		event, err := s.ledger.Event(ctx, eventID)
		if err != nil {
			return eventErr(op, err)
		}

		if seats > event.Remaining() {
			return fmt.Errorf("%s: requested %d, remaining %d: %w", op, seats, event.Remaining(), ErrInsufficientCapacity)
		}

		booking := models.Booking{
			ID:        s.opts.newID(),
			EventID:   event.ID,
			UserID:    userID,
			Seats:     seats,
			CreatedAt: s.clock.Now(),
		}

		upd := storage.SeatUpdate{
			EventID:     event.ID,
			Version:     event.Version,
			BookedSeats: event.BookedSeats + seats,
		}

		updated, err := s.ledger.InsertBooking(ctx, upd, booking)
		if err != nil {
			if errors.Is(err, storage.ErrVersionConflict) {
				log.Debug("event changed during reservation, retrying", slog.Int64("version", event.Version))
			}
			return eventErr(op, err)
		}

		reservation = models.Reservation{
			Booking: booking,
			Event:   models.NewAvailability(updated),
		}

		return nil
	})
	if err != nil {
		return models.Reservation{}, err
	}

	log.Info("seats reserved",
		slog.String("booking_id", reservation.Booking.ID),
		slog.Int("seats", seats),
		slog.Int("booked_seats", reservation.Event.BookedSeats),
	)

	return reservation, nil
}

// CancelBooking removes a booking owned by userID and returns its seats to
// the event. A booking owned by someone else is reported as not found.
func (s *Inventory) CancelBooking(ctx context.Context, bookingID, userID string) error {
	const op = "service.Inventory.CancelBooking"

	log := s.log.With(
		slog.String("op", op),
		slog.String("booking_id", bookingID),
		slog.String("user_id", userID),
	)

	booking, err := s.ledger.Booking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, storage.ErrBookingNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if userID == "" || booking.UserID != userID {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}

	err = retryOnConflict(ctx, op, s.opts.maxAttempts, func() error {
		event, err := s.ledger.Event(ctx, booking.EventID)
		if err != nil {
			if errors.Is(err, storage.ErrEventNotFound) {
				log.Error("booking references missing event", slog.String("event_id", booking.EventID))
				return fmt.Errorf("%s: booking references missing event %s: %w", op, booking.EventID, ErrEventNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		booked := event.BookedSeats - booking.Seats
		if booked < 0 {
			log.Warn("booked seats lower than booking size, clamping to zero",
				slog.Int("booked_seats", event.BookedSeats),
				slog.Int("booking_seats", booking.Seats),
			)
			booked = 0
		}

		upd := storage.SeatUpdate{
			EventID:     event.ID,
			Version:     event.Version,
			BookedSeats: booked,
		}

		if _, err = s.ledger.DeleteBooking(ctx, upd, booking.ID); err != nil {
			if errors.Is(err, storage.ErrBookingNotFound) {
				return fmt.Errorf("%s: %w", op, ErrNotFound)
			}
			return fmt.Errorf("%s: %w", op, err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	log.Info("booking cancelled", slog.String("event_id", booking.EventID), slog.Int("seats", booking.Seats))

	return nil
}

func (s *Inventory) ListAvailability(ctx context.Context) ([]models.Availability, error) {
	const op = "service.Inventory.ListAvailability"

	events, err := s.ledger.Events(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	availability := make([]models.Availability, 0, len(events))
	for _, e := range events {
		availability = append(availability, models.NewAvailability(e))
	}

	return availability, nil
}

func (s *Inventory) Availability(ctx context.Context, eventID string) (models.Availability, error) {
	const op = "service.Inventory.Availability"

	event, err := s.ledger.Event(ctx, eventID)
	if err != nil {
		return models.Availability{}, eventErr(op, err)
	}

	return models.NewAvailability(event), nil
}

// UserBookings lists the bookings of userID with their events, newest first.
func (s *Inventory) UserBookings(ctx context.Context, userID string) ([]models.UserBooking, error) {
	const op = "service.Inventory.UserBookings"

	if userID == "" {
		return nil, fmt.Errorf("%s: user id is required: %w", op, ErrInvalidInput)
	}

	bookings, err := s.ledger.BookingsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookings, nil
}

// CheckLedger recomputes the booked seats of an event from its bookings.
// The event is read again after the bookings; a moved version means a write
// slipped in between and the snapshot is taken again.
func (s *Inventory) CheckLedger(ctx context.Context, eventID string) (models.LedgerReport, []models.Booking, error) {
	const op = "service.Inventory.CheckLedger"

	var (
		report   models.LedgerReport
		bookings []models.Booking
	)

	err := retryOnConflict(ctx, op, s.opts.maxAttempts, func() error {
		before, err := s.ledger.Event(ctx, eventID)
		if err != nil {
			return eventErr(op, err)
		}

		bookings, err = s.ledger.BookingsByEvent(ctx, eventID)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		after, err := s.ledger.Event(ctx, eventID)
		if err != nil {
			return eventErr(op, err)
		}

		if after.Version != before.Version {
			return storage.ErrVersionConflict
		}

		report = models.NewLedgerReport(after, bookings)

		return nil
	})
	if err != nil {
		return models.LedgerReport{}, nil, err
	}

	return report, bookings, nil
}

// AuditLedger checks every event and returns the reports that disagree.
func (s *Inventory) AuditLedger(ctx context.Context) ([]models.LedgerReport, error) {
	const op = "service.Inventory.AuditLedger"

	events, err := s.ledger.Events(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var broken []models.LedgerReport
	for _, e := range events {
		report, _, err := s.CheckLedger(ctx, e.ID)
		if err != nil {
			if errors.Is(err, ErrEventNotFound) || errors.Is(err, ErrConflict) {
				s.log.Debug("skipping event in ledger audit", slog.String("op", op), slog.String("event_id", e.ID), sl.Err(err))
				continue
			}
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if !report.Consistent {
			broken = append(broken, report)
		}
	}

	return broken, nil
}

func eventErr(op string, err error) error {
	if errors.Is(err, storage.ErrEventNotFound) {
		return fmt.Errorf("%s: %w", op, ErrEventNotFound)
	}

	return fmt.Errorf("%s: %w", op, err)
}
