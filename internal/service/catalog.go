package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"seatLedger/internal/lib/clock"
	"seatLedger/internal/models"
	"seatLedger/internal/storage"
	"strings"
)

type EventStore interface {
	CreateEvent(ctx context.Context, event models.Event) error
	Event(ctx context.Context, id string) (models.Event, error)
	UpdateEvent(ctx context.Context, event models.Event) (models.Event, error)
	DeleteEvent(ctx context.Context, id string, version int64) error
}

// Catalog is the admin side of events: metadata and capacity.
type Catalog struct {
	log    *slog.Logger
	events EventStore
	clock  clock.Clock
	opts   options
}

func NewCatalog(log *slog.Logger, events EventStore, clk clock.Clock, opts ...Option) *Catalog {
	return &Catalog{
		log:    log,
		events: events,
		clock:  clk,
		opts:   buildOptions(opts),
	}
}

// CreateEvent stores a new event with no booked seats.
func (c *Catalog) CreateEvent(ctx context.Context, draft models.EventDraft) (models.Event, error) {
	const op = "service.Catalog.CreateEvent"

	event := models.Event{
		ID:          c.opts.newID(),
		Title:       strings.TrimSpace(draft.Title),
		Description: draft.Description,
		Date:        draft.Date,
		TotalSeats:  draft.TotalSeats,
		BookedSeats: 0,
		Version:     1,
		CreatedAt:   c.clock.Now(),
	}

	if err := validateEvent(event); err != nil {
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := c.events.CreateEvent(ctx, event); err != nil {
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	c.log.Info("event created",
		slog.String("op", op),
		slog.String("event_id", event.ID),
		slog.Int("total_seats", event.TotalSeats),
	)

	return event, nil
}

func (c *Catalog) Event(ctx context.Context, id string) (models.Event, error) {
	const op = "service.Catalog.Event"

	event, err := c.events.Event(ctx, id)
	if err != nil {
		return models.Event{}, eventErr(op, err)
	}

	return event, nil
}

// UpdateEvent applies an admin edit. Capacity may not drop below the seats
// already booked; the check and the write share one event version.
func (c *Catalog) UpdateEvent(ctx context.Context, id string, patch models.EventPatch) (models.Event, error) {
	const op = "service.Catalog.UpdateEvent"

	var updated models.Event

	err := retryOnConflict(ctx, op, c.opts.maxAttempts, func() error {
		event, err := c.events.Event(ctx, id)
		if err != nil {
			return eventErr(op, err)
		}

		if patch.Title != nil {
			event.Title = strings.TrimSpace(*patch.Title)
		}
		if patch.Description != nil {
			event.Description = *patch.Description
		}
		if patch.Date != nil {
			event.Date = *patch.Date
		}
		if patch.TotalSeats != nil {
			event.TotalSeats = *patch.TotalSeats
		}

		if err = validateEvent(event); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if event.TotalSeats < event.BookedSeats {
			return fmt.Errorf("%s: total %d, booked %d: %w", op, event.TotalSeats, event.BookedSeats, ErrInvalidCapacityChange)
		}

		updated, err = c.events.UpdateEvent(ctx, event)
		if err != nil {
			return eventErr(op, err)
		}

		return nil
	})
	if err != nil {
		return models.Event{}, err
	}

	c.log.Info("event updated", slog.String("op", op), slog.String("event_id", id))

	return updated, nil
}

// DeleteEvent removes an event that has no bookings.
func (c *Catalog) DeleteEvent(ctx context.Context, id string) error {
	const op = "service.Catalog.DeleteEvent"

	err := retryOnConflict(ctx, op, c.opts.maxAttempts, func() error {
		event, err := c.events.Event(ctx, id)
		if err != nil {
			return eventErr(op, err)
		}

		if event.BookedSeats > 0 {
			return fmt.Errorf("%s: %d seats booked: %w", op, event.BookedSeats, ErrEventHasBookings)
		}

		err = c.events.DeleteEvent(ctx, id, event.Version)
		if errors.Is(err, storage.ErrEventHasBookings) {
			return fmt.Errorf("%s: %w", op, ErrEventHasBookings)
		}
		if err != nil {
			return eventErr(op, err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	c.log.Info("event deleted", slog.String("op", op), slog.String("event_id", id))

	return nil
}

func validateEvent(e models.Event) error {
	if e.Title == "" {
		return fmt.Errorf("title is required: %w", ErrInvalidInput)
	}
	if e.Date.IsZero() {
		return fmt.Errorf("date is required: %w", ErrInvalidInput)
	}
	if e.TotalSeats < 0 {
		return fmt.Errorf("total seats must not be negative: %w", ErrInvalidInput)
	}

	return nil
}
