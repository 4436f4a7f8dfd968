package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/lib/pq"
	"seatLedger/internal/config"
	"seatLedger/internal/models"
	"seatLedger/internal/storage"
)

const (
	codeForeignKeyViolation = "23503"
	codeInvalidText         = "22P02"
)

const eventColumns = `id, title, description, date, total_seats, booked_seats, version, created_at`

type Storage struct {
	DB *sql.DB
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func InitDB(dbCfg *config.Database) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.User,
		dbCfg.Password,
		dbCfg.DBName,
		dbCfg.SSLMode,
	)

	return Open(connStr)
}

func Open(dsn string) (*Storage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	if err = db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	return &Storage{DB: db}, nil
}

func (s *Storage) Close() error {
	return s.DB.Close()
}

func (s *Storage) CreateEvent(ctx context.Context, event models.Event) error {
	const op = "storage.postgres.CreateEvent"

	query := `
		INSERT INTO events (id, title, description, date, total_seats, booked_seats, version, created_at)
		VALUES ($1, $2, $3, $4, $5, 0, $6, $7)`

	_, err := s.DB.ExecContext(ctx, query,
		event.ID, event.Title, event.Description, event.Date, event.TotalSeats, event.Version, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) Event(ctx context.Context, id string) (models.Event, error) {
	const op = "storage.postgres.Event"

	event, err := scanEvent(s.DB.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isCode(err, codeInvalidText) {
			return models.Event{}, storage.ErrEventNotFound
		}
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	return event, nil
}

func (s *Storage) Events(ctx context.Context) ([]models.Event, error) {
	const op = "storage.postgres.Events"

	rows, err := s.DB.QueryContext(ctx, `SELECT `+eventColumns+` FROM events ORDER BY date ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan event: %w", op, err)
		}
		events = append(events, event)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: error iterating events: %w", op, err)
	}

	return events, nil
}

// UpdateEvent writes metadata and capacity while the stored version matches
// event.Version. booked_seats is not part of the statement.
func (s *Storage) UpdateEvent(ctx context.Context, event models.Event) (models.Event, error) {
	const op = "storage.postgres.UpdateEvent"

	query := `
		UPDATE events
		SET title = $3, description = $4, date = $5, total_seats = $6, version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING ` + eventColumns

	updated, err := scanEvent(s.DB.QueryRowContext(ctx, query,
		event.ID, event.Version, event.Title, event.Description, event.Date, event.TotalSeats,
	))
	if err != nil {
		if isCode(err, codeInvalidText) {
			return models.Event{}, storage.ErrEventNotFound
		}
		if errors.Is(err, sql.ErrNoRows) {
			return models.Event{}, s.missingOrStale(ctx, s.DB, event.ID)
		}
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	return updated, nil
}

func (s *Storage) DeleteEvent(ctx context.Context, id string, version int64) error {
	const op = "storage.postgres.DeleteEvent"

	res, err := s.DB.ExecContext(ctx, `DELETE FROM events WHERE id = $1 AND version = $2`, id, version)
	if err != nil {
		if isCode(err, codeForeignKeyViolation) {
			return storage.ErrEventHasBookings
		}
		if isCode(err, codeInvalidText) {
			return storage.ErrEventNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return s.missingOrStale(ctx, s.DB, id)
	}

	return nil
}

func (s *Storage) Booking(ctx context.Context, id string) (models.Booking, error) {
	const op = "storage.postgres.Booking"

	var b models.Booking
	err := s.DB.QueryRowContext(ctx,
		`SELECT id, event_id, user_id, seats, created_at FROM bookings WHERE id = $1`, id,
	).Scan(&b.ID, &b.EventID, &b.UserID, &b.Seats, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isCode(err, codeInvalidText) {
			return models.Booking{}, storage.ErrBookingNotFound
		}
		return models.Booking{}, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

// BookingsByUser returns the bookings of userID joined with their events,
// newest first.
func (s *Storage) BookingsByUser(ctx context.Context, userID string) ([]models.UserBooking, error) {
	const op = "storage.postgres.BookingsByUser"

	rows, err := s.DB.QueryContext(ctx, `
		SELECT b.id, b.event_id, b.user_id, b.seats, b.created_at,
		       e.id, e.title, e.description, e.date, e.total_seats, e.booked_seats, e.version, e.created_at
		FROM bookings b
		JOIN events e ON e.id = b.event_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var bookings []models.UserBooking
	for rows.Next() {
		var (
			b models.Booking
			e models.Event
		)

		err = rows.Scan(
			&b.ID, &b.EventID, &b.UserID, &b.Seats, &b.CreatedAt,
			&e.ID, &e.Title, &e.Description, &e.Date, &e.TotalSeats, &e.BookedSeats, &e.Version, &e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to scan booking: %w", op, err)
		}

		bookings = append(bookings, models.UserBooking{Booking: b, Event: models.NewAvailability(e)})
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: error iterating bookings: %w", op, err)
	}

	return bookings, nil
}

func (s *Storage) BookingsByEvent(ctx context.Context, eventID string) ([]models.Booking, error) {
	const op = "storage.postgres.BookingsByEvent"

	bookings, err := s.queryBookings(ctx, `
		SELECT id, event_id, user_id, seats, created_at
		FROM bookings
		WHERE event_id = $1
		ORDER BY created_at ASC`, eventID)
	if err != nil {
		if isCode(err, codeInvalidText) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return bookings, nil
}

// InsertBooking moves the event counter to upd.BookedSeats and inserts the
// booking in one transaction. The counter write is conditioned on upd.Version.
func (s *Storage) InsertBooking(ctx context.Context, upd storage.SeatUpdate, booking models.Booking) (models.Event, error) {
	const op = "storage.postgres.InsertBooking"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Event{}, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	event, err := s.applySeatUpdate(ctx, tx, upd)
	if err != nil {
		return models.Event{}, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bookings (id, event_id, user_id, seats, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		booking.ID, booking.EventID, booking.UserID, booking.Seats, booking.CreatedAt,
	)
	if err != nil {
		return models.Event{}, fmt.Errorf("%s: failed to create booking: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return models.Event{}, fmt.Errorf("%s: failed to commit: %w", op, err)
	}

	return event, nil
}

// DeleteBooking moves the event counter to upd.BookedSeats and deletes the
// booking in one transaction.
func (s *Storage) DeleteBooking(ctx context.Context, upd storage.SeatUpdate, bookingID string) (models.Event, error) {
	const op = "storage.postgres.DeleteBooking"

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return models.Event{}, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}
	defer tx.Rollback()

	event, err := s.applySeatUpdate(ctx, tx, upd)
	if err != nil {
		return models.Event{}, err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1 AND event_id = $2`, bookingID, upd.EventID)
	if err != nil {
		if isCode(err, codeInvalidText) {
			return models.Event{}, storage.ErrBookingNotFound
		}
		return models.Event{}, fmt.Errorf("%s: failed to delete booking: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return models.Event{}, storage.ErrBookingNotFound
	}

	if err = tx.Commit(); err != nil {
		return models.Event{}, fmt.Errorf("%s: failed to commit: %w", op, err)
	}

	return event, nil
}

func (s *Storage) applySeatUpdate(ctx context.Context, tx *sql.Tx, upd storage.SeatUpdate) (models.Event, error) {
	const op = "storage.postgres.applySeatUpdate"

	query := `
		UPDATE events
		SET booked_seats = $3, version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING ` + eventColumns

	event, err := scanEvent(tx.QueryRowContext(ctx, query, upd.EventID, upd.Version, upd.BookedSeats))
	if err != nil {
		if isCode(err, codeInvalidText) {
			return models.Event{}, storage.ErrEventNotFound
		}
		if errors.Is(err, sql.ErrNoRows) {
			return models.Event{}, s.missingOrStale(ctx, tx, upd.EventID)
		}
		return models.Event{}, fmt.Errorf("%s: %w", op, err)
	}

	return event, nil
}

// missingOrStale tells apart a vanished event from one whose version moved on.
func (s *Storage) missingOrStale(ctx context.Context, q queryRower, id string) error {
	const op = "storage.postgres.missingOrStale"

	var exists bool
	err := q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if !exists {
		return storage.ErrEventNotFound
	}

	return storage.ErrVersionConflict
}

func (s *Storage) queryBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		var b models.Booking
		if err = rows.Scan(&b.ID, &b.EventID, &b.UserID, &b.Seats, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating bookings: %w", err)
	}

	return bookings, nil
}

func scanEvent(row rowScanner) (models.Event, error) {
	var e models.Event
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Description,
		&e.Date,
		&e.TotalSeats,
		&e.BookedSeats,
		&e.Version,
		&e.CreatedAt,
	)

	return e, err
}

func isCode(err error, code pq.ErrorCode) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == code
}
