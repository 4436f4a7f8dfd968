package postgres

import (
	"context"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"seatLedger/internal/models"
	"seatLedger/internal/storage"
	"sync"
	"testing"
	"time"
)

const testDBLockID int64 = 730514202

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN is not set, skipping postgres tests")
	}

	s, err := Open(dsn)
	if err != nil {
		t.Skipf("skipping postgres tests: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := s.DB.Conn(ctx)
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, testDBLockID)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = conn.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, testDBLockID)
		_ = conn.Close()
	})

	require.NoError(t, s.Migrate(ctx))

	_, err = s.DB.ExecContext(ctx, `TRUNCATE bookings, events`)
	require.NoError(t, err)

	return s
}

func insertEvent(t *testing.T, s *Storage, total int) models.Event {
	t.Helper()

	event := models.Event{
		ID:         uuid.NewString(),
		Title:      "Concert",
		Date:       time.Date(2026, 12, 1, 20, 0, 0, 0, time.UTC),
		TotalSeats: total,
		Version:    1,
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, s.CreateEvent(context.Background(), event))

	return event
}

func newBooking(eventID, userID string, seats int) models.Booking {
	return models.Booking{
		ID:        uuid.NewString(),
		EventID:   eventID,
		UserID:    userID,
		Seats:     seats,
		CreatedAt: time.Now().UTC(),
	}
}

func TestBookingRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	event := insertEvent(t, s, 10)
	booking := newBooking(event.ID, "u1", 4)

	updated, err := s.InsertBooking(ctx, storage.SeatUpdate{EventID: event.ID, Version: 1, BookedSeats: 4}, booking)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.BookedSeats)
	assert.Equal(t, int64(2), updated.Version)

	_, err = s.InsertBooking(ctx, storage.SeatUpdate{EventID: event.ID, Version: 1, BookedSeats: 5}, newBooking(event.ID, "u2", 1))
	assert.ErrorIs(t, err, storage.ErrVersionConflict)

	stored, err := s.Booking(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", stored.UserID)
	assert.Equal(t, 4, stored.Seats)

	byEvent, err := s.BookingsByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, byEvent, 1)

	_, err = s.DeleteBooking(ctx, storage.SeatUpdate{EventID: event.ID, Version: 2, BookedSeats: 0}, uuid.NewString())
	assert.ErrorIs(t, err, storage.ErrBookingNotFound)

	after, err := s.Event(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, after.BookedSeats, "rolled back delete must keep the counter")
	assert.Equal(t, int64(2), after.Version)

	updated, err = s.DeleteBooking(ctx, storage.SeatUpdate{EventID: event.ID, Version: 2, BookedSeats: 0}, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, updated.BookedSeats)

	_, err = s.Booking(ctx, booking.ID)
	assert.ErrorIs(t, err, storage.ErrBookingNotFound)
}

func TestNotFoundMapping(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.Event(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, storage.ErrEventNotFound)

	_, err = s.Event(ctx, uuid.NewString())
	assert.ErrorIs(t, err, storage.ErrEventNotFound)

	_, err = s.Booking(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, storage.ErrBookingNotFound)

	_, err = s.InsertBooking(ctx, storage.SeatUpdate{EventID: uuid.NewString(), Version: 1, BookedSeats: 1}, newBooking(uuid.NewString(), "u1", 1))
	assert.ErrorIs(t, err, storage.ErrEventNotFound)
}

func TestUpdateAndDeleteEvent(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	event := insertEvent(t, s, 10)

	_, err := s.InsertBooking(ctx, storage.SeatUpdate{EventID: event.ID, Version: 1, BookedSeats: 3}, newBooking(event.ID, "u1", 3))
	require.NoError(t, err)

	edit := event
	edit.Title = "Renamed"
	edit.TotalSeats = 5
	edit.BookedSeats = 0
	edit.Version = 2

	updated, err := s.UpdateEvent(ctx, edit)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, 5, updated.TotalSeats)
	assert.Equal(t, 3, updated.BookedSeats)

	_, err = s.UpdateEvent(ctx, edit)
	assert.ErrorIs(t, err, storage.ErrVersionConflict)

	assert.ErrorIs(t, s.DeleteEvent(ctx, event.ID, 3), storage.ErrEventHasBookings)
	assert.ErrorIs(t, s.DeleteEvent(ctx, event.ID, 1), storage.ErrVersionConflict)
	assert.ErrorIs(t, s.DeleteEvent(ctx, uuid.NewString(), 1), storage.ErrEventNotFound)
}

func TestConcurrentConditionalWrites(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	event := insertEvent(t, s, 100)

	const writers = 8

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := s.InsertBooking(ctx,
				storage.SeatUpdate{EventID: event.ID, Version: 1, BookedSeats: 1},
				newBooking(event.ID, "u1", 1),
			)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, storage.ErrVersionConflict)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded, "only one writer may win a given version")

	bookings, err := s.BookingsByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestBookingsByUserJoinsEvent(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	first := insertEvent(t, s, 10)
	second := insertEvent(t, s, 4)

	older := newBooking(first.ID, "u1", 3)
	older.CreatedAt = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	_, err := s.InsertBooking(ctx, storage.SeatUpdate{EventID: first.ID, Version: 1, BookedSeats: 3}, older)
	require.NoError(t, err)

	newer := newBooking(second.ID, "u1", 1)
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)
	_, err = s.InsertBooking(ctx, storage.SeatUpdate{EventID: second.ID, Version: 1, BookedSeats: 1}, newer)
	require.NoError(t, err)

	_, err = s.InsertBooking(ctx, storage.SeatUpdate{EventID: second.ID, Version: 2, BookedSeats: 2}, newBooking(second.ID, "u2", 1))
	require.NoError(t, err)

	mine, err := s.BookingsByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)

	assert.Equal(t, newer.ID, mine[0].ID)
	assert.Equal(t, second.ID, mine[0].Event.ID)
	assert.Equal(t, "Concert", mine[0].Event.Title)
	assert.Equal(t, 2, mine[0].Event.BookedSeats)
	assert.Equal(t, 2, mine[0].Event.RemainingSeats)

	assert.Equal(t, older.ID, mine[1].ID)
	assert.Equal(t, 3, mine[1].Seats)
	assert.Equal(t, first.ID, mine[1].Event.ID)
	assert.Equal(t, 7, mine[1].Event.RemainingSeats)

	none, err := s.BookingsByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}
