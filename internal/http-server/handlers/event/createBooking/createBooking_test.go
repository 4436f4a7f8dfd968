package createBooking

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"seatLedger/internal/http-server/handlers/event/createBooking/mocks"
	"seatLedger/internal/http-server/middleware/auth"
	"seatLedger/internal/lib/logger/handlers/slogdiscard"
	"seatLedger/internal/models"
	"seatLedger/internal/service"
	"testing"
)

func withUser(id string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := auth.WithUser(r.Context(), auth.User{ID: id, Role: auth.RoleUser})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func TestCreateBookingHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	reservation := models.Reservation{
		Booking: models.Booking{ID: "b-1", EventID: "ev-1", UserID: "user123", Seats: 2},
		Event:   models.NewAvailability(models.Event{ID: "ev-1", TotalSeats: 10, BookedSeats: 2}),
	}

	testCases := []struct {
		name           string
		requestBody    string
		mockSetup      func(m *mocks.SeatReserver)
		expectedStatus int
		expectedBody   string
		checkBody      func(t *testing.T, body string)
	}{
		{
			name:        "Success",
			requestBody: `{"seats": 2}`,
			mockSetup: func(m *mocks.SeatReserver) {
				m.On("ReserveSeats", mock.Anything, "ev-1", "user123", 2).Return(reservation, nil)
			},
			expectedStatus: http.StatusCreated,
			checkBody: func(t *testing.T, body string) {
				var resp BookingResponse
				require.NoError(t, json.Unmarshal([]byte(body), &resp))

				assert.Equal(t, "OK", resp.Status)
				assert.Equal(t, "b-1", resp.Booking.ID)
				assert.Equal(t, 2, resp.Booking.Seats)
				assert.Equal(t, 8, resp.Event.RemainingSeats)
			},
		},
		{
			name:           "Invalid JSON",
			requestBody:    `invalid json`,
			mockSetup:      func(m *mocks.SeatReserver) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode request"}`,
		},
		{
			name:           "Missing seats",
			requestBody:    `{}`,
			mockSetup:      func(m *mocks.SeatReserver) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field Seats is a required field"}`,
		},
		{
			name:           "Negative seats",
			requestBody:    `{"seats": -2}`,
			mockSetup:      func(m *mocks.SeatReserver) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"field Seats must be at least 1"}`,
		},
		{
			name:        "Not enough seats",
			requestBody: `{"seats": 5}`,
			mockSetup: func(m *mocks.SeatReserver) {
				m.On("ReserveSeats", mock.Anything, "ev-1", "user123", 5).
					Return(models.Reservation{}, fmt.Errorf("op: requested 5, remaining 3: %w", service.ErrInsufficientCapacity))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"not enough seats available"}`,
		},
		{
			name:        "Event not found",
			requestBody: `{"seats": 1}`,
			mockSetup: func(m *mocks.SeatReserver) {
				m.On("ReserveSeats", mock.Anything, "ev-1", "user123", 1).
					Return(models.Reservation{}, fmt.Errorf("op: %w", service.ErrEventNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"event not found"}`,
		},
		{
			name:        "Retries exhausted",
			requestBody: `{"seats": 1}`,
			mockSetup: func(m *mocks.SeatReserver) {
				m.On("ReserveSeats", mock.Anything, "ev-1", "user123", 1).
					Return(models.Reservation{}, fmt.Errorf("op: 5 attempts: %w", service.ErrConflict))
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"event was modified concurrently, try again"}`,
		},
		{
			name:        "Internal server error",
			requestBody: `{"seats": 1}`,
			mockSetup: func(m *mocks.SeatReserver) {
				m.On("ReserveSeats", mock.Anything, "ev-1", "user123", 1).
					Return(models.Reservation{}, errors.New("database error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to book event"}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mockReserver := mocks.NewSeatReserver(t)
			tc.mockSetup(mockReserver)

			router := chi.NewRouter()
			router.Use(withUser("user123"))
			router.Post("/events/{id}/book", New(logger, mockReserver))

			req, err := http.NewRequest(http.MethodPost, "/events/ev-1/book", bytes.NewBufferString(tc.requestBody))
			require.NoError(t, err)

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code, "Status code mismatch")

			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "Response body mismatch")
			} else if tc.checkBody != nil {
				tc.checkBody(t, rr.Body.String())
			}
		})
	}
}

func TestUnauthenticatedRequest(t *testing.T) {
	t.Parallel()

	router := chi.NewRouter()
	router.Post("/events/{id}/book", New(slogdiscard.NewDiscardLogger(), mocks.NewSeatReserver(t)))

	req := httptest.NewRequest(http.MethodPost, "/events/ev-1/book", bytes.NewBufferString(`{"seats": 1}`))
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"status":"Error","error":"unauthorized"}`, rr.Body.String())
}

func TestHandlerWithoutChiContext(t *testing.T) {
	t.Parallel()

	handler := New(slogdiscard.NewDiscardLogger(), mocks.NewSeatReserver(t))

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{"seats": 1}`))
	req = req.WithContext(auth.WithUser(req.Context(), auth.User{ID: "user123"}))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "event id is required")
}
