package updateEvent

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
	"seatLedger/internal/http-server/handlers/event/updateEvent/mocks"
	"seatLedger/internal/lib/logger/handlers/slogdiscard"
	"seatLedger/internal/models"
	"seatLedger/internal/service"
	"testing"
)

func seatsPatch(n int) interface{} {
	return mock.MatchedBy(func(p models.EventPatch) bool {
		return p.TotalSeats != nil && *p.TotalSeats == n && p.Title == nil && p.Date == nil
	})
}

func TestUpdateEventHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	testCases := []struct {
		name           string
		requestBody    string
		mockSetup      func(m *mocks.EventUpdater)
		expectedStatus int
		expectedBody   string
		checkBody      func(t *testing.T, body string)
	}{
		{
			name:        "Success",
			requestBody: `{"total_seats": 40}`,
			mockSetup: func(m *mocks.EventUpdater) {
				m.On("UpdateEvent", mock.Anything, "ev-1", seatsPatch(40)).
					Return(models.Event{ID: "ev-1", TotalSeats: 40, BookedSeats: 15}, nil)
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body string) {
				var resp UpdateResponse
				require.NoError(t, json.Unmarshal([]byte(body), &resp))

				assert.Equal(t, "OK", resp.Status)
				assert.Equal(t, 40, resp.Event.TotalSeats)
				assert.Equal(t, 25, resp.Event.RemainingSeats)
			},
		},
		{
			name:        "Title only",
			requestBody: `{"title": "Renamed"}`,
			mockSetup: func(m *mocks.EventUpdater) {
				m.On("UpdateEvent", mock.Anything, "ev-1", mock.MatchedBy(func(p models.EventPatch) bool {
					return p.Title != nil && *p.Title == "Renamed" && p.TotalSeats == nil
				})).Return(models.Event{ID: "ev-1", Title: "Renamed"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:        "Client supplied booked_seats is ignored",
			requestBody: `{"title": "Renamed", "description": "Moved", "booked_seats": 99}`,
			mockSetup: func(m *mocks.EventUpdater) {
				m.On("UpdateEvent", mock.Anything, "ev-1", mock.MatchedBy(func(p models.EventPatch) bool {
					return p.Title != nil && *p.Title == "Renamed" &&
						p.Description != nil && *p.Description == "Moved" &&
						p.Date == nil && p.TotalSeats == nil
				})).Return(models.Event{ID: "ev-1", Title: "Renamed", TotalSeats: 10, BookedSeats: 4}, nil)
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body string) {
				var resp UpdateResponse
				require.NoError(t, json.Unmarshal([]byte(body), &resp))

				assert.Equal(t, 4, resp.Event.BookedSeats)
				assert.Equal(t, 6, resp.Event.RemainingSeats)
			},
		},
		{
			name:           "Invalid JSON",
			requestBody:    `{"total_seats": "many"}`,
			mockSetup:      func(m *mocks.EventUpdater) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"failed to decode request"}`,
		},
		{
			name:        "Capacity below booked",
			requestBody: `{"total_seats": 5}`,
			mockSetup: func(m *mocks.EventUpdater) {
				m.On("UpdateEvent", mock.Anything, "ev-1", seatsPatch(5)).
					Return(models.Event{}, fmt.Errorf("op: %w", service.ErrInvalidCapacityChange))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"total seats cannot be lower than booked seats"}`,
		},
		{
			name:        "Invalid data",
			requestBody: `{"total_seats": -3}`,
			mockSetup: func(m *mocks.EventUpdater) {
				m.On("UpdateEvent", mock.Anything, "ev-1", seatsPatch(-3)).
					Return(models.Event{}, fmt.Errorf("op: %w", service.ErrInvalidInput))
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `{"status":"Error","error":"invalid event data"}`,
		},
		{
			name:        "Event not found",
			requestBody: `{"total_seats": 5}`,
			mockSetup: func(m *mocks.EventUpdater) {
				m.On("UpdateEvent", mock.Anything, "ev-1", seatsPatch(5)).
					Return(models.Event{}, fmt.Errorf("op: %w", service.ErrEventNotFound))
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `{"status":"Error","error":"event not found"}`,
		},
		{
			name:        "Retries exhausted",
			requestBody: `{"total_seats": 5}`,
			mockSetup: func(m *mocks.EventUpdater) {
				m.On("UpdateEvent", mock.Anything, "ev-1", seatsPatch(5)).
					Return(models.Event{}, fmt.Errorf("op: 5 attempts: %w", service.ErrConflict))
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `{"status":"Error","error":"event was modified concurrently, try again"}`,
		},
		{
			name:        "Internal server error",
			requestBody: `{"total_seats": 5}`,
			mockSetup: func(m *mocks.EventUpdater) {
				m.On("UpdateEvent", mock.Anything, "ev-1", seatsPatch(5)).
					Return(models.Event{}, errors.New("database error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to update event"}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mockUpdater := mocks.NewEventUpdater(t)
			tc.mockSetup(mockUpdater)

			router := chi.NewRouter()
			router.Patch("/events/{id}", New(logger, mockUpdater))

			req, err := http.NewRequest(http.MethodPatch, "/events/ev-1", bytes.NewBufferString(tc.requestBody))
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

func TestHandlerWithoutChiContext(t *testing.T) {
	t.Parallel()

	handler := New(slogdiscard.NewDiscardLogger(), mocks.NewEventUpdater(t))

	req := httptest.NewRequest(http.MethodPatch, "/", bytes.NewBufferString(`{"title": "x"}`))
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "event id is required")
}
