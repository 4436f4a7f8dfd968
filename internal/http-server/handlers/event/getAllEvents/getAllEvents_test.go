package getAllEvents

import (
	"encoding/json"
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"net/http"
	"net/http/httptest"
	"seatLedger/internal/http-server/handlers/event/getAllEvents/mocks"
	"seatLedger/internal/lib/logger/handlers/slogdiscard"
	"seatLedger/internal/models"
	"testing"
	"time"
)

func TestGetAllEventsHandler(t *testing.T) {
	t.Parallel()

	logger := slogdiscard.NewDiscardLogger()

	testTime := time.Date(2026, 12, 25, 18, 0, 0, 0, time.UTC)
	testEvents := []models.Availability{
		models.NewAvailability(models.Event{
			ID:          "ev-1",
			Title:       "Test Event 1",
			Date:        testTime,
			TotalSeats:  100,
			BookedSeats: 50,
		}),
		models.NewAvailability(models.Event{
			ID:          "ev-2",
			Title:       "Test Event 2",
			Date:        testTime.Add(24 * time.Hour),
			TotalSeats:  200,
			BookedSeats: 75,
		}),
	}

	testCases := []struct {
		name           string
		mockSetup      func(m *mocks.EventsGetter)
		expectedStatus int
		expectedBody   string
		checkBody      func(t *testing.T, body string)
	}{
		{
			name: "Success with events",
			mockSetup: func(m *mocks.EventsGetter) {
				m.On("ListAvailability", mock.Anything).Return(testEvents, nil)
			},
			expectedStatus: http.StatusOK,
			checkBody: func(t *testing.T, body string) {
				var response EventsResponse
				err := json.Unmarshal([]byte(body), &response)
				require.NoError(t, err)

				assert.Equal(t, "OK", response.Status)
				require.Len(t, response.Events, 2)
				assert.Equal(t, "ev-1", response.Events[0].ID)
				assert.Equal(t, 50, response.Events[0].RemainingSeats)
				assert.Equal(t, "ev-2", response.Events[1].ID)
				assert.Equal(t, 125, response.Events[1].RemainingSeats)
			},
		},
		{
			name: "Success with no events",
			mockSetup: func(m *mocks.EventsGetter) {
				m.On("ListAvailability", mock.Anything).Return(nil, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","events":[]}`,
		},
		{
			name: "Internal server error",
			mockSetup: func(m *mocks.EventsGetter) {
				m.On("ListAvailability", mock.Anything).Return(nil, errors.New("database error"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `{"status":"Error","error":"failed to get events"}`,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			mockGetter := mocks.NewEventsGetter(t)
			tc.mockSetup(mockGetter)

			handler := New(logger, mockGetter)

			req, err := http.NewRequest(http.MethodGet, "/events", nil)
			require.NoError(t, err)

			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code, "Status code mismatch")

			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "Response body mismatch")
			} else if tc.checkBody != nil {
				tc.checkBody(t, rr.Body.String())
			}
		})
	}
}
