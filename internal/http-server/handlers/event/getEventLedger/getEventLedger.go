package getEventLedger

import (
	"context"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
	"seatLedger/internal/lib/api/response"
	"seatLedger/internal/lib/logger/sl"
	"seatLedger/internal/models"
	"seatLedger/internal/service"
)

type LedgerResponse struct {
	response.Response
	Report   models.LedgerReport `json:"report"`
	Bookings []models.Booking    `json:"bookings"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=LedgerChecker
type LedgerChecker interface {
	CheckLedger(ctx context.Context, eventID string) (models.LedgerReport, []models.Booking, error)
}

func New(log *slog.Logger, checker LedgerChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.getEventLedger.New"

		log := log.With(slog.String("op", op))

		eventID := chi.URLParam(r, "id")
		if eventID == "" {
			log.Error("event id is required")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("event id is required"))
			return
		}

		log = log.With(slog.String("event_id", eventID))

		report, bookings, err := checker.CheckLedger(r.Context(), eventID)
		if err != nil {
			log.Error("failed to check ledger", sl.Err(err))

			switch {
			case errors.Is(err, service.ErrEventNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("event not found"))
			case errors.Is(err, service.ErrConflict):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error(service.ErrConflict.Error()))
			default:
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to check ledger"))
			}
			return
		}

		if !report.Consistent {
			log.Warn("ledger mismatch",
				slog.Int("booked_seats", report.BookedSeats),
				slog.Int("booking_seats", report.BookingSeats),
			)
		}

		if bookings == nil {
			bookings = []models.Booking{}
		}

		render.JSON(w, r, LedgerResponse{
			Response: response.OK(),
			Report:   report,
			Bookings: bookings,
		})
	}
}
