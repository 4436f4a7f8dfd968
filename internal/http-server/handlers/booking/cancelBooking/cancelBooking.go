package cancelBooking

import (
	"context"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
	"seatLedger/internal/http-server/middleware/auth"
	"seatLedger/internal/lib/api/response"
	"seatLedger/internal/lib/logger/sl"
	"seatLedger/internal/service"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingCanceller
type BookingCanceller interface {
	CancelBooking(ctx context.Context, bookingID, userID string) error
}

func New(log *slog.Logger, canceller BookingCanceller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.cancelBooking.New"

		log := log.With(slog.String("op", op))

		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			log.Error("request is not authenticated")
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}

		bookingID := chi.URLParam(r, "id")
		if bookingID == "" {
			log.Error("booking id is required")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("booking id is required"))
			return
		}

		log = log.With(
			slog.String("booking_id", bookingID),
			slog.String("user_id", user.ID),
		)

		if err := canceller.CancelBooking(r.Context(), bookingID, user.ID); err != nil {
			switch {
			case errors.Is(err, service.ErrNotFound):
				log.Info("booking not found")
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("booking not found"))
			case errors.Is(err, service.ErrEventNotFound):
				log.Error("booking references missing event", sl.Err(err))
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("event not found"))
			case errors.Is(err, service.ErrConflict):
				log.Error("failed to cancel booking", sl.Err(err))
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error(service.ErrConflict.Error()))
			default:
				log.Error("failed to cancel booking", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to cancel booking"))
			}
			return
		}

		log.Info("booking cancelled successfully")

		render.JSON(w, r, response.OK())
	}
}
