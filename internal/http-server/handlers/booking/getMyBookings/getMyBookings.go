package getMyBookings

import (
	"context"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
	"seatLedger/internal/http-server/middleware/auth"
	"seatLedger/internal/lib/api/response"
	"seatLedger/internal/lib/logger/sl"
	"seatLedger/internal/models"
)

type BookingsResponse struct {
	response.Response
	Bookings []models.UserBooking `json:"bookings"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=BookingsGetter
type BookingsGetter interface {
	UserBookings(ctx context.Context, userID string) ([]models.UserBooking, error)
}

func New(log *slog.Logger, getter BookingsGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.booking.getMyBookings.New"

		log := log.With(slog.String("op", op))

		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			log.Error("request is not authenticated")
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}

		bookings, err := getter.UserBookings(r.Context(), user.ID)
		if err != nil {
			log.Error("failed to get bookings", sl.Err(err), slog.String("user_id", user.ID))
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to get bookings"))
			return
		}

		if bookings == nil {
			bookings = []models.UserBooking{}
		}

		render.JSON(w, r, BookingsResponse{
			Response: response.OK(),
			Bookings: bookings,
		})
	}
}
