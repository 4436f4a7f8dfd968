package createBooking

import (
	"context"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"log/slog"
	"net/http"
	"seatLedger/internal/http-server/middleware/auth"
	"seatLedger/internal/lib/api/response"
	"seatLedger/internal/lib/logger/sl"
	"seatLedger/internal/models"
	"seatLedger/internal/service"
)

type BookingRequest struct {
	Seats int `json:"seats" validate:"required,min=1"`
}

type BookingResponse struct {
	response.Response
	models.Reservation
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=SeatReserver
type SeatReserver interface {
	ReserveSeats(ctx context.Context, eventID, userID string, seats int) (models.Reservation, error)
}

func New(log *slog.Logger, reserver SeatReserver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.createBooking.New"

		log := log.With(slog.String("op", op))

		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			log.Error("request is not authenticated")
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, response.Error("unauthorized"))
			return
		}

		eventID := chi.URLParam(r, "id")
		if eventID == "" {
			log.Error("event id is required")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("event id is required"))
			return
		}

		log = log.With(
			slog.String("event_id", eventID),
			slog.String("user_id", user.ID),
		)

		var req BookingRequest

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		log.Info("request body decoded", slog.Any("request", req))

		if err = validator.New().Struct(req); err != nil {
			var validateErr validator.ValidationErrors
			if errors.As(err, &validateErr) {
				log.Error("invalid request", sl.Err(err))
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.ValidationError(validateErr))
				return
			}
		}

		reservation, err := reserver.ReserveSeats(r.Context(), eventID, user.ID, req.Seats)
		if err != nil {
			log.Error("failed to book event", sl.Err(err))

			switch {
			case errors.Is(err, service.ErrEventNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("event not found"))
			case errors.Is(err, service.ErrInsufficientCapacity):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(service.ErrInsufficientCapacity.Error()))
			case errors.Is(err, service.ErrInvalidInput):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("invalid booking request"))
			case errors.Is(err, service.ErrConflict):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error(service.ErrConflict.Error()))
			default:
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to book event"))
			}
			return
		}

		log.Info("event booked successfully",
			slog.String("booking_id", reservation.Booking.ID),
			slog.Int("remaining_seats", reservation.Event.RemainingSeats),
		)

		responseCreated(w, r, reservation)
	}
}

func responseCreated(w http.ResponseWriter, r *http.Request, reservation models.Reservation) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, BookingResponse{
		Response:    response.OK(),
		Reservation: reservation,
	})
}
