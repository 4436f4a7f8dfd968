package createEvent

import (
	"context"
	"errors"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
	"log/slog"
	"net/http"
	"seatLedger/internal/lib/api/response"
	"seatLedger/internal/lib/logger/sl"
	"seatLedger/internal/models"
	"seatLedger/internal/service"
	"time"
)

type EventRequest struct {
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description"`
	Date        time.Time `json:"date" validate:"required"`
	TotalSeats  int       `json:"total_seats" validate:"gte=0"`
}

type EventResponse struct {
	response.Response
	Event models.Availability `json:"event"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventCreator
type EventCreator interface {
	CreateEvent(ctx context.Context, draft models.EventDraft) (models.Event, error)
}

func New(log *slog.Logger, creator EventCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.createEvent.New"

		log := log.With(
			slog.String("op", op),
		)

		var req EventRequest

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
			errors.As(err, &validateErr)

			log.Error("invalid request", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.ValidationError(validateErr))

			return
		}

		event, err := creator.CreateEvent(r.Context(), models.EventDraft{
			Title:       req.Title,
			Description: req.Description,
			Date:        req.Date,
			TotalSeats:  req.TotalSeats,
		})
		if err != nil {
			log.Error("failed to add event", sl.Err(err))

			if errors.Is(err, service.ErrInvalidInput) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("invalid event data"))

				return
			}

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to add event"))

			return
		}

		log.Info("event added", slog.String("id", event.ID))

		responseCreated(w, r, event)
	}
}

func responseCreated(w http.ResponseWriter, r *http.Request, event models.Event) {
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, EventResponse{
		Response: response.OK(),
		Event:    models.NewAvailability(event),
	})
}
