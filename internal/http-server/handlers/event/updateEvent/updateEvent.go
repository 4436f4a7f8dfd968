package updateEvent

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
	"time"
)

// UpdateRequest fields left out of the body keep their current value.
type UpdateRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
	TotalSeats  *int       `json:"total_seats,omitempty"`
}

type UpdateResponse struct {
	response.Response
	Event models.Availability `json:"event"`
}

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventUpdater
type EventUpdater interface {
	UpdateEvent(ctx context.Context, id string, patch models.EventPatch) (models.Event, error)
}

func New(log *slog.Logger, updater EventUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.updateEvent.New"

		log := log.With(slog.String("op", op))

		eventID := chi.URLParam(r, "id")
		if eventID == "" {
			log.Error("event id is required")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("event id is required"))
			return
		}

		log = log.With(slog.String("event_id", eventID))

		var req UpdateRequest

		if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Error("failed to decode request body", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("failed to decode request"))
			return
		}

		event, err := updater.UpdateEvent(r.Context(), eventID, models.EventPatch{
			Title:       req.Title,
			Description: req.Description,
			Date:        req.Date,
			TotalSeats:  req.TotalSeats,
		})
		if err != nil {
			log.Error("failed to update event", sl.Err(err))

			switch {
			case errors.Is(err, service.ErrEventNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("event not found"))
			case errors.Is(err, service.ErrInvalidCapacityChange):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error(service.ErrInvalidCapacityChange.Error()))
			case errors.Is(err, service.ErrInvalidInput):
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, response.Error("invalid event data"))
			case errors.Is(err, service.ErrConflict):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error(service.ErrConflict.Error()))
			default:
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to update event"))
			}
			return
		}

		log.Info("event updated")

		render.JSON(w, r, UpdateResponse{
			Response: response.OK(),
			Event:    models.NewAvailability(event),
		})
	}
}
