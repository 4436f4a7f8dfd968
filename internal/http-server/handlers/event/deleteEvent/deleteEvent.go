package deleteEvent

import (
	"context"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
	"seatLedger/internal/lib/api/response"
	"seatLedger/internal/lib/logger/sl"
	"seatLedger/internal/service"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=EventDeleter
type EventDeleter interface {
	DeleteEvent(ctx context.Context, id string) error
}

func New(log *slog.Logger, deleter EventDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.event.deleteEvent.New"

		log := log.With(slog.String("op", op))

		eventID := chi.URLParam(r, "id")
		if eventID == "" {
			log.Error("event id is required")
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("event id is required"))
			return
		}

		log = log.With(slog.String("event_id", eventID))

		if err := deleter.DeleteEvent(r.Context(), eventID); err != nil {
			log.Error("failed to delete event", sl.Err(err))

			switch {
			case errors.Is(err, service.ErrEventNotFound):
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("event not found"))
			case errors.Is(err, service.ErrEventHasBookings):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error(service.ErrEventHasBookings.Error()))
			case errors.Is(err, service.ErrConflict):
				render.Status(r, http.StatusConflict)
				render.JSON(w, r, response.Error(service.ErrConflict.Error()))
			default:
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("failed to delete event"))
			}
			return
		}

		log.Info("event deleted")

		render.JSON(w, r, response.OK())
	}
}
