package ratelimit

import (
	"context"
	"github.com/go-chi/render"
	"log/slog"
	"net/http"
	"seatLedger/internal/http-server/middleware/auth"
	"seatLedger/internal/lib/api/response"
	"seatLedger/internal/lib/logger/sl"
)

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=Limiter
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// New throttles callers by user id, or by remote address when anonymous.
// Limiter failures let the request through.
func New(log *slog.Logger, limiter Limiter) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		log := log.With(slog.String("component", "middleware/ratelimit"))

		fn := func(w http.ResponseWriter, r *http.Request) {
			key := r.RemoteAddr
			if user, ok := auth.UserFromContext(r.Context()); ok {
				key = "user:" + user.ID
			}

			allowed, err := limiter.Allow(r.Context(), key)
			if err != nil {
				log.Error("rate limiter unavailable", sl.Err(err))
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				log.Info("request throttled", slog.String("key", key))
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}

			next.ServeHTTP(w, r)
		}

		return http.HandlerFunc(fn)
	}
}
