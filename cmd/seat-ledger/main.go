package main

import (
	"context"
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"seatLedger/internal/config"
	"seatLedger/internal/http-server/handlers/booking/cancelBooking"
	"seatLedger/internal/http-server/handlers/booking/getMyBookings"
	"seatLedger/internal/http-server/handlers/event/createBooking"
	"seatLedger/internal/http-server/handlers/event/createEvent"
	"seatLedger/internal/http-server/handlers/event/deleteEvent"
	"seatLedger/internal/http-server/handlers/event/getAllEvents"
	"seatLedger/internal/http-server/handlers/event/getEventInfo"
	"seatLedger/internal/http-server/handlers/event/getEventLedger"
	"seatLedger/internal/http-server/handlers/event/updateEvent"
	"seatLedger/internal/http-server/middleware/auth"
	"seatLedger/internal/http-server/middleware/mwlogger"
	mwratelimit "seatLedger/internal/http-server/middleware/ratelimit"
	"seatLedger/internal/lib/clock"
	"seatLedger/internal/lib/logger/handlers/slogpretty"
	"seatLedger/internal/lib/logger/sl"
	"seatLedger/internal/lib/ratelimit"
	"seatLedger/internal/service"
	"seatLedger/internal/storage/postgres"
	"syscall"
	"time"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting seat ledger", slog.String("env", cfg.Env))
	log.Debug("Debug messages are enabled")

	storage, err := postgres.InitDB(&cfg.Database)
	if err != nil {
		log.Error("failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	err = storage.Migrate(migrateCtx)
	cancelMigrate()
	if err != nil {
		log.Error("failed to migrate storage", sl.Err(err))
		os.Exit(1)
	}

	clk := clock.NewSystem()
	inventory := service.NewInventory(log, storage, clk, service.WithMaxAttempts(cfg.Inventory.MaxAttempts))
	catalog := service.NewCatalog(log, storage, clk, service.WithMaxAttempts(cfg.Inventory.MaxAttempts))

	throttle := func(next http.Handler) http.Handler { return next }
	if cfg.RateLimit.Enabled {
		client, err := ratelimit.NewClient(cfg.RateLimit)
		if err != nil {
			log.Error("failed to connect to redis", sl.Err(err))
			os.Exit(1)
		}
		defer client.Close()

		limiter, err := ratelimit.NewRedis(client, cfg.RateLimit.Limit, cfg.RateLimit.Window)
		if err != nil {
			log.Error("failed to set up rate limiter", sl.Err(err))
			os.Exit(1)
		}
		throttle = mwratelimit.New(log, limiter)

		log.Info("rate limiting enabled",
			slog.Int("limit", cfg.RateLimit.Limit),
			slog.String("window", cfg.RateLimit.Window.String()),
		)
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(mwlogger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Group(func(r chi.Router) {
		r.Use(auth.New(log, cfg.Auth.JWTSecret))

		r.Get("/events", getAllEvents.New(log, inventory))
		r.Get("/events/{id}", getEventInfo.New(log, inventory))
		r.Get("/bookings/my", getMyBookings.New(log, inventory))

		r.Group(func(r chi.Router) {
			r.Use(throttle)

			r.Post("/events/{id}/book", createBooking.New(log, inventory))
			r.Delete("/bookings/{id}", cancelBooking.New(log, inventory))
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleAdmin))

			r.Post("/events", createEvent.New(log, catalog))
			r.Patch("/events/{id}", updateEvent.New(log, catalog))
			r.Delete("/events/{id}", deleteEvent.New(log, catalog))
			r.Get("/events/{id}/ledger", getEventLedger.New(log, inventory))
		})
	})

	log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT, os.Interrupt)

	auditCtx, stopAudit := context.WithCancel(context.Background())
	auditDone := make(chan struct{})

	go func() {
		defer close(auditDone)
		runLedgerAudit(auditCtx, log, inventory, cfg.Inventory.AuditInterval)
	}()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("failed to start server", sl.Err(err))
			stop <- syscall.SIGTERM
		}
	}()

	sign := <-stop

	log.Info("application stopping", slog.String("signal", sign.String()))

	stopAudit()
	<-auditDone

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to shutdown server", sl.Err(err))
	}

	log.Info("application stopped")

	if err = storage.Close(); err != nil {
		log.Error("failed to close postgres connection", sl.Err(err))
	}

	log.Info("postgres connection closed")
}

// runLedgerAudit periodically compares every event's counter with its
// bookings and reports mismatches. It never repairs them.
func runLedgerAudit(ctx context.Context, log *slog.Logger, inventory *service.Inventory, interval time.Duration) {
	if interval <= 0 {
		log.Info("ledger audit disabled")
		return
	}

	log = log.With(slog.String("component", "ledger-audit"))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			broken, err := inventory.AuditLedger(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Error("failed to audit ledger", sl.Err(err))
				continue
			}

			for _, report := range broken {
				log.Error("seat counter disagrees with bookings",
					slog.String("event_id", report.EventID),
					slog.Int("total_seats", report.TotalSeats),
					slog.Int("booked_seats", report.BookedSeats),
					slog.Int("booking_seats", report.BookingSeats),
					slog.Int("bookings", report.Bookings),
				)
			}

			log.Debug("ledger audit finished", slog.Int("mismatches", len(broken)))
		case <-ctx.Done():
			return
		}
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	h := opts.NewPrettyHandler(os.Stdout)

	return slog.New(h)
}
