package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/booking-server/internal/application"
	"github.com/example/booking-server/internal/config"
	httptransport "github.com/example/booking-server/internal/http"
	"github.com/example/booking-server/internal/logging"
	"github.com/example/booking-server/internal/persistence/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.NewLogger(os.Stderr, "error").Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(os.Stdout, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := sqlite.NewConnectionPool(cfg.SQLiteDSN)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close database", "error", cerr)
		}
	}()

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}

	now := time.Now

	userRepo := sqlite.NewUserRepository(pool, now)
	calendarRepo := sqlite.NewCalendarRepository(pool, now)
	timeSlotRepo := sqlite.NewTimeSlotRepository(pool, now)
	bookingRepo := sqlite.NewBookingRepository(pool, now)

	tokens := application.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL, now)

	accountService := application.NewAccountService(userRepo, tokens, logger)
	calendarService := application.NewCalendarService(calendarRepo, logger)
	bookingService := application.NewBookingService(calendarRepo, timeSlotRepo, bookingRepo, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Accounts:  httptransport.NewAccountHandler(accountService, logger),
		Calendars: httptransport.NewCalendarHandler(calendarService, logger),
		Bookings:  httptransport.NewBookingHandler(bookingService, logger),
		Verifier:  accountService,
		Logger:    logger,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("booking API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server exited with error", "error", err)
		os.Exit(1)
	}

	logger.Info("booking API stopped")
}
