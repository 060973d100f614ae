package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/adapters/http"
	natsadapter "github.com/Fahm-Gah/hesarak-backend-sub003/internal/adapters/nats"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/adapters/postgres"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/adapters/valkey"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/ports"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/usecases"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/pkg/config"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/pkg/logging"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/pkg/metrics"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("hesarak-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("hesarak-api", logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Cache
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
	}
	var cacheSvc ports.CacheService
	if cache != nil {
		cacheSvc = cache
	}

	// NATS
	events, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer events.Close()
	}

	// Raw NATS connection for WebSocket relay
	natsConn, err := natsadapter.RawConn(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats ws conn unavailable", "error", err)
	}

	// Repos
	terminalRepo := postgres.NewTerminalRepo(db)
	scheduleRepo := postgres.NewScheduleRepo(db)
	busTypeRepo := postgres.NewBusTypeRepo(db)
	ticketRepo := postgres.NewTicketRepo(db)

	// Use cases
	trips := usecases.NewScheduleService(scheduleRepo, nil)
	validator := usecases.NewBookingValidator(trips, cfg.Booking.CutoffHours, nil, slog.Default())
	holdTTL := time.Duration(cfg.Booking.HoldTTLMinutes) * time.Minute

	// A typed-nil publisher must not reach the interface field.
	var eventPub ports.EventPublisher
	if events != nil {
		eventPub = events
	}
	tickets := usecases.NewTicketService(ticketRepo, busTypeRepo, trips, validator, eventPub, holdTTL, nil)

	deps := &http.Dependencies{
		Terminals: usecases.NewTerminalService(terminalRepo, cacheSvc),
		Trips:     trips,
		BusTypes:  usecases.NewBusTypeService(busTypeRepo, cacheSvc),
		Tickets:   tickets,
		Validator: validator,
		NATS:      natsConn,
		DB:        db,
		Cache:     cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Hesarak Booking API",
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000, http://localhost:5173, https://*.hesarak.af",
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Actor-ID, X-Actor-Roles",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Export pgx pool stats to Prometheus
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.UpdateDBPoolMetrics(db.Pool.Stat())
			case <-ctx.Done():
				return
			}
		}
	}()

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
