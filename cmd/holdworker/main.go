package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"

	natsadapter "github.com/Fahm-Gah/hesarak-backend-sub003/internal/adapters/nats"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/adapters/postgres"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/ports"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/usecases"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/pkg/config"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/pkg/logging"
	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/workflows"
)

// sweepInterval is how often a hold-expiry sweep workflow is started.
const sweepInterval = time.Minute

func main() {
	cfg, err := config.Load("hesarak-holdworker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup("hesarak-holdworker", logLevel, "json")

	ctx := context.Background()

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	events, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable, seat releases will not be broadcast", "error", err)
	} else {
		defer events.Close()
	}
	var eventPub ports.EventPublisher
	if events != nil {
		eventPub = events
	}

	ticketRepo := postgres.NewTicketRepo(db)
	scheduleRepo := postgres.NewScheduleRepo(db)
	busTypeRepo := postgres.NewBusTypeRepo(db)

	trips := usecases.NewScheduleService(scheduleRepo, nil)
	validator := usecases.NewBookingValidator(trips, cfg.Booking.CutoffHours, nil, slog.Default())
	holdTTL := time.Duration(cfg.Booking.HoldTTLMinutes) * time.Minute
	tickets := usecases.NewTicketService(ticketRepo, busTypeRepo, trips, validator, eventPub, holdTTL, nil)

	// Connect to Temporal
	c, err := client.Dial(client.Options{
		HostPort:  cfg.Temporal.HostPort,
		Namespace: cfg.Temporal.Namespace,
	})
	if err != nil {
		log.Fatalf("temporal client: %v", err)
	}
	defer c.Close()

	w := worker.New(c, cfg.Temporal.TaskQueue, worker.Options{})

	w.RegisterWorkflow(workflows.HoldExpiryWorkflow)
	w.RegisterActivity(&workflows.HoldExpiryActivities{
		Scanner: ticketRepo,
		Tickets: tickets,
	})

	// Kick off a sweep every minute. Workflow IDs dedupe concurrent sweeps.
	go func() {
		ticker := time.NewTicker(sweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			opts := client.StartWorkflowOptions{
				ID:        "hold-expiry-sweep",
				TaskQueue: cfg.Temporal.TaskQueue,
			}
			_, err := c.ExecuteWorkflow(ctx, opts, workflows.HoldExpiryWorkflow, workflows.HoldExpiryInput{BatchSize: 100})
			if err != nil {
				slog.Warn("start hold-expiry sweep failed", "error", err)
			}
		}
	}()

	slog.Info("hold-expiry worker started", "taskQueue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
