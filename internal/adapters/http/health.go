package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// bookingStreams are the JetStream streams that carry ticket and seat
// events. Readiness verifies they exist, not just that the NATS socket is
// up: without them the live seat feed has nothing to relay.
var bookingStreams = []string{"TICKETS", "SEATS"}

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "hesarak-booking",
			"uptime":  time.Since(startedAt).String(),
			"version": "dev",
		})
	}
}

// ReadyHandler reports whether the API can actually take bookings: the
// ticket store must answer, the event streams must exist, and the seat-map
// cache must respond. NATS and Valkey degrade gracefully, so only the
// database gates readiness when absent.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string)
		allOK := true

		// Postgres holds tickets and seat holds; no bookings without it.
		if deps.DB != nil {
			if err := deps.DB.Pool.Ping(ctx); err != nil {
				checks["postgres"] = "error: " + err.Error()
				allOK = false
			} else {
				checks["postgres"] = "ok"
			}
		} else {
			checks["postgres"] = "not configured"
			allOK = false
		}

		// JetStream booking streams
		if deps.NATS != nil {
			if !deps.NATS.IsConnected() {
				checks["jetstream"] = "disconnected"
				allOK = false
			} else if js, err := deps.NATS.JetStream(); err != nil {
				checks["jetstream"] = "error: " + err.Error()
				allOK = false
			} else {
				checks["jetstream"] = "ok"
				for _, name := range bookingStreams {
					if _, err := js.StreamInfo(name); err != nil {
						checks["jetstream"] = "missing stream " + name
						allOK = false
						break
					}
				}
			}
		} else {
			checks["jetstream"] = "not configured"
		}

		// Valkey seat-map cache
		if deps.Cache != nil {
			_, err := deps.Cache.Get(ctx, "__health_check__")
			// a missing key is the expected answer
			if err != nil && err.Error() != "valkey nil message" {
				checks["valkey"] = "error: " + err.Error()
				allOK = false
			} else {
				checks["valkey"] = "ok"
			}
		} else {
			checks["valkey"] = "not configured"
		}

		status := "ready"
		code := fiber.StatusOK
		if !allOK {
			status = "not ready"
			code = fiber.StatusServiceUnavailable
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
