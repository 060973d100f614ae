package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Requester identity from gateway headers
	app.Use(ActorMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// ETag for conditional caching
	app.Use(ETagMiddleware())

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1 — 15s per-request timeout
	v1 := app.Group("/v1")
	v1.Get("/terminals", timeout.NewWithContext(ListTerminalsHandler(deps), 15*time.Second))
	v1.Get("/terminals/search", timeout.NewWithContext(SearchTerminalsHandler(deps), 15*time.Second))
	v1.Get("/terminals/:id", timeout.NewWithContext(GetTerminalHandler(deps), 15*time.Second))
	v1.Get("/trips", timeout.NewWithContext(ListTripsHandler(deps), 15*time.Second))
	v1.Get("/trips/:id", timeout.NewWithContext(GetTripHandler(deps), 15*time.Second))
	v1.Get("/trips/:id/dates", timeout.NewWithContext(TripDatesHandler(deps), 15*time.Second))
	v1.Get("/trips/:id/seats", timeout.NewWithContext(TripSeatsHandler(deps), 15*time.Second))
	v1.Get("/trips/:id/tickets", timeout.NewWithContext(ListTripTicketsHandler(deps), 15*time.Second))
	v1.Get("/bus-types/:id", timeout.NewWithContext(GetBusTypeHandler(deps), 15*time.Second))
	v1.Post("/bookings/validate", timeout.NewWithContext(ValidateBookingHandler(deps), 15*time.Second))
	v1.Post("/tickets", timeout.NewWithContext(CreateTicketHandler(deps), 15*time.Second))
	v1.Get("/tickets/:id", timeout.NewWithContext(GetTicketHandler(deps), 15*time.Second))
	v1.Post("/tickets/:id/cancel", timeout.NewWithContext(CancelTicketHandler(deps), 15*time.Second))
	v1.Post("/tickets/:id/pay", timeout.NewWithContext(PayTicketHandler(deps), 15*time.Second))
	v1.Get("/stats", timeout.NewWithContext(BookingStatsHandler(deps), 15*time.Second))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if deps.NATS == nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "live seat updates unavailable",
			})
		}
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps.NATS)))
}
