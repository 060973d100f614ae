package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control headers on GET responses based on
// endpoint. Adds sensible defaults if not already set by the handler.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		// Only set on GET requests
		if c.Method() != "GET" {
			return err
		}

		// Don't override if already set
		if existing := c.Get("Cache-Control"); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10" // Very short for system checks

		case path == "/metrics":
			ttl = "no-cache" // Metrics are real-time

		case path == "/graphql":
			ttl = "private, max-age=0"

		case strings.HasPrefix(path, "/v1/terminals/search"):
			ttl = "public, max-age=300" // 5 min for search results

		case strings.HasPrefix(path, "/v1/terminals"):
			ttl = "public, max-age=600" // terminals rarely change

		case strings.HasPrefix(path, "/v1/bus-types"):
			ttl = "public, max-age=3600" // layouts are static

		case strings.Contains(path, "/seats"):
			ttl = "no-cache" // seat maps must be fresh

		case strings.HasPrefix(path, "/v1/tickets"):
			ttl = "private, max-age=0" // tickets are per-user

		case path == "/v1/stats":
			ttl = "public, max-age=60"

		case strings.HasPrefix(path, "/v1/"):
			ttl = "public, max-age=300" // 5 min default for API endpoints
		}

		if ttl != "" {
			c.Set("Cache-Control", ttl)
		}

		return err
	}
}
