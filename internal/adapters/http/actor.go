package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Fahm-Gah/hesarak-backend-sub003/internal/core/domain"
)

const actorLocal = "actor"

// ActorMiddleware builds the requesting actor from the identity headers the
// session gateway sets: X-Actor-ID, X-Actor-Roles (comma-separated), and
// X-Actor-Active. Requests without headers become an anonymous customer.
func ActorMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get("X-Actor-ID")

		var roles []string
		if raw := c.Get("X-Actor-Roles"); raw != "" {
			for _, r := range strings.Split(raw, ",") {
				if r = strings.TrimSpace(r); r != "" {
					roles = append(roles, r)
				}
			}
		}

		active := true
		if raw := c.Get("X-Actor-Active"); raw != "" {
			active = strings.EqualFold(raw, "true") || raw == "1"
		}

		c.Locals(actorLocal, domain.NewActor(id, roles, active))
		return c.Next()
	}
}

// actorFromCtx returns the actor placed by ActorMiddleware.
func actorFromCtx(c *fiber.Ctx) domain.Actor {
	if a, ok := c.Locals(actorLocal).(domain.Actor); ok {
		return a
	}
	return domain.Actor{IsActive: true}
}
