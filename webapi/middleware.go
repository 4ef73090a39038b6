package webapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const ownerHeader = "X-Owner-ID"

// OwnerMiddleware resolves the caller's owner id from the identity header.
// Identity is established by an external provider; the engine only consumes
// the opaque id and scopes every query by it.
func OwnerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get(ownerHeader)
		if raw == "" {
			return ErrorResponseJSON(c, fiber.StatusUnauthorized, "Missing owner", "X-Owner-ID header is required")
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusUnauthorized, "Invalid owner", "X-Owner-ID must be a UUID")
		}
		c.Locals("ownerID", id)
		return c.Next()
	}
}

// ownerID returns the owner id the middleware stored on the request.
func ownerID(c *fiber.Ctx) uuid.UUID {
	if id, ok := c.Locals("ownerID").(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
