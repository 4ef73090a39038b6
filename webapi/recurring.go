package webapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// RecurringRoutes registers the sweep trigger. The endpoint is guarded by an
// optional shared-secret bearer token; an empty configured token leaves it
// open.
func RecurringRoutes(r fiber.Router, deps Deps) {
	r.Post("/recurring/sweep", func(c *fiber.Ctx) error {
		if deps.SweepToken != "" {
			auth := c.Get(fiber.HeaderAuthorization)
			token, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || token != deps.SweepToken {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "invalid or missing bearer token",
				})
			}
		}

		result, err := deps.Recurring.RunSweep(c.UserContext())
		if err != nil {
			deps.Logger.Error("Recurring sweep failed", "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.JSON(fiber.Map{
			"success":   true,
			"processed": result.Processed,
			"created":   result.Created,
			"errors":    result.Errors,
		})
	})
}
