// Package webapi exposes the bookkeeping engine over HTTP.
package webapi

import (
	"log/slog"

	accountsvc "github.com/fintrack/fintrack/pkg/service/account"
	investmentsvc "github.com/fintrack/fintrack/pkg/service/investment"
	"github.com/fintrack/fintrack/pkg/service/ledger"
	"github.com/fintrack/fintrack/pkg/service/recurring"
	"github.com/fintrack/fintrack/pkg/service/valuation"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Deps carries the wired services the web layer exposes.
type Deps struct {
	Account    *accountsvc.Service
	Ledger     *ledger.Service
	Investment *investmentsvc.Service
	Recurring  *recurring.Service
	Valuation  *valuation.Service
	SweepToken string
	Logger     *slog.Logger
}

// NewApp builds the fiber application with all routes registered.
func NewApp(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
			return ErrorResponseJSON(c, status, "Internal Server Error", err.Error())
		},
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// The sweep trigger authenticates with its own shared secret, not the
	// owner header; it spans all owners.
	RecurringRoutes(app, deps)

	api := app.Group("/", OwnerMiddleware())
	AccountRoutes(api, deps)
	TransactionRoutes(api, deps)
	InvestmentRoutes(api, deps)
	ValuationRoutes(api, deps)

	return app
}
