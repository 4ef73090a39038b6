package webapi

import (
	"github.com/fintrack/fintrack/pkg/currency"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type valuationResponse struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

func targetCurrency(c *fiber.Ctx) currency.Code {
	code := currency.Code(c.Query("currency"))
	if code == "" {
		return currency.DefaultCurrency
	}
	return code
}

// ValuationRoutes registers the read-only valuation endpoints.
func ValuationRoutes(r fiber.Router, deps Deps) {
	r.Get("/valuation/balance", func(c *fiber.Ctx) error {
		target := targetCurrency(c)
		total, err := deps.Valuation.TotalBalance(c.UserContext(), ownerID(c), target)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Balance valuation failed", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Total balance", valuationResponse{
			Currency: string(target),
			Amount:   total.Amount().StringFixed(2),
		})
	})

	r.Get("/valuation/portfolio", func(c *fiber.Ctx) error {
		target := targetCurrency(c)
		var accountID *uuid.UUID
		if raw := c.Query("account_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid account id", err.Error())
			}
			accountID = &id
		}
		value, err := deps.Valuation.PortfolioValue(c.UserContext(), ownerID(c), accountID, target)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Portfolio valuation failed", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Portfolio value", valuationResponse{
			Currency: string(target),
			Amount:   value.Amount().StringFixed(2),
		})
	})

	r.Get("/valuation/gainloss", func(c *fiber.Ctx) error {
		target := targetCurrency(c)
		gain, err := deps.Valuation.GainLoss(c.UserContext(), ownerID(c), target)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Gain/loss valuation failed", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Gain/loss", valuationResponse{
			Currency: string(target),
			Amount:   gain.Amount().StringFixed(2),
		})
	})
}
