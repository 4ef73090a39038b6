package webapi

import (
	"time"

	"github.com/fintrack/fintrack/pkg/currency"
	inv "github.com/fintrack/fintrack/pkg/domain/investment"
	"github.com/fintrack/fintrack/pkg/money"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type investmentRequest struct {
	AccountID string    `json:"account_id" validate:"required,uuid"`
	Kind      string    `json:"kind" validate:"required,oneof=BUY SELL"`
	Symbol    string    `json:"symbol" validate:"required"`
	AssetKind string    `json:"asset_kind" validate:"required,oneof=EQUITY CRYPTO"`
	Quantity  string    `json:"quantity" validate:"required"`
	Price     string    `json:"price" validate:"required"`
	Currency  string    `json:"currency" validate:"omitempty,len=3,uppercase"`
	Date      time.Time `json:"date"`
}

type investmentResponse struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Kind      string    `json:"kind"`
	Symbol    string    `json:"symbol"`
	AssetKind string    `json:"asset_kind"`
	Quantity  string    `json:"quantity"`
	Price     string    `json:"price"`
	Currency  string    `json:"currency"`
	Date      time.Time `json:"date"`
}

type holdingResponse struct {
	ID           string `json:"id"`
	AccountID    string `json:"account_id"`
	Symbol       string `json:"symbol"`
	AssetKind    string `json:"asset_kind"`
	Quantity     string `json:"quantity"`
	AveragePrice string `json:"average_price"`
	MarkPrice    string `json:"mark_price"`
	MarketValue  string `json:"market_value"`
	Currency     string `json:"currency"`
}

func mapInvestmentResponse(t *inv.Transaction) investmentResponse {
	return investmentResponse{
		ID:        t.ID.String(),
		AccountID: t.AccountID.String(),
		Kind:      string(t.Kind),
		Symbol:    t.Symbol,
		AssetKind: string(t.AssetKind),
		Quantity:  t.Quantity.String(),
		Price:     t.Price.Amount().StringFixed(2),
		Currency:  string(t.Price.Currency()),
		Date:      t.Date,
	}
}

func mapHoldingResponse(h *inv.Holding) holdingResponse {
	return holdingResponse{
		ID:           h.ID.String(),
		AccountID:    h.AccountID.String(),
		Symbol:       h.Symbol,
		AssetKind:    string(h.AssetKind),
		Quantity:     h.Quantity.String(),
		AveragePrice: h.AveragePrice.Amount().StringFixed(2),
		MarkPrice:    h.MarkPrice.Amount().StringFixed(2),
		MarketValue:  h.MarketValue().Amount().StringFixed(2),
		Currency:     string(h.AveragePrice.Currency()),
	}
}

func buildInvestment(input *investmentRequest, id, owner uuid.UUID) (*inv.Transaction, error) {
	accountID, err := uuid.Parse(input.AccountID)
	if err != nil {
		return nil, err
	}
	quantity, err := money.NewQuantityFromString(input.Quantity)
	if err != nil {
		return nil, err
	}
	price, err := money.NewFromString(input.Price, currency.Code(input.Currency))
	if err != nil {
		return nil, err
	}
	date := input.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	now := time.Now().UTC()
	return &inv.Transaction{
		ID:        id,
		OwnerID:   owner,
		AccountID: accountID,
		Kind:      inv.Kind(input.Kind),
		Symbol:    input.Symbol,
		AssetKind: inv.AssetKind(input.AssetKind),
		Quantity:  quantity,
		Price:     price,
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// InvestmentRoutes registers investment ledger endpoints.
func InvestmentRoutes(r fiber.Router, deps Deps) {
	r.Post("/investments", func(c *fiber.Ctx) error {
		input, err := BindAndValidate[investmentRequest](c)
		if err != nil {
			return nil
		}
		t, err := buildInvestment(input, uuid.New(), ownerID(c))
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Invalid investment transaction", err.Error())
		}
		if err := deps.Investment.Apply(c.UserContext(), t); err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Investment transaction failed", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "Investment transaction applied", mapInvestmentResponse(t))
	})

	r.Get("/investments", func(c *fiber.Ctx) error {
		records, err := deps.Investment.Records(c.UserContext(), ownerID(c))
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Investment listing failed", err.Error())
		}
		resp := make([]investmentResponse, 0, len(records))
		for _, t := range records {
			resp = append(resp, mapInvestmentResponse(t))
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Investment transactions", resp)
	})

	r.Put("/investments/:id", func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid investment id", err.Error())
		}
		input, err := BindAndValidate[investmentRequest](c)
		if err != nil {
			return nil
		}
		t, err := buildInvestment(input, id, ownerID(c))
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Invalid investment transaction", err.Error())
		}
		if err := deps.Investment.Update(c.UserContext(), t); err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Investment update failed", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Investment transaction updated", mapInvestmentResponse(t))
	})

	r.Delete("/investments/:id", func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid investment id", err.Error())
		}
		if err := deps.Investment.Delete(c.UserContext(), ownerID(c), id); err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Investment delete failed", err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	r.Get("/holdings", func(c *fiber.Ctx) error {
		holdings, err := deps.Investment.Holdings(c.UserContext(), ownerID(c))
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Holding listing failed", err.Error())
		}
		resp := make([]holdingResponse, 0, len(holdings))
		for _, h := range holdings {
			resp = append(resp, mapHoldingResponse(h))
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Holdings", resp)
	})
}
