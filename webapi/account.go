package webapi

import (
	"github.com/fintrack/fintrack/pkg/currency"
	"github.com/fintrack/fintrack/pkg/domain/account"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type createAccountRequest struct {
	Name     string `json:"name" validate:"required"`
	Currency string `json:"currency" validate:"omitempty,len=3,uppercase"`
}

type balanceBucket struct {
	Currency string `json:"currency"`
	Balance  string `json:"balance"`
}

type accountResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Currency  string          `json:"currency"`
	Balance   string          `json:"balance"`
	Secondary []balanceBucket `json:"secondary,omitempty"`
}

func mapAccountResponse(a *account.Account) accountResponse {
	resp := accountResponse{
		ID:       a.ID.String(),
		Name:     a.Name,
		Currency: string(a.Currency()),
		Balance:  a.Balance.Amount().StringFixed(2),
	}
	for _, bucket := range a.Secondary {
		resp.Secondary = append(resp.Secondary, balanceBucket{
			Currency: string(bucket.Currency()),
			Balance:  bucket.Amount().StringFixed(2),
		})
	}
	return resp
}

// AccountRoutes registers account endpoints.
func AccountRoutes(r fiber.Router, deps Deps) {
	r.Post("/accounts", func(c *fiber.Ctx) error {
		input, err := BindAndValidate[createAccountRequest](c)
		if err != nil {
			return nil
		}
		code := currency.Code(input.Currency)
		if code == "" {
			code = currency.DefaultCurrency
		}
		a, err := deps.Account.Create(c.UserContext(), ownerID(c), input.Name, code)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Account creation failed", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "Account created", mapAccountResponse(a))
	})

	r.Get("/accounts", func(c *fiber.Ctx) error {
		accounts, err := deps.Account.List(c.UserContext(), ownerID(c))
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Account listing failed", err.Error())
		}
		resp := make([]accountResponse, 0, len(accounts))
		for _, a := range accounts {
			resp = append(resp, mapAccountResponse(a))
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Accounts", resp)
	})

	r.Get("/accounts/:id", func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid account id", err.Error())
		}
		a, err := deps.Account.Get(c.UserContext(), ownerID(c), id)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Account lookup failed", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Account", mapAccountResponse(a))
	})
}
