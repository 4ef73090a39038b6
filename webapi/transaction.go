package webapi

import (
	"time"

	"github.com/fintrack/fintrack/pkg/currency"
	"github.com/fintrack/fintrack/pkg/domain/transaction"
	"github.com/fintrack/fintrack/pkg/money"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type transactionRequest struct {
	AccountID     string    `json:"account_id" validate:"required,uuid"`
	DestinationID string    `json:"destination_id" validate:"omitempty,uuid"`
	Kind          string    `json:"kind" validate:"required,oneof=INCOME EXPENSE TRANSFER"`
	Amount        string    `json:"amount" validate:"required"`
	Currency      string    `json:"currency" validate:"omitempty,len=3,uppercase"`
	Category      string    `json:"category"`
	Date          time.Time `json:"date"`
	IsRecurrent   bool      `json:"is_recurrent"`
	Frequency     string    `json:"frequency" validate:"omitempty,oneof=DAILY WEEKLY MONTHLY YEARLY"`
}

type transactionResponse struct {
	ID            string    `json:"id"`
	AccountID     string    `json:"account_id"`
	DestinationID string    `json:"destination_id,omitempty"`
	Kind          string    `json:"kind"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	Category      string    `json:"category,omitempty"`
	Date          time.Time `json:"date"`
	IsRecurrent   bool      `json:"is_recurrent"`
	Frequency     string    `json:"frequency,omitempty"`
	ParentID      string    `json:"parent_id,omitempty"`
}

func mapTransactionResponse(t *transaction.Transaction) transactionResponse {
	resp := transactionResponse{
		ID:          t.ID.String(),
		AccountID:   t.AccountID.String(),
		Kind:        string(t.Kind),
		Amount:      t.Amount.Amount().StringFixed(2),
		Currency:    string(t.Amount.Currency()),
		Category:    t.Category,
		Date:        t.Date,
		IsRecurrent: t.IsRecurrent,
		Frequency:   string(t.Frequency),
	}
	if t.DestinationID != nil {
		resp.DestinationID = t.DestinationID.String()
	}
	if t.ParentID != nil {
		resp.ParentID = t.ParentID.String()
	}
	return resp
}

func buildTransaction(input *transactionRequest, id, owner uuid.UUID) (*transaction.Transaction, error) {
	accountID, err := uuid.Parse(input.AccountID)
	if err != nil {
		return nil, err
	}
	var destinationID *uuid.UUID
	if input.DestinationID != "" {
		dest, err := uuid.Parse(input.DestinationID)
		if err != nil {
			return nil, err
		}
		destinationID = &dest
	}
	amount, err := money.NewFromString(input.Amount, currency.Code(input.Currency))
	if err != nil {
		return nil, err
	}
	date := input.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	now := time.Now().UTC()
	return &transaction.Transaction{
		ID:            id,
		OwnerID:       owner,
		AccountID:     accountID,
		DestinationID: destinationID,
		Kind:          transaction.Kind(input.Kind),
		Amount:        amount,
		Category:      input.Category,
		Date:          date,
		IsRecurrent:   input.IsRecurrent,
		Frequency:     transaction.Frequency(input.Frequency),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// TransactionRoutes registers transaction ledger endpoints.
func TransactionRoutes(r fiber.Router, deps Deps) {
	r.Post("/transactions", func(c *fiber.Ctx) error {
		input, err := BindAndValidate[transactionRequest](c)
		if err != nil {
			return nil
		}
		t, err := buildTransaction(input, uuid.New(), ownerID(c))
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Invalid transaction", err.Error())
		}
		if err := deps.Ledger.Apply(c.UserContext(), t); err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Transaction failed", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusCreated, "Transaction applied", mapTransactionResponse(t))
	})

	r.Get("/transactions", func(c *fiber.Ctx) error {
		transactions, err := deps.Ledger.ListByOwner(c.UserContext(), ownerID(c))
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Transaction listing failed", err.Error())
		}
		resp := make([]transactionResponse, 0, len(transactions))
		for _, t := range transactions {
			resp = append(resp, mapTransactionResponse(t))
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Transactions", resp)
	})

	r.Put("/transactions/:id", func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid transaction id", err.Error())
		}
		input, err := BindAndValidate[transactionRequest](c)
		if err != nil {
			return nil
		}
		t, err := buildTransaction(input, id, ownerID(c))
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Invalid transaction", err.Error())
		}
		if err := deps.Ledger.Update(c.UserContext(), t); err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Transaction update failed", err.Error())
		}
		return SuccessResponseJSON(c, fiber.StatusOK, "Transaction updated", mapTransactionResponse(t))
	})

	r.Delete("/transactions/:id", func(c *fiber.Ctx) error {
		id, err := uuid.Parse(c.Params("id"))
		if err != nil {
			return ErrorResponseJSON(c, fiber.StatusBadRequest, "Invalid transaction id", err.Error())
		}
		if err := deps.Ledger.Delete(c.UserContext(), ownerID(c), id); err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Transaction delete failed", err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
