// Package repository defines the persistence contracts the engine depends on.
// Every query is scoped by the opaque owner id handed in by the identity
// provider; a row belonging to another owner is indistinguishable from a
// missing row.
package repository

import (
	"context"
	"time"

	"github.com/fintrack/fintrack/pkg/domain/account"
	"github.com/fintrack/fintrack/pkg/domain/investment"
	"github.com/fintrack/fintrack/pkg/domain/transaction"
	"github.com/google/uuid"
)

// AccountRepository defines account data access.
type AccountRepository interface {
	Get(ctx context.Context, ownerID, id uuid.UUID) (*account.Account, error)
	// GetForUpdate loads the account with a row lock so concurrent ledger
	// mutations of the same account serialize.
	GetForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*account.Account, error)
	Create(ctx context.Context, a *account.Account) error
	Update(ctx context.Context, a *account.Account) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*account.Account, error)
}

// TransactionRepository defines transaction record data access.
type TransactionRepository interface {
	Get(ctx context.Context, ownerID, id uuid.UUID) (*transaction.Transaction, error)
	Create(ctx context.Context, t *transaction.Transaction) error
	Update(ctx context.Context, t *transaction.Transaction) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*transaction.Transaction, error)
	ListByAccount(ctx context.Context, ownerID, accountID uuid.UUID) ([]*transaction.Transaction, error)

	// ListTemplates returns every recurring template across owners, for the
	// sweep.
	ListTemplates(ctx context.Context) ([]*transaction.Transaction, error)

	// LatestOccurrenceDate returns the date of the newest generated instance
	// of the template, or the zero time when none exists.
	LatestOccurrenceDate(ctx context.Context, templateID uuid.UUID) (time.Time, error)

	// CreateOccurrence inserts a scheduler-generated instance if and only if
	// no instance of the same template exists on the same calendar day.
	// It reports whether the row was inserted. This is the atomic
	// insert-if-absent primitive behind sweep idempotency.
	CreateOccurrence(ctx context.Context, t *transaction.Transaction) (bool, error)
}

// HoldingRepository defines holding projection data access.
type HoldingRepository interface {
	Get(ctx context.Context, ownerID, id uuid.UUID) (*investment.Holding, error)
	GetBySymbol(ctx context.Context, ownerID, accountID uuid.UUID, symbol string) (*investment.Holding, error)
	// GetBySymbolForUpdate loads the holding with a row lock.
	GetBySymbolForUpdate(ctx context.Context, ownerID, accountID uuid.UUID, symbol string) (*investment.Holding, error)
	Create(ctx context.Context, h *investment.Holding) error
	Update(ctx context.Context, h *investment.Holding) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*investment.Holding, error)
	ListByAccount(ctx context.Context, ownerID, accountID uuid.UUID) ([]*investment.Holding, error)
}

// InvestmentRepository defines buy/sell record data access.
type InvestmentRepository interface {
	Get(ctx context.Context, ownerID, id uuid.UUID) (*investment.Transaction, error)
	Create(ctx context.Context, t *investment.Transaction) error
	Update(ctx context.Context, t *investment.Transaction) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*investment.Transaction, error)
	// ListBySymbol returns the full buy/sell log for one (account, symbol)
	// pair ordered by date then insertion, the order the projection folds in.
	ListBySymbol(ctx context.Context, ownerID, accountID uuid.UUID, symbol string) ([]*investment.Transaction, error)
}
