// Package account provides account creation and reads. Balances are never
// written here; the ledgers own every balance mutation.
package account

import (
	"context"
	"log/slog"

	"github.com/fintrack/fintrack/pkg/currency"
	"github.com/fintrack/fintrack/pkg/domain/account"
	"github.com/fintrack/fintrack/pkg/repository"
	"github.com/google/uuid"
)

// Service manages accounts.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates an account service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// Create opens a new account with a zero balance in the given currency.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, name string, code currency.Code) (*account.Account, error) {
	a, err := account.New().
		WithOwnerID(ownerID).
		WithName(name).
		WithCurrency(code).
		Build()
	if err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		return repo.Create(ctx, a)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Account created", "account", a.ID, "currency", a.Currency())
	return a, nil
}

// Get returns one account.
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*account.Account, error) {
	repo, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	return repo.Get(ctx, ownerID, id)
}

// List returns all of an owner's accounts.
func (s *Service) List(ctx context.Context, ownerID uuid.UUID) ([]*account.Account, error) {
	repo, err := s.uow.AccountRepository()
	if err != nil {
		return nil, err
	}
	return repo.ListByOwner(ctx, ownerID)
}
