// Package ledger keeps account balances consistent with the transaction
// record stream.
//
// Every mutation runs its read-modify-write inside one unit of work with the
// affected accounts row-locked, so concurrent edits to the same account
// serialize instead of losing updates. Reversal always uses the previously
// stored amount, kind and accounts, never the incoming values of an update.
//
// A recurring template is a blueprint, not a posting: it carries no balance
// effect of its own. Effects come from the instances the scheduler generates
// from it.
package ledger

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fintrack/fintrack/pkg/domain"
	"github.com/fintrack/fintrack/pkg/domain/account"
	"github.com/fintrack/fintrack/pkg/domain/transaction"
	"github.com/fintrack/fintrack/pkg/money"
	"github.com/fintrack/fintrack/pkg/repository"
	"github.com/google/uuid"
)

// Service is the transaction ledger.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates a ledger service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// Apply validates t, persists it and folds its balance effect into the
// affected accounts, all in one unit of work.
func (s *Service) Apply(ctx context.Context, t *transaction.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		if err := repo.Create(ctx, t); err != nil {
			return err
		}
		return s.ApplyEffect(ctx, uow, t)
	})
}

// Reverse undoes the balance effect of the stored transaction without
// removing the record. Delete is reverse plus removal.
func (s *Service) Reverse(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		t, err := repo.Get(ctx, ownerID, id)
		if err != nil {
			return err
		}
		return s.ReverseEffect(ctx, uow, t)
	})
}

// Update replaces the stored transaction: the old effect is reversed using
// the stored values, the new record is validated and saved, and the new
// effect applied. One atomic unit; a failure rolls the balances back.
func (s *Service) Update(ctx context.Context, updated *transaction.Transaction) error {
	if err := updated.Validate(); err != nil {
		return err
	}
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		old, err := repo.Get(ctx, updated.OwnerID, updated.ID)
		if err != nil {
			return err
		}
		if err := s.ReverseEffect(ctx, uow, old); err != nil {
			return err
		}
		updated.CreatedAt = old.CreatedAt
		updated.ParentID = old.ParentID
		updated.UpdatedAt = time.Now().UTC()
		// Merging the stored parent can invalidate the record: a
		// scheduler-generated instance must not become a template.
		if err := updated.Validate(); err != nil {
			return err
		}
		if err := repo.Update(ctx, updated); err != nil {
			return err
		}
		return s.ApplyEffect(ctx, uow, updated)
	})
}

// Delete reverses the stored transaction's effect and removes the record,
// atomically.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.TransactionRepository()
		if err != nil {
			return err
		}
		t, err := repo.Get(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if err := s.ReverseEffect(ctx, uow, t); err != nil {
			return err
		}
		return repo.Delete(ctx, ownerID, id)
	})
}

// Get returns one transaction.
func (s *Service) Get(ctx context.Context, ownerID, id uuid.UUID) (*transaction.Transaction, error) {
	repo, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	return repo.Get(ctx, ownerID, id)
}

// ListByOwner returns all of an owner's transactions.
func (s *Service) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*transaction.Transaction, error) {
	repo, err := s.uow.TransactionRepository()
	if err != nil {
		return nil, err
	}
	return repo.ListByOwner(ctx, ownerID)
}

// ApplyEffect folds t's balance effect into its accounts inside the given
// unit of work. The scheduler composes this with occurrence generation so
// both live inside one transaction.
func (s *Service) ApplyEffect(ctx context.Context, uow repository.UnitOfWork, t *transaction.Transaction) error {
	return s.fold(ctx, uow, t, t.Amount)
}

// ReverseEffect is the exact algebraic inverse of ApplyEffect.
func (s *Service) ReverseEffect(ctx context.Context, uow repository.UnitOfWork, t *transaction.Transaction) error {
	return s.fold(ctx, uow, t, t.Amount.Negate())
}

// fold applies the signed effect of t. Templates fold nothing.
func (s *Service) fold(ctx context.Context, uow repository.UnitOfWork, t *transaction.Transaction, delta money.Money) error {
	if t.IsTemplate() {
		return nil
	}
	accounts, err := uow.AccountRepository()
	if err != nil {
		return err
	}
	if t.Kind == transaction.KindTransfer {
		return s.foldTransfer(ctx, accounts, t, delta)
	}

	source, err := accounts.GetForUpdate(ctx, t.OwnerID, t.AccountID)
	if err != nil {
		return fmt.Errorf("loading source account %s: %w", t.AccountID, err)
	}

	switch t.Kind {
	case transaction.KindIncome:
		if err := source.Credit(delta); err != nil {
			return err
		}
	case transaction.KindExpense:
		if err := source.Debit(delta); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown transaction kind %q", domain.ErrValidation, t.Kind)
	}

	if err := accounts.Update(ctx, source); err != nil {
		return err
	}
	s.logger.Debug("Balance effect folded",
		"transaction", t.ID, "kind", t.Kind, "delta", delta.String())
	return nil
}

// foldTransfer locks both accounts in id order, so opposite transfers between
// the same pair acquire their row locks the same way and cannot deadlock.
func (s *Service) foldTransfer(ctx context.Context, accounts repository.AccountRepository, t *transaction.Transaction, delta money.Money) error {
	if t.DestinationID == nil {
		return fmt.Errorf("%w: transfer without destination", domain.ErrValidation)
	}
	first, second := t.AccountID, *t.DestinationID
	if bytes.Compare(first[:], second[:]) > 0 {
		first, second = second, first
	}
	locked := make(map[uuid.UUID]*account.Account, 2)
	for _, id := range []uuid.UUID{first, second} {
		a, err := accounts.GetForUpdate(ctx, t.OwnerID, id)
		if err != nil {
			return fmt.Errorf("loading account %s: %w", id, err)
		}
		locked[id] = a
	}
	source, destination := locked[t.AccountID], locked[*t.DestinationID]

	if err := source.Debit(delta); err != nil {
		return err
	}
	if err := destination.Credit(delta); err != nil {
		return err
	}
	if err := accounts.Update(ctx, destination); err != nil {
		return err
	}
	if err := accounts.Update(ctx, source); err != nil {
		return err
	}
	s.logger.Debug("Balance effect folded",
		"transaction", t.ID, "kind", t.Kind, "delta", delta.String())
	return nil
}
