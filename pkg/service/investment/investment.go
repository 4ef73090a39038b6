// Package investment maintains holdings as projections of the buy/sell
// record log.
//
// Mutations never invert a stored average in place. A change to the log is
// followed by refolding the remaining records for the (account, symbol)
// pair, so reversing a record is the same operation as deleting it: exclude
// it from the fold. When a fold recreates a position that was previously
// closed out, the historical average price comes back exactly, because the
// buys that produced it are still in the log.
package investment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fintrack/fintrack/pkg/domain"
	inv "github.com/fintrack/fintrack/pkg/domain/investment"
	"github.com/fintrack/fintrack/pkg/money"
	"github.com/fintrack/fintrack/pkg/repository"
	"github.com/google/uuid"
)

// Service is the investment ledger.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
}

// New creates an investment ledger service.
func New(uow repository.UnitOfWork, logger *slog.Logger) *Service {
	return &Service{uow: uow, logger: logger}
}

// Apply validates t, appends it to the record log and reprojects the
// affected holding, all in one unit of work. A sell requires an existing
// holding for its symbol.
func (s *Service) Apply(ctx context.Context, t *inv.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		holdings, err := uow.HoldingRepository()
		if err != nil {
			return err
		}
		// Lock the holding row up front so concurrent mutations of the same
		// position serialize on it.
		_, err = holdings.GetBySymbolForUpdate(ctx, t.OwnerID, t.AccountID, t.Symbol)
		if err != nil {
			if !errors.Is(err, domain.ErrHoldingNotFound) {
				return err
			}
			if t.Kind == inv.KindSell {
				return fmt.Errorf("selling %s: %w", t.Symbol, domain.ErrHoldingNotFound)
			}
		}
		records, err := uow.InvestmentRepository()
		if err != nil {
			return err
		}
		if err := records.Create(ctx, t); err != nil {
			return err
		}
		return s.project(ctx, uow, t.OwnerID, t.AccountID, t.Symbol)
	})
}

// Reverse removes the stored record from the log and refolds the holding it
// affected. In a log-fold design this is the exact undo of Apply.
func (s *Service) Reverse(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		records, err := uow.InvestmentRepository()
		if err != nil {
			return err
		}
		t, err := records.Get(ctx, ownerID, id)
		if err != nil {
			return err
		}
		if err := lockHolding(ctx, uow, t.OwnerID, t.AccountID, t.Symbol); err != nil {
			return err
		}
		if err := records.Delete(ctx, ownerID, id); err != nil {
			return err
		}
		return s.project(ctx, uow, t.OwnerID, t.AccountID, t.Symbol)
	})
}

// Delete removes a record. Identical to Reverse: excluding the record from
// the fold is the reversal.
func (s *Service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.Reverse(ctx, ownerID, id)
}

// Update replaces the stored record and refolds every position it touched,
// old and new, atomically.
func (s *Service) Update(ctx context.Context, updated *inv.Transaction) error {
	if err := updated.Validate(); err != nil {
		return err
	}
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		records, err := uow.InvestmentRepository()
		if err != nil {
			return err
		}
		old, err := records.Get(ctx, updated.OwnerID, updated.ID)
		if err != nil {
			return err
		}
		if err := lockHolding(ctx, uow, old.OwnerID, old.AccountID, old.Symbol); err != nil {
			return err
		}
		moved := old.AccountID != updated.AccountID || old.Symbol != updated.Symbol
		if moved {
			if err := lockHolding(ctx, uow, updated.OwnerID, updated.AccountID, updated.Symbol); err != nil {
				return err
			}
		}
		updated.CreatedAt = old.CreatedAt
		updated.UpdatedAt = time.Now().UTC()
		if err := records.Update(ctx, updated); err != nil {
			return err
		}
		if moved {
			if err := s.project(ctx, uow, old.OwnerID, old.AccountID, old.Symbol); err != nil {
				return err
			}
		}
		return s.project(ctx, uow, updated.OwnerID, updated.AccountID, updated.Symbol)
	})
}

// SetMarkPrice updates the holding's current market price.
func (s *Service) SetMarkPrice(ctx context.Context, ownerID, accountID uuid.UUID, symbol string, price money.Money) error {
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		holdings, err := uow.HoldingRepository()
		if err != nil {
			return err
		}
		h, err := holdings.GetBySymbolForUpdate(ctx, ownerID, accountID, symbol)
		if err != nil {
			return err
		}
		h.MarkPrice = price
		h.UpdatedAt = time.Now().UTC()
		return holdings.Update(ctx, h)
	})
}

// Holdings returns all of an owner's holdings.
func (s *Service) Holdings(ctx context.Context, ownerID uuid.UUID) ([]*inv.Holding, error) {
	repo, err := s.uow.HoldingRepository()
	if err != nil {
		return nil, err
	}
	return repo.ListByOwner(ctx, ownerID)
}

// Holding returns one holding by (account, symbol).
func (s *Service) Holding(ctx context.Context, ownerID, accountID uuid.UUID, symbol string) (*inv.Holding, error) {
	repo, err := s.uow.HoldingRepository()
	if err != nil {
		return nil, err
	}
	return repo.GetBySymbol(ctx, ownerID, accountID, symbol)
}

// Records returns all of an owner's buy/sell records.
func (s *Service) Records(ctx context.Context, ownerID uuid.UUID) ([]*inv.Transaction, error) {
	repo, err := s.uow.InvestmentRepository()
	if err != nil {
		return nil, err
	}
	return repo.ListByOwner(ctx, ownerID)
}

// lockHolding serializes mutations of one (account, symbol) position on its
// holding row. A missing row is fine: the position may be closed out.
func lockHolding(ctx context.Context, uow repository.UnitOfWork, ownerID, accountID uuid.UUID, symbol string) error {
	holdings, err := uow.HoldingRepository()
	if err != nil {
		return err
	}
	if _, err := holdings.GetBySymbolForUpdate(ctx, ownerID, accountID, symbol); err != nil &&
		!errors.Is(err, domain.ErrHoldingNotFound) {
		return err
	}
	return nil
}

// project refolds the record log for one (account, symbol) pair into its
// holding row: created when the fold opens a position, updated while it is
// open, deleted the moment it folds to zero.
func (s *Service) project(ctx context.Context, uow repository.UnitOfWork, ownerID, accountID uuid.UUID, symbol string) error {
	records, err := uow.InvestmentRepository()
	if err != nil {
		return err
	}
	holdings, err := uow.HoldingRepository()
	if err != nil {
		return err
	}

	log, err := records.ListBySymbol(ctx, ownerID, accountID, symbol)
	if err != nil {
		return err
	}
	pos := inv.Replay(log)

	existing, err := holdings.GetBySymbol(ctx, ownerID, accountID, symbol)
	if err != nil && !errors.Is(err, domain.ErrHoldingNotFound) {
		return err
	}

	if pos.IsClosed() {
		if existing == nil {
			return nil
		}
		s.logger.Info("Holding closed out", "symbol", symbol, "account", accountID)
		return holdings.Delete(ctx, ownerID, existing.ID)
	}

	now := time.Now().UTC()
	if existing == nil {
		h := &inv.Holding{
			ID:           uuid.New(),
			OwnerID:      ownerID,
			AccountID:    accountID,
			Symbol:       symbol,
			AssetKind:    pos.AssetKind,
			Quantity:     pos.Quantity,
			AveragePrice: pos.AveragePrice(),
			MarkPrice:    pos.LastPrice,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return holdings.Create(ctx, h)
	}

	existing.AssetKind = pos.AssetKind
	existing.Quantity = pos.Quantity
	existing.AveragePrice = pos.AveragePrice()
	if existing.MarkPrice.IsZero() {
		existing.MarkPrice = pos.LastPrice
	}
	existing.UpdatedAt = now
	return holdings.Update(ctx, existing)
}
