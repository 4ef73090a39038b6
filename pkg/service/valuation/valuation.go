// Package valuation produces read-only aggregates: total balance, portfolio
// value and gain/loss in a target currency.
//
// Each aggregate snapshots store state inside one unit of work, then
// converts outside it. Rate fetches block on the network and must never run
// inside a store transaction.
package valuation

import (
	"context"
	"log/slog"

	"github.com/fintrack/fintrack/pkg/currency"
	inv "github.com/fintrack/fintrack/pkg/domain/investment"
	"github.com/fintrack/fintrack/pkg/money"
	"github.com/fintrack/fintrack/pkg/repository"
	"github.com/fintrack/fintrack/pkg/service/exchange"
	"github.com/google/uuid"
)

// Service computes valuation aggregates. It never mutates store state.
type Service struct {
	uow      repository.UnitOfWork
	exchange *exchange.Service
	logger   *slog.Logger
}

// New creates a valuation service.
func New(uow repository.UnitOfWork, ex *exchange.Service, logger *slog.Logger) *Service {
	return &Service{uow: uow, exchange: ex, logger: logger}
}

// TotalBalance sums every balance bucket of every account the owner has,
// expressed in the target currency.
func (s *Service) TotalBalance(ctx context.Context, ownerID uuid.UUID, target currency.Code) (money.Money, error) {
	var amounts []money.Money
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		accounts, err := uow.AccountRepository()
		if err != nil {
			return err
		}
		all, err := accounts.ListByOwner(ctx, ownerID)
		if err != nil {
			return err
		}
		for _, a := range all {
			amounts = append(amounts, a.Balance)
			amounts = append(amounts, a.Secondary...)
		}
		return nil
	})
	if err != nil {
		return money.Money{}, err
	}
	return s.exchange.ConvertAndSum(ctx, amounts, target)
}

// PortfolioValue sums the market value of the owner's holdings, optionally
// restricted to one account, expressed in the target currency.
func (s *Service) PortfolioValue(ctx context.Context, ownerID uuid.UUID, accountID *uuid.UUID, target currency.Code) (money.Money, error) {
	holdings, err := s.snapshotHoldings(ctx, ownerID, accountID)
	if err != nil {
		return money.Money{}, err
	}
	amounts := make([]money.Money, 0, len(holdings))
	for _, h := range holdings {
		amounts = append(amounts, h.MarketValue())
	}
	return s.exchange.ConvertAndSum(ctx, amounts, target)
}

// GainLoss returns market value minus cost basis across the owner's
// holdings, expressed in the target currency.
func (s *Service) GainLoss(ctx context.Context, ownerID uuid.UUID, target currency.Code) (money.Money, error) {
	holdings, err := s.snapshotHoldings(ctx, ownerID, nil)
	if err != nil {
		return money.Money{}, err
	}
	values := make([]money.Money, 0, len(holdings))
	costs := make([]money.Money, 0, len(holdings))
	for _, h := range holdings {
		values = append(values, h.MarketValue())
		costs = append(costs, h.CostBasis())
	}
	value, err := s.exchange.ConvertAndSum(ctx, values, target)
	if err != nil {
		return money.Money{}, err
	}
	cost, err := s.exchange.ConvertAndSum(ctx, costs, target)
	if err != nil {
		return money.Money{}, err
	}
	return value.Sub(cost)
}

func (s *Service) snapshotHoldings(ctx context.Context, ownerID uuid.UUID, accountID *uuid.UUID) ([]*inv.Holding, error) {
	var holdings []*inv.Holding
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := uow.HoldingRepository()
		if err != nil {
			return err
		}
		if accountID != nil {
			holdings, err = repo.ListByAccount(ctx, ownerID, *accountID)
		} else {
			holdings, err = repo.ListByOwner(ctx, ownerID)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return holdings, nil
}
