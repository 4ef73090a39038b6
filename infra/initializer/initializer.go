// Package initializer wires the application's dependencies.
package initializer

import (
	"context"
	"fmt"

	infracache "github.com/fintrack/fintrack/infra/cache"
	"github.com/fintrack/fintrack/infra/database"
	infraprovider "github.com/fintrack/fintrack/infra/provider"
	infrarepo "github.com/fintrack/fintrack/infra/repository"
	"github.com/fintrack/fintrack/pkg/config"
	accountsvc "github.com/fintrack/fintrack/pkg/service/account"
	"github.com/fintrack/fintrack/pkg/service/exchange"
	investmentsvc "github.com/fintrack/fintrack/pkg/service/investment"
	"github.com/fintrack/fintrack/pkg/service/ledger"
	"github.com/fintrack/fintrack/pkg/service/recurring"
	"github.com/fintrack/fintrack/pkg/service/valuation"
	"github.com/fintrack/fintrack/webapi"
)

// InitializeDependencies builds every service the web layer needs.
func InitializeDependencies(ctx context.Context, cfg *config.App) (*webapi.Deps, error) {
	logger := setupLogger(cfg.Log)

	db, err := database.Connect(ctx, cfg.DB.Url, logger)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	uow := infrarepo.NewUoW(db)

	rateProvider := infraprovider.NewExchangeRateAPI(cfg.Exchange, logger)
	rateCache := infracache.NewMemoryCache()
	exchangeSvc := exchange.New(rateProvider, rateCache, cfg.Exchange.CacheTTL, logger)

	ledgerSvc := ledger.New(uow, logger)

	return &webapi.Deps{
		Account:    accountsvc.New(uow, logger),
		Ledger:     ledgerSvc,
		Investment: investmentsvc.New(uow, logger),
		Recurring:  recurring.New(uow, ledgerSvc, logger),
		Valuation:  valuation.New(uow, exchangeSvc, logger),
		SweepToken: cfg.Sweep.Token,
		Logger:     logger,
	}, nil
}
