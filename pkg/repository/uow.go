package repository

import "context"

// UnitOfWork is the transaction boundary every ledger mutation runs inside.
//
// Do executes fn within one database transaction; the UnitOfWork passed to fn
// hands out repositories bound to that transaction's session, so the
// read-modify-write of a derived entity (account balance, holding) is one
// atomic, isolated unit. If fn returns an error the transaction rolls back
// and no partial reversal survives.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	AccountRepository() (AccountRepository, error)
	TransactionRepository() (TransactionRepository, error)
	HoldingRepository() (HoldingRepository, error)
	InvestmentRepository() (InvestmentRepository, error)
}
