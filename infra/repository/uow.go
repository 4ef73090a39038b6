package repository

import (
	"context"
	"errors"

	"github.com/fintrack/fintrack/pkg/repository"
	"gorm.io/gorm"
)

// ErrNoSession is returned when a repository is requested from a unit of work
// that has no database session.
var ErrNoSession = errors.New("unit of work has no database session")

// UoW implements repository.UnitOfWork over a GORM database.
//
// Outside Do, repositories run against the base connection with auto-commit
// per statement. Inside Do, the callback receives a UoW whose repositories
// are bound to one transaction; nested Do calls join that transaction rather
// than opening a second one.
type UoW struct {
	db *gorm.DB
	tx *gorm.DB
}

// NewUoW creates a unit of work over the given database.
func NewUoW(db *gorm.DB) *UoW {
	return &UoW{db: db}
}

// Do runs fn inside a single database transaction.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	if u.tx != nil {
		return fn(u)
	}
	if u.db == nil {
		return ErrNoSession
	}
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, tx: tx})
	})
}

func (u *UoW) session() (*gorm.DB, error) {
	if u.tx != nil {
		return u.tx, nil
	}
	if u.db != nil {
		return u.db, nil
	}
	return nil, ErrNoSession
}

// AccountRepository returns an account repository bound to the current
// session.
func (u *UoW) AccountRepository() (repository.AccountRepository, error) {
	db, err := u.session()
	if err != nil {
		return nil, err
	}
	return NewAccountRepository(db), nil
}

// TransactionRepository returns a transaction repository bound to the current
// session.
func (u *UoW) TransactionRepository() (repository.TransactionRepository, error) {
	db, err := u.session()
	if err != nil {
		return nil, err
	}
	return NewTransactionRepository(db), nil
}

// HoldingRepository returns a holding repository bound to the current
// session.
func (u *UoW) HoldingRepository() (repository.HoldingRepository, error) {
	db, err := u.session()
	if err != nil {
		return nil, err
	}
	return NewHoldingRepository(db), nil
}

// InvestmentRepository returns an investment record repository bound to the
// current session.
func (u *UoW) InvestmentRepository() (repository.InvestmentRepository, error) {
	db, err := u.session()
	if err != nil {
		return nil, err
	}
	return NewInvestmentRepository(db), nil
}
