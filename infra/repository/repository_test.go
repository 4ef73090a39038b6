package repository_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	infrarepo "github.com/fintrack/fintrack/infra/repository"
	"github.com/fintrack/fintrack/internal/testdb"
	"github.com/fintrack/fintrack/pkg/domain"
	"github.com/fintrack/fintrack/pkg/domain/account"
	"github.com/fintrack/fintrack/pkg/domain/transaction"
	"github.com/fintrack/fintrack/pkg/money"
	"github.com/fintrack/fintrack/pkg/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

func newAccount(t *testing.T, uow repository.UnitOfWork, owner uuid.UUID) *account.Account {
	t.Helper()
	a, err := account.New().WithOwnerID(owner).WithName("checking").WithCurrency("USD").Build()
	require.NoError(t, err)
	repo, err := uow.AccountRepository()
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), a))
	return a
}

func newTemplate(t *testing.T, uow repository.UnitOfWork, owner, accountID uuid.UUID) *transaction.Transaction {
	t.Helper()
	amount, err := money.NewFromString("9.99", "USD")
	require.NoError(t, err)
	tpl := &transaction.Transaction{
		ID:          uuid.New(),
		OwnerID:     owner,
		AccountID:   accountID,
		Kind:        transaction.KindExpense,
		Amount:      amount,
		Date:        time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		IsRecurrent: true,
		Frequency:   transaction.FrequencyMonthly,
	}
	repo, err := uow.TransactionRepository()
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), tpl))
	return tpl
}

func occurrence(tpl *transaction.Transaction, date time.Time) *transaction.Transaction {
	parent := tpl.ID
	return &transaction.Transaction{
		ID:        uuid.New(),
		OwnerID:   tpl.OwnerID,
		AccountID: tpl.AccountID,
		Kind:      tpl.Kind,
		Amount:    tpl.Amount,
		Date:      date,
		ParentID:  &parent,
	}
}

func TestCreateOccurrenceInsertIfAbsent(t *testing.T) {
	t.Parallel()
	uow := infrarepo.NewUoW(testdb.New(t))
	owner := uuid.New()
	acc := newAccount(t, uow, owner)
	tpl := newTemplate(t, uow, owner, acc.ID)
	repo, err := uow.TransactionRepository()
	require.NoError(t, err)
	ctx := context.Background()
	day := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	inserted, err := repo.CreateOccurrence(ctx, occurrence(tpl, day))
	require.NoError(t, err)
	assert.True(t, inserted)

	// Same template, same day: the insert is silently skipped.
	inserted, err = repo.CreateOccurrence(ctx, occurrence(tpl, day))
	require.NoError(t, err)
	assert.False(t, inserted)

	// A different day inserts fine.
	inserted, err = repo.CreateOccurrence(ctx, occurrence(tpl, day.AddDate(0, 1, 0)))
	require.NoError(t, err)
	assert.True(t, inserted)
}

func TestLatestOccurrenceDate(t *testing.T) {
	t.Parallel()
	uow := infrarepo.NewUoW(testdb.New(t))
	owner := uuid.New()
	acc := newAccount(t, uow, owner)
	tpl := newTemplate(t, uow, owner, acc.ID)
	repo, err := uow.TransactionRepository()
	require.NoError(t, err)
	ctx := context.Background()

	latest, err := repo.LatestOccurrenceDate(ctx, tpl.ID)
	require.NoError(t, err)
	assert.True(t, latest.IsZero())

	first := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	second := first.AddDate(0, 1, 0)
	_, err = repo.CreateOccurrence(ctx, occurrence(tpl, first))
	require.NoError(t, err)
	_, err = repo.CreateOccurrence(ctx, occurrence(tpl, second))
	require.NoError(t, err)

	latest, err = repo.LatestOccurrenceDate(ctx, tpl.ID)
	require.NoError(t, err)
	assert.True(t, latest.Equal(second))
}

func TestUoWRollsBackOnError(t *testing.T) {
	t.Parallel()
	uow := infrarepo.NewUoW(testdb.New(t))
	owner := uuid.New()
	acc := newAccount(t, uow, owner)
	ctx := context.Background()

	boom := errors.New("boom")
	err := uow.Do(ctx, func(inner repository.UnitOfWork) error {
		repo, err := inner.AccountRepository()
		if err != nil {
			return err
		}
		loaded, err := repo.GetForUpdate(ctx, owner, acc.ID)
		if err != nil {
			return err
		}
		hundred, err := money.NewFromString("100.00", "USD")
		if err != nil {
			return err
		}
		if err := loaded.Credit(hundred); err != nil {
			return err
		}
		if err := repo.Update(ctx, loaded); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	repo, err := uow.AccountRepository()
	require.NoError(t, err)
	reloaded, err := repo.Get(ctx, owner, acc.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Balance.IsZero())
}

func TestUoWNestedDoJoinsTransaction(t *testing.T) {
	t.Parallel()
	uow := infrarepo.NewUoW(testdb.New(t))
	owner := uuid.New()
	acc := newAccount(t, uow, owner)
	ctx := context.Background()

	boom := errors.New("boom")
	err := uow.Do(ctx, func(outer repository.UnitOfWork) error {
		return outer.Do(ctx, func(inner repository.UnitOfWork) error {
			repo, err := inner.AccountRepository()
			if err != nil {
				return err
			}
			loaded, err := repo.GetForUpdate(ctx, owner, acc.ID)
			if err != nil {
				return err
			}
			ten, err := money.NewFromString("10.00", "USD")
			if err != nil {
				return err
			}
			if err := loaded.Credit(ten); err != nil {
				return err
			}
			if err := repo.Update(ctx, loaded); err != nil {
				return err
			}
			return boom
		})
	})
	assert.ErrorIs(t, err, boom)

	repo, err := uow.AccountRepository()
	require.NoError(t, err)
	reloaded, err := repo.Get(ctx, owner, acc.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Balance.IsZero(), "nested rollback must undo the credit")
}

func TestAccountSecondaryBalanceUpsert(t *testing.T) {
	t.Parallel()
	uow := infrarepo.NewUoW(testdb.New(t))
	owner := uuid.New()
	acc := newAccount(t, uow, owner)
	repo, err := uow.AccountRepository()
	require.NoError(t, err)
	ctx := context.Background()

	eur, err := money.NewFromString("25.00", "EUR")
	require.NoError(t, err)
	require.NoError(t, acc.Credit(eur))
	require.NoError(t, repo.Update(ctx, acc))

	// Folding into the same bucket updates the row instead of duplicating it.
	require.NoError(t, acc.Credit(eur))
	require.NoError(t, repo.Update(ctx, acc))

	reloaded, err := repo.Get(ctx, owner, acc.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Secondary, 1)
	assert.Equal(t, "50.00 EUR", reloaded.BalanceFor("EUR").String())
}

func TestGetMissingAccountIsNotFound(t *testing.T) {
	t.Parallel()
	uow := infrarepo.NewUoW(testdb.New(t))
	repo, err := uow.AccountRepository()
	require.NoError(t, err)

	_, err = repo.Get(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrAccountNotFound)
}
