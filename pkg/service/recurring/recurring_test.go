package recurring_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	infrarepo "github.com/fintrack/fintrack/infra/repository"
	"github.com/fintrack/fintrack/internal/testdb"
	"github.com/fintrack/fintrack/pkg/domain/account"
	"github.com/fintrack/fintrack/pkg/domain/transaction"
	"github.com/fintrack/fintrack/pkg/money"
	"github.com/fintrack/fintrack/pkg/repository"
	"github.com/fintrack/fintrack/pkg/service/ledger"
	"github.com/fintrack/fintrack/pkg/service/recurring"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
	os.Exit(m.Run())
}

type fixture struct {
	uow     repository.UnitOfWork
	ledger  *ledger.Service
	service *recurring.Service
	owner   uuid.UUID
	today   time.Time
}

func newFixture(t *testing.T, today time.Time) *fixture {
	t.Helper()
	uow := infrarepo.NewUoW(testdb.New(t))
	l := ledger.New(uow, slog.Default())
	return &fixture{
		uow:    uow,
		ledger: l,
		service: recurring.New(uow, l, slog.Default(),
			recurring.WithClock(func() time.Time { return today })),
		owner: uuid.New(),
		today: today,
	}
}

func (f *fixture) newAccount(t *testing.T) *account.Account {
	t.Helper()
	a, err := account.New().WithOwnerID(f.owner).WithName("checking").WithCurrency("USD").Build()
	require.NoError(t, err)
	repo, err := f.uow.AccountRepository()
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), a))
	return a
}

func (f *fixture) newTemplate(t *testing.T, accountID uuid.UUID, freq transaction.Frequency, date time.Time) *transaction.Transaction {
	t.Helper()
	amount, err := money.NewFromString("9.99", "USD")
	require.NoError(t, err)
	tpl := &transaction.Transaction{
		ID:          uuid.New(),
		OwnerID:     f.owner,
		AccountID:   accountID,
		Kind:        transaction.KindExpense,
		Amount:      amount,
		Category:    "subscriptions",
		Date:        date,
		IsRecurrent: true,
		Frequency:   freq,
	}
	require.NoError(t, f.ledger.Apply(context.Background(), tpl))
	return tpl
}

func (f *fixture) occurrences(t *testing.T, templateID uuid.UUID) []*transaction.Transaction {
	t.Helper()
	all, err := f.ledger.ListByOwner(context.Background(), f.owner)
	require.NoError(t, err)
	var out []*transaction.Transaction
	for _, tx := range all {
		if tx.ParentID != nil && *tx.ParentID == templateID {
			out = append(out, tx)
		}
	}
	return out
}

func (f *fixture) balance(t *testing.T, id uuid.UUID) string {
	t.Helper()
	repo, err := f.uow.AccountRepository()
	require.NoError(t, err)
	a, err := repo.Get(context.Background(), f.owner, id)
	require.NoError(t, err)
	return a.Balance.String()
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSweepGeneratesDueOccurrence(t *testing.T) {
	t.Parallel()
	f := newFixture(t, day(2026, 1, 15))
	acc := f.newAccount(t)
	tpl := f.newTemplate(t, acc.ID, transaction.FrequencyMonthly, day(2026, 1, 15))

	result, err := f.service.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Created)
	assert.Empty(t, result.Errors)

	occ := f.occurrences(t, tpl.ID)
	require.Len(t, occ, 1)
	assert.True(t, occ[0].Date.Equal(day(2026, 1, 15)))
	assert.False(t, occ[0].IsRecurrent)
	assert.Equal(t, "-9.99 USD", f.balance(t, acc.ID))
}

func TestSweepNoDoubleFire(t *testing.T) {
	t.Parallel()
	f := newFixture(t, day(2026, 1, 15))
	acc := f.newAccount(t)
	tpl := f.newTemplate(t, acc.ID, transaction.FrequencyMonthly, day(2026, 1, 15))
	ctx := context.Background()

	first, err := f.service.RunSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)

	second, err := f.service.RunSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Processed)
	assert.Equal(t, 0, second.Created)

	assert.Len(t, f.occurrences(t, tpl.ID), 1)
	assert.Equal(t, "-9.99 USD", f.balance(t, acc.ID))
}

func TestSweepCatchesUpOnePeriodPerRun(t *testing.T) {
	t.Parallel()
	f := newFixture(t, day(2026, 3, 1))
	acc := f.newAccount(t)
	tpl := f.newTemplate(t, acc.ID, transaction.FrequencyMonthly, day(2026, 1, 15))
	ctx := context.Background()

	// Jan 15 and Feb 15 are overdue; Mar 15 is in the future.
	expected := []time.Time{day(2026, 1, 15), day(2026, 2, 15)}
	for i := range expected {
		result, err := f.service.RunSweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Created, "sweep %d", i+1)
	}

	result, err := f.service.RunSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Created)

	occ := f.occurrences(t, tpl.ID)
	require.Len(t, occ, len(expected))
	for i, want := range expected {
		assert.True(t, occ[i].Date.Equal(want), "occurrence %d: got %s", i, occ[i].Date)
	}
	assert.Equal(t, "-19.98 USD", f.balance(t, acc.ID))
}

func TestSweepFutureTemplateNotDue(t *testing.T) {
	t.Parallel()
	f := newFixture(t, day(2026, 1, 1))
	acc := f.newAccount(t)
	tpl := f.newTemplate(t, acc.ID, transaction.FrequencyWeekly, day(2026, 2, 1))

	result, err := f.service.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Created)
	assert.Empty(t, f.occurrences(t, tpl.ID))
}

func TestSweepIsolatesTemplateFailures(t *testing.T) {
	t.Parallel()
	f := newFixture(t, day(2026, 1, 15))
	acc := f.newAccount(t)
	good := f.newTemplate(t, acc.ID, transaction.FrequencyMonthly, day(2026, 1, 15))
	// This template references an account that does not exist.
	bad := f.newTemplate(t, uuid.New(), transaction.FrequencyMonthly, day(2026, 1, 10))

	result, err := f.service.RunSweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Created)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], bad.ID.String())

	// The failed template's occurrence rolled back with its effect, so a
	// later sweep can retry it.
	assert.Len(t, f.occurrences(t, good.ID), 1)
	assert.Empty(t, f.occurrences(t, bad.ID))
}
