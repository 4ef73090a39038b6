package investment_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	infrarepo "github.com/fintrack/fintrack/infra/repository"
	"github.com/fintrack/fintrack/internal/testdb"
	"github.com/fintrack/fintrack/pkg/domain"
	inv "github.com/fintrack/fintrack/pkg/domain/investment"
	"github.com/fintrack/fintrack/pkg/money"
	"github.com/fintrack/fintrack/pkg/repository"
	investmentsvc "github.com/fintrack/fintrack/pkg/service/investment"
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
	service *investmentsvc.Service
	owner   uuid.UUID
	account uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	uow := infrarepo.NewUoW(testdb.New(t))
	return &fixture{
		uow:     uow,
		service: investmentsvc.New(uow, slog.Default()),
		owner:   uuid.New(),
		account: uuid.New(),
	}
}

func (f *fixture) record(t *testing.T, kind inv.Kind, qty, price string, day int) *inv.Transaction {
	t.Helper()
	q, err := money.NewQuantityFromString(qty)
	require.NoError(t, err)
	p, err := money.NewFromString(price, "USD")
	require.NoError(t, err)
	return &inv.Transaction{
		ID:        uuid.New(),
		OwnerID:   f.owner,
		AccountID: f.account,
		Kind:      kind,
		Symbol:    "AAPL",
		AssetKind: inv.AssetEquity,
		Quantity:  q,
		Price:     p,
		Date:      time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) holding(t *testing.T) (*inv.Holding, error) {
	t.Helper()
	return f.service.Holding(context.Background(), f.owner, f.account, "AAPL")
}

func TestApplyBuyCreatesHolding(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	require.NoError(t, f.service.Apply(context.Background(), f.record(t, inv.KindBuy, "10", "100.00", 1)))

	h, err := f.holding(t)
	require.NoError(t, err)
	assert.Equal(t, "10.00000000", h.Quantity.String())
	assert.Equal(t, "100.00 USD", h.AveragePrice.String())
	assert.Equal(t, "100.00 USD", h.MarkPrice.String())
	assert.Equal(t, inv.AssetEquity, h.AssetKind)
}

func TestApplyBuyMergesWeightedAverage(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.service.Apply(ctx, f.record(t, inv.KindBuy, "10", "100.00", 1)))
	require.NoError(t, f.service.Apply(ctx, f.record(t, inv.KindBuy, "5", "130.00", 2)))

	h, err := f.holding(t)
	require.NoError(t, err)
	assert.Equal(t, "15.00000000", h.Quantity.String())
	assert.Equal(t, "110.00 USD", h.AveragePrice.String())
}

func TestApplySellKeepsAverage(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.service.Apply(ctx, f.record(t, inv.KindBuy, "10", "100.00", 1)))
	require.NoError(t, f.service.Apply(ctx, f.record(t, inv.KindSell, "4", "150.00", 2)))

	h, err := f.holding(t)
	require.NoError(t, err)
	assert.Equal(t, "6.00000000", h.Quantity.String())
	assert.Equal(t, "100.00 USD", h.AveragePrice.String())
}

func TestSellWithoutHoldingRejected(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	err := f.service.Apply(context.Background(), f.record(t, inv.KindSell, "1", "10.00", 1))
	assert.ErrorIs(t, err, domain.ErrHoldingNotFound)
}

func TestZeroOutDeletesHolding(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.service.Apply(ctx, f.record(t, inv.KindBuy, "10", "100.00", 1)))
	require.NoError(t, f.service.Apply(ctx, f.record(t, inv.KindSell, "10", "120.00", 2)))

	_, err := f.holding(t)
	assert.ErrorIs(t, err, domain.ErrHoldingNotFound)
}

func TestReverseSellRecoversTrueAverage(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.service.Apply(ctx, f.record(t, inv.KindBuy, "10", "100.00", 1)))
	require.NoError(t, f.service.Apply(ctx, f.record(t, inv.KindBuy, "5", "130.00", 2)))

	sell := f.record(t, inv.KindSell, "15", "150.00", 3)
	require.NoError(t, f.service.Apply(ctx, sell))
	_, err := f.holding(t)
	require.ErrorIs(t, err, domain.ErrHoldingNotFound)

	// Undoing the sell refolds the surviving buys: the historical average
	// comes back exactly, not as an approximation from the sell price.
	require.NoError(t, f.service.Reverse(ctx, f.owner, sell.ID))
	h, err := f.holding(t)
	require.NoError(t, err)
	assert.Equal(t, "15.00000000", h.Quantity.String())
	assert.Equal(t, "110.00 USD", h.AveragePrice.String())
	assert.Equal(t, inv.AssetEquity, h.AssetKind)
}

func TestReverseBuyAdjustsAverage(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.service.Apply(ctx, f.record(t, inv.KindBuy, "10", "100.00", 1)))
	second := f.record(t, inv.KindBuy, "5", "130.00", 2)
	require.NoError(t, f.service.Apply(ctx, second))

	require.NoError(t, f.service.Delete(ctx, f.owner, second.ID))
	h, err := f.holding(t)
	require.NoError(t, err)
	assert.Equal(t, "10.00000000", h.Quantity.String())
	assert.Equal(t, "100.00 USD", h.AveragePrice.String())
}

func TestUpdateRefoldsHolding(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	buy := f.record(t, inv.KindBuy, "10", "100.00", 1)
	require.NoError(t, f.service.Apply(ctx, buy))

	updated := f.record(t, inv.KindBuy, "20", "90.00", 1)
	updated.ID = buy.ID
	require.NoError(t, f.service.Update(ctx, updated))

	h, err := f.holding(t)
	require.NoError(t, err)
	assert.Equal(t, "20.00000000", h.Quantity.String())
	assert.Equal(t, "90.00 USD", h.AveragePrice.String())
}

func TestUpdateMovesRecordBetweenAccounts(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	buy := f.record(t, inv.KindBuy, "10", "100.00", 1)
	require.NoError(t, f.service.Apply(ctx, buy))

	other := uuid.New()
	updated := f.record(t, inv.KindBuy, "10", "100.00", 1)
	updated.ID = buy.ID
	updated.AccountID = other
	require.NoError(t, f.service.Update(ctx, updated))

	// The old position refolds to nothing, the new account picks it up.
	_, err := f.holding(t)
	assert.ErrorIs(t, err, domain.ErrHoldingNotFound)
	h, err := f.service.Holding(ctx, f.owner, other, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "10.00000000", h.Quantity.String())
	assert.Equal(t, "100.00 USD", h.AveragePrice.String())
}

func TestSetMarkPrice(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.service.Apply(ctx, f.record(t, inv.KindBuy, "2", "100.00", 1)))

	mark, err := money.NewFromString("120.00", "USD")
	require.NoError(t, err)
	require.NoError(t, f.service.SetMarkPrice(ctx, f.owner, f.account, "AAPL", mark))

	h, err := f.holding(t)
	require.NoError(t, err)
	assert.Equal(t, "120.00 USD", h.MarkPrice.String())
	assert.Equal(t, "240.00 USD", h.MarketValue().String())
}

func TestDeleteMissingRecord(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	err := f.service.Delete(context.Background(), f.owner, uuid.New())
	assert.ErrorIs(t, err, domain.ErrInvestmentNotFound)
}
