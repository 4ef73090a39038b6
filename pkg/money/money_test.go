package money_test

import (
	"testing"

	"github.com/fintrack/fintrack/pkg/currency"
	"github.com/fintrack/fintrack/pkg/money"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		amount   string
		currency currency.Code
		wantErr  error
	}{
		{"two decimals USD", "12.50", "USD", nil},
		{"whole amount", "100", "USD", nil},
		{"zero decimals JPY", "1500", "JPY", nil},
		{"excess decimals USD", "12.505", "USD", money.ErrTooManyDecimals},
		{"excess decimals JPY", "1500.5", "JPY", money.ErrTooManyDecimals},
		{"three decimals KWD", "1.250", "KWD", nil},
		{"invalid code", "10", "usd", money.ErrInvalidCurrencyCode},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m, err := money.NewFromString(tt.amount, tt.currency)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.currency, m.Currency())
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	a, err := money.NewFromString("10.00", "USD")
	require.NoError(err)
	b, err := money.NewFromString("2.50", "USD")
	require.NoError(err)

	sum, err := a.Add(b)
	require.NoError(err)
	assert.Equal(t, "12.50 USD", sum.String())

	diff, err := a.Sub(b)
	require.NoError(err)
	assert.Equal(t, "7.50 USD", diff.String())

	eur, err := money.NewFromString("1.00", "EUR")
	require.NoError(err)
	_, err = a.Add(eur)
	assert.ErrorIs(t, err, money.ErrCurrencyMismatch)

	assert.True(t, a.Negate().IsNegative())
	assert.True(t, money.Zero("USD").IsZero())
}

func TestQuantity(t *testing.T) {
	t.Parallel()
	require := require.New(t)

	q, err := money.NewQuantityFromString("0.00000001")
	require.NoError(err)
	assert.True(t, q.IsPositive())

	_, err = money.NewQuantityFromString("0.000000001")
	assert.ErrorIs(t, err, money.ErrTooManyDecimals)

	// 1.5 units at 2.00 USD each.
	qty, err := money.NewQuantity(decimal.RequireFromString("1.5"))
	require.NoError(err)
	price, err := money.NewFromString("2.00", "USD")
	require.NoError(err)
	assert.Equal(t, "3.00 USD", qty.Mul(price).String())

	// Fractional product rounds to the currency scale.
	third, err := money.NewQuantity(decimal.RequireFromString("0.333"))
	require.NoError(err)
	assert.Equal(t, "0.67 USD", third.Mul(price).String())
}
