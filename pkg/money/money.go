// Package money provides the fixed-point value objects used by every money
// path in the engine: Money for amounts (currency-scale precision) and
// Quantity for investment units (eight fractional digits).
//
// All arithmetic is decimal based; binary floating point never touches a
// stored amount.
package money

import (
	"errors"
	"fmt"

	"github.com/fintrack/fintrack/pkg/currency"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidCurrencyCode is returned when a currency code is malformed.
	ErrInvalidCurrencyCode = errors.New("invalid currency code")

	// ErrCurrencyMismatch is returned when arithmetic mixes currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")

	// ErrTooManyDecimals is returned when an amount carries more fractional
	// digits than its currency (or the quantity scale) allows.
	ErrTooManyDecimals = errors.New("amount has too many decimal places")
)

// QuantityDecimals is the fractional precision of investment quantities.
// Eight digits covers fractional crypto units.
const QuantityDecimals = 8

// Money represents a monetary value in a specific currency.
// Invariants:
//   - The amount never carries more fractional digits than the currency allows.
//   - All arithmetic operations require matching currencies.
type Money struct {
	amount   decimal.Decimal
	currency currency.Code
}

// New creates a Money value from a decimal amount and a currency code.
func New(amount decimal.Decimal, code currency.Code) (Money, error) {
	if code == "" {
		code = currency.DefaultCurrency
	}
	if !currency.IsValidFormat(string(code)) {
		return Money{}, ErrInvalidCurrencyCode
	}
	meta := currency.Get(code)
	if !amount.Equal(amount.Round(int32(meta.Decimals))) {
		return Money{}, fmt.Errorf("%w: %s allows %d", ErrTooManyDecimals, code, meta.Decimals)
	}
	return Money{amount: amount, currency: code}, nil
}

// NewFromString creates a Money value from a decimal string such as "12.50".
func NewFromString(amount string, code currency.Code) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	return New(d, code)
}

// NewFromFloat creates a Money value from a float64. The float must not carry
// more fractional digits than the currency allows; excess precision is an
// error, never silently rounded.
func NewFromFloat(amount float64, code currency.Code) (Money, error) {
	return New(decimal.NewFromFloat(amount), code)
}

// Zero returns the zero amount in the given currency.
func Zero(code currency.Code) Money {
	return Money{amount: decimal.Zero, currency: code}
}

// Amount returns the decimal amount.
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the currency code.
func (m Money) Currency() currency.Code { return m.currency }

// Add returns m + other. Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if !m.IsSameCurrency(other) {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Sub returns m - other. Currencies must match.
func (m Money) Sub(other Money) (Money, error) {
	if !m.IsSameCurrency(other) {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Negate returns the amount with its sign flipped.
func (m Money) Negate() Money {
	return Money{amount: m.amount.Neg(), currency: m.currency}
}

// Equal reports whether both value and currency match.
func (m Money) Equal(other Money) bool {
	return m.IsSameCurrency(other) && m.amount.Equal(other.amount)
}

// IsSameCurrency reports whether other is denominated in the same currency.
func (m Money) IsSameCurrency(other Money) bool { return m.currency == other.currency }

// IsPositive reports whether the amount is greater than zero.
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

// IsNegative reports whether the amount is less than zero.
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.amount.IsZero() }

// String renders the amount at the currency's scale, e.g. "12.50 USD".
func (m Money) String() string {
	meta := currency.Get(m.currency)
	return fmt.Sprintf("%s %s", m.amount.StringFixed(int32(meta.Decimals)), m.currency)
}

// Quantity represents an investment unit count with up to eight fractional
// digits. Quantities are currency-less.
type Quantity struct {
	value decimal.Decimal
}

// NewQuantity creates a Quantity from a decimal value.
func NewQuantity(value decimal.Decimal) (Quantity, error) {
	if !value.Equal(value.Round(QuantityDecimals)) {
		return Quantity{}, fmt.Errorf("%w: quantities allow %d", ErrTooManyDecimals, QuantityDecimals)
	}
	return Quantity{value: value}, nil
}

// NewQuantityFromString creates a Quantity from a decimal string.
func NewQuantityFromString(value string) (Quantity, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Quantity{}, fmt.Errorf("invalid quantity %q: %w", value, err)
	}
	return NewQuantity(d)
}

// ZeroQuantity returns the zero quantity.
func ZeroQuantity() Quantity { return Quantity{value: decimal.Zero} }

// Decimal returns the underlying decimal value.
func (q Quantity) Decimal() decimal.Decimal { return q.value }

// Add returns q + other.
func (q Quantity) Add(other Quantity) Quantity {
	return Quantity{value: q.value.Add(other.value)}
}

// Sub returns q - other.
func (q Quantity) Sub(other Quantity) Quantity {
	return Quantity{value: q.value.Sub(other.value)}
}

// Equal reports whether both quantities are numerically equal.
func (q Quantity) Equal(other Quantity) bool { return q.value.Equal(other.value) }

// GreaterThan reports whether q > other.
func (q Quantity) GreaterThan(other Quantity) bool { return q.value.GreaterThan(other.value) }

// IsPositive reports whether the quantity is greater than zero.
func (q Quantity) IsPositive() bool { return q.value.IsPositive() }

// IsNegative reports whether the quantity is less than zero.
func (q Quantity) IsNegative() bool { return q.value.IsNegative() }

// IsZero reports whether the quantity is zero.
func (q Quantity) IsZero() bool { return q.value.IsZero() }

// Mul prices the quantity at the given unit price, rounded to the price
// currency's scale.
func (q Quantity) Mul(price Money) Money {
	meta := currency.Get(price.Currency())
	return Money{
		amount:   q.value.Mul(price.Amount()).Round(int32(meta.Decimals)),
		currency: price.Currency(),
	}
}

// String renders the quantity at full quantity scale.
func (q Quantity) String() string { return q.value.StringFixed(QuantityDecimals) }
