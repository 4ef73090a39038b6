// Package currency holds the currency code type and the static metadata the
// engine needs for fixed-point arithmetic (decimal places per currency).
package currency

import "regexp"

// DefaultCurrency is the fallback currency code.
const DefaultCurrency Code = "USD"

// DefaultDecimals is the number of fractional digits assumed for currencies
// without registered metadata.
const DefaultDecimals = 2

// Code represents an ISO 4217 currency code (e.g. "USD", "EUR").
type Code string

func (c Code) String() string { return string(c) }

// Meta holds currency-specific metadata.
type Meta struct {
	Decimals int
	Symbol   string
}

// Common codes for convenience.
const (
	USD Code = "USD"
	EUR Code = "EUR"
	GBP Code = "GBP"
	JPY Code = "JPY"
	CHF Code = "CHF"
	CAD Code = "CAD"
	AUD Code = "AUD"
	CNY Code = "CNY"
	INR Code = "INR"
	KWD Code = "KWD"
)

var registry = map[Code]Meta{
	USD: {Decimals: 2, Symbol: "$"},
	EUR: {Decimals: 2, Symbol: "€"},
	GBP: {Decimals: 2, Symbol: "£"},
	JPY: {Decimals: 0, Symbol: "¥"},
	CHF: {Decimals: 2, Symbol: "CHF"},
	CAD: {Decimals: 2, Symbol: "C$"},
	AUD: {Decimals: 2, Symbol: "A$"},
	CNY: {Decimals: 2, Symbol: "¥"},
	INR: {Decimals: 2, Symbol: "₹"},
	KWD: {Decimals: 3, Symbol: "د.ك"},
}

var codeFormat = regexp.MustCompile(`^[A-Z]{3}$`)

// IsValidFormat reports whether code looks like an ISO 4217 code
// (three uppercase letters).
func IsValidFormat(code string) bool {
	return codeFormat.MatchString(code)
}

// IsSupported reports whether the code has registered metadata.
func IsSupported(code Code) bool {
	_, ok := registry[code]
	return ok
}

// Get returns the metadata for a currency code. Unknown but well-formed codes
// fall back to DefaultDecimals so amounts in exotic currencies still quantize.
func Get(code Code) Meta {
	if meta, ok := registry[code]; ok {
		return meta
	}
	return Meta{Decimals: DefaultDecimals}
}
