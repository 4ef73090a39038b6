// Package investment defines buy/sell records and the holding projection
// derived from them.
//
// The record log is the source of truth. A Holding row is never mutated by
// formula inversion: any change to the log (apply, edit, delete) is followed
// by replaying the remaining records for that (account, symbol) pair, so undo
// is simply excluding a record from the fold. This recovers the true
// historical average price even after a position was fully closed out.
package investment

import (
	"fmt"
	"time"

	"github.com/fintrack/fintrack/pkg/currency"
	"github.com/fintrack/fintrack/pkg/domain"
	"github.com/fintrack/fintrack/pkg/money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrQuantityMustBePositive is returned when a buy/sell quantity is not
	// strictly positive.
	ErrQuantityMustBePositive = fmt.Errorf("%w: quantity must be positive", domain.ErrValidation)

	// ErrPriceMustBePositive is returned when a unit price is not strictly
	// positive.
	ErrPriceMustBePositive = fmt.Errorf("%w: price must be positive", domain.ErrValidation)

	// ErrSymbolRequired is returned when a record has no symbol.
	ErrSymbolRequired = fmt.Errorf("%w: symbol is required", domain.ErrValidation)

	// ErrUnknownKind is returned for a record kind outside BUY/SELL.
	ErrUnknownKind = fmt.Errorf("%w: unknown investment transaction kind", domain.ErrValidation)

	// ErrUnknownAssetKind is returned for an asset kind outside EQUITY/CRYPTO.
	ErrUnknownAssetKind = fmt.Errorf("%w: unknown asset kind", domain.ErrValidation)
)

// Kind is the direction of an investment transaction.
type Kind string

const (
	KindBuy  Kind = "BUY"
	KindSell Kind = "SELL"
)

// Valid reports whether the kind is BUY or SELL.
func (k Kind) Valid() bool { return k == KindBuy || k == KindSell }

// AssetKind classifies the traded asset.
type AssetKind string

const (
	AssetEquity AssetKind = "EQUITY"
	AssetCrypto AssetKind = "CRYPTO"
)

// Valid reports whether the asset kind is one of the known values.
func (a AssetKind) Valid() bool { return a == AssetEquity || a == AssetCrypto }

// Transaction is a single immutable buy or sell record.
type Transaction struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	AccountID uuid.UUID
	HoldingID *uuid.UUID // set once the record has been projected onto a holding
	Kind      Kind
	Symbol    string
	AssetKind AssetKind
	Quantity  money.Quantity
	Price     money.Money // unit price
	Date      time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks every record invariant before the record enters the log.
func (t *Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrUnknownKind
	}
	if t.Symbol == "" {
		return ErrSymbolRequired
	}
	if !t.AssetKind.Valid() {
		return ErrUnknownAssetKind
	}
	if !t.Quantity.IsPositive() {
		return ErrQuantityMustBePositive
	}
	if !t.Price.IsPositive() {
		return ErrPriceMustBePositive
	}
	return nil
}

// Holding is the projected position for one (owner, account, symbol) triple.
//
// Invariant: a holding with zero quantity does not exist as a persisted row;
// it is deleted exactly when the projection folds to zero.
type Holding struct {
	ID           uuid.UUID
	OwnerID      uuid.UUID
	AccountID    uuid.UUID
	Symbol       string
	AssetKind    AssetKind
	Quantity     money.Quantity
	AveragePrice money.Money // quantity-weighted mean purchase price
	MarkPrice    money.Money // latest known market price
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// MarketValue returns quantity × mark price.
func (h *Holding) MarketValue() money.Money { return h.Quantity.Mul(h.MarkPrice) }

// CostBasis returns quantity × average purchase price.
func (h *Holding) CostBasis() money.Money { return h.Quantity.Mul(h.AveragePrice) }

// Position is the fold state of a buy/sell log for one symbol.
type Position struct {
	Quantity    money.Quantity
	averageCost decimal.Decimal // unrounded, to avoid drift across many buys
	AssetKind   AssetKind
	Currency    currency.Code
	LastPrice   money.Money // price of the most recent record, used as a mark seed
}

// Replay folds records (ordered by date, then insertion) into a Position.
//
// Buy: newAvg = (qty·avg + dq·price) / (qty+dq).
// Sell: quantity drops, floored at zero; the average purchase price of the
// remaining shares is unchanged.
func Replay(records []*Transaction) Position {
	pos := Position{
		Quantity:  money.ZeroQuantity(),
		AssetKind: AssetEquity,
	}
	for _, rec := range records {
		if rec.AssetKind.Valid() {
			pos.AssetKind = rec.AssetKind
		}
		pos.Currency = rec.Price.Currency()
		pos.LastPrice = rec.Price
		switch rec.Kind {
		case KindBuy:
			oldCost := pos.Quantity.Decimal().Mul(pos.averageCost)
			addedCost := rec.Quantity.Decimal().Mul(rec.Price.Amount())
			pos.Quantity = pos.Quantity.Add(rec.Quantity)
			pos.averageCost = oldCost.Add(addedCost).Div(pos.Quantity.Decimal())
		case KindSell:
			pos.Quantity = pos.Quantity.Sub(rec.Quantity)
			if !pos.Quantity.IsPositive() {
				pos.Quantity = money.ZeroQuantity()
				pos.averageCost = decimal.Zero
			}
		}
	}
	return pos
}

// IsClosed reports whether the folded position holds nothing.
func (p Position) IsClosed() bool { return p.Quantity.IsZero() }

// AveragePrice returns the weighted-average purchase price rounded to the
// position currency's scale.
func (p Position) AveragePrice() money.Money {
	meta := currency.Get(p.Currency)
	m, err := money.New(p.averageCost.Round(int32(meta.Decimals)), p.Currency)
	if err != nil {
		return money.Zero(p.Currency)
	}
	return m
}
