// Package account defines the Account aggregate: a primary-currency balance
// plus zero or more secondary-currency balance buckets.
//
// Balances are derived state. They are mutated only by the transaction ledger
// folding applied transaction effects into them; the aggregate itself has no
// public write path besides Credit and Debit.
package account

import (
	"errors"
	"time"

	"github.com/fintrack/fintrack/pkg/currency"
	"github.com/fintrack/fintrack/pkg/money"
	"github.com/google/uuid"
)

// ErrOwnerRequired is returned when an account is built without an owner.
var ErrOwnerRequired = errors.New("owner id is required")

// Account represents an owner's financial account.
//
// Invariants:
//   - Every account has an owner and a primary currency.
//   - The balance in each currency equals the fold of all currently-applied
//     transaction effects referencing this account in that currency.
type Account struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	Balance   money.Money   // primary-currency balance
	Secondary []money.Money // one bucket per non-primary currency
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Builder provides a fluent API for constructing Account values and for
// hydrating them from a data store.
type Builder struct {
	id        uuid.UUID
	ownerID   uuid.UUID
	name      string
	currency  currency.Code
	balance   money.Money
	secondary []money.Money
	createdAt time.Time
	updatedAt time.Time
}

// New creates a Builder with a fresh ID and the default currency.
func New() *Builder {
	return &Builder{
		id:        uuid.New(),
		currency:  currency.DefaultCurrency,
		createdAt: time.Now().UTC(),
	}
}

// WithID sets the account ID.
func (b *Builder) WithID(id uuid.UUID) *Builder { b.id = id; return b }

// WithOwnerID sets the owner. Mandatory.
func (b *Builder) WithOwnerID(ownerID uuid.UUID) *Builder { b.ownerID = ownerID; return b }

// WithName sets the display name.
func (b *Builder) WithName(name string) *Builder { b.name = name; return b }

// WithCurrency sets the primary currency.
func (b *Builder) WithCurrency(code currency.Code) *Builder { b.currency = code; return b }

// WithBalance sets the primary balance. For store hydration and test setup.
func (b *Builder) WithBalance(balance money.Money) *Builder { b.balance = balance; return b }

// WithSecondary sets the secondary-currency buckets. For store hydration.
func (b *Builder) WithSecondary(buckets []money.Money) *Builder { b.secondary = buckets; return b }

// WithCreatedAt sets the creation timestamp. For store hydration.
func (b *Builder) WithCreatedAt(t time.Time) *Builder { b.createdAt = t; return b }

// WithUpdatedAt sets the last-updated timestamp. For store hydration.
func (b *Builder) WithUpdatedAt(t time.Time) *Builder { b.updatedAt = t; return b }

// Build validates the invariants and returns the Account.
func (b *Builder) Build() (*Account, error) {
	if !currency.IsValidFormat(string(b.currency)) {
		return nil, money.ErrInvalidCurrencyCode
	}
	if b.ownerID == uuid.Nil {
		return nil, ErrOwnerRequired
	}
	balance := b.balance
	if balance.Currency() == "" {
		balance = money.Zero(b.currency)
	}
	if balance.Currency() != b.currency {
		return nil, money.ErrCurrencyMismatch
	}
	return &Account{
		ID:        b.id,
		OwnerID:   b.ownerID,
		Name:      b.name,
		Balance:   balance,
		Secondary: b.secondary,
		CreatedAt: b.createdAt,
		UpdatedAt: b.updatedAt,
	}, nil
}

// Currency returns the primary currency.
func (a *Account) Currency() currency.Code { return a.Balance.Currency() }

// BalanceFor returns the balance bucket for the given currency, zero when no
// bucket exists yet.
func (a *Account) BalanceFor(code currency.Code) money.Money {
	if code == a.Currency() {
		return a.Balance
	}
	for _, bucket := range a.Secondary {
		if bucket.Currency() == code {
			return bucket
		}
	}
	return money.Zero(code)
}

// Credit adds amount to the balance bucket matching its currency, creating a
// secondary bucket on first use.
func (a *Account) Credit(amount money.Money) error {
	return a.fold(amount)
}

// Debit subtracts amount from the balance bucket matching its currency.
func (a *Account) Debit(amount money.Money) error {
	return a.fold(amount.Negate())
}

func (a *Account) fold(delta money.Money) error {
	if delta.Currency() == a.Currency() {
		next, err := a.Balance.Add(delta)
		if err != nil {
			return err
		}
		a.Balance = next
		return nil
	}
	for i, bucket := range a.Secondary {
		if bucket.Currency() == delta.Currency() {
			next, err := bucket.Add(delta)
			if err != nil {
				return err
			}
			a.Secondary[i] = next
			return nil
		}
	}
	a.Secondary = append(a.Secondary, delta)
	return nil
}
