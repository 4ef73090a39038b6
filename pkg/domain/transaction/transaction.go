// Package transaction defines the transaction record: the unit the ledger
// folds into account balances, and the template/instance pair behind
// recurring generation.
package transaction

import (
	"fmt"
	"time"

	"github.com/fintrack/fintrack/pkg/domain"
	"github.com/fintrack/fintrack/pkg/money"
	"github.com/google/uuid"
)

var (
	// ErrAmountMustBePositive is returned when a transaction amount is not
	// strictly positive.
	ErrAmountMustBePositive = fmt.Errorf("%w: amount must be positive", domain.ErrValidation)

	// ErrSameSourceAndDestination is returned when a transfer names the same
	// account on both sides.
	ErrSameSourceAndDestination = fmt.Errorf("%w: transfer source and destination must differ", domain.ErrValidation)

	// ErrDestinationRequired is returned when a transfer has no destination
	// account.
	ErrDestinationRequired = fmt.Errorf("%w: transfer requires a destination account", domain.ErrValidation)

	// ErrUnexpectedDestination is returned when a non-transfer carries a
	// destination account.
	ErrUnexpectedDestination = fmt.Errorf("%w: only transfers carry a destination account", domain.ErrValidation)

	// ErrFrequencyRequired is returned when a recurring template has no
	// frequency.
	ErrFrequencyRequired = fmt.Errorf("%w: recurring template requires a frequency", domain.ErrValidation)

	// ErrTemplateWithParent is returned when a recurring template claims a
	// parent template.
	ErrTemplateWithParent = fmt.Errorf("%w: recurring template cannot have a parent", domain.ErrValidation)

	// ErrUnknownKind is returned for a transaction kind outside
	// INCOME/EXPENSE/TRANSFER.
	ErrUnknownKind = fmt.Errorf("%w: unknown transaction kind", domain.ErrValidation)

	// ErrUnknownFrequency is returned for a frequency outside
	// DAILY/WEEKLY/MONTHLY/YEARLY.
	ErrUnknownFrequency = fmt.Errorf("%w: unknown recurrence frequency", domain.ErrValidation)
)

// Kind is the balance effect class of a transaction.
type Kind string

const (
	KindIncome   Kind = "INCOME"
	KindExpense  Kind = "EXPENSE"
	KindTransfer Kind = "TRANSFER"
)

// Valid reports whether the kind is one of the known values.
func (k Kind) Valid() bool {
	switch k {
	case KindIncome, KindExpense, KindTransfer:
		return true
	}
	return false
}

// Frequency is the recurrence period of a template.
type Frequency string

const (
	FrequencyDaily   Frequency = "DAILY"
	FrequencyWeekly  Frequency = "WEEKLY"
	FrequencyMonthly Frequency = "MONTHLY"
	FrequencyYearly  Frequency = "YEARLY"
)

// Valid reports whether the frequency is one of the known values.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// Next returns t advanced by one frequency unit. Month and year steps use
// calendar arithmetic, so a Jan 31 monthly anchor normalizes the way
// time.AddDate does.
func (f Frequency) Next(t time.Time) time.Time {
	switch f {
	case FrequencyDaily:
		return t.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return t.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return t.AddDate(0, 1, 0)
	case FrequencyYearly:
		return t.AddDate(1, 0, 0)
	}
	return t
}

// NextOccurrence starts from the template's original date and repeatedly adds
// one frequency unit until the result is on or after reference. This keeps
// the template's original day-of-week/month/year anchor.
func NextOccurrence(original time.Time, f Frequency, reference time.Time) time.Time {
	candidate := original
	for candidate.Before(reference) {
		candidate = f.Next(candidate)
	}
	return candidate
}

// Transaction is a single INCOME/EXPENSE/TRANSFER record. A record with
// IsRecurrent set is a template; a record with ParentID set is an instance
// the scheduler generated from a template.
type Transaction struct {
	ID            uuid.UUID
	OwnerID       uuid.UUID
	AccountID     uuid.UUID  // source account
	DestinationID *uuid.UUID // transfers only
	Kind          Kind
	Amount        money.Money
	Category      string
	Date          time.Time
	IsRecurrent   bool
	Frequency     Frequency // set only on templates
	ParentID      *uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsTemplate reports whether this record spawns recurring instances.
func (t *Transaction) IsTemplate() bool { return t.IsRecurrent }

// Validate checks every record invariant. It is called before any balance
// effect is applied, so a failing record never mutates state.
func (t *Transaction) Validate() error {
	if !t.Kind.Valid() {
		return ErrUnknownKind
	}
	if !t.Amount.IsPositive() {
		return ErrAmountMustBePositive
	}
	switch t.Kind {
	case KindTransfer:
		if t.DestinationID == nil {
			return ErrDestinationRequired
		}
		if *t.DestinationID == t.AccountID {
			return ErrSameSourceAndDestination
		}
	default:
		if t.DestinationID != nil {
			return ErrUnexpectedDestination
		}
	}
	if t.IsRecurrent {
		if t.Frequency == "" {
			return ErrFrequencyRequired
		}
		if !t.Frequency.Valid() {
			return ErrUnknownFrequency
		}
		if t.ParentID != nil {
			return ErrTemplateWithParent
		}
	} else if t.Frequency != "" && !t.Frequency.Valid() {
		return ErrUnknownFrequency
	}
	return nil
}
