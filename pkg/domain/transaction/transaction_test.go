package transaction_test

import (
	"testing"
	"time"

	"github.com/fintrack/fintrack/pkg/domain/transaction"
	"github.com/fintrack/fintrack/pkg/money"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustMoney(t *testing.T, amount string) money.Money {
	t.Helper()
	m, err := money.NewFromString(amount, "USD")
	require.NoError(t, err)
	return m
}

func TestValidate(t *testing.T) {
	t.Parallel()
	owner := uuid.New()
	source := uuid.New()
	dest := uuid.New()

	tests := []struct {
		name    string
		mutate  func(*transaction.Transaction)
		wantErr error
	}{
		{"valid income", func(tx *transaction.Transaction) {}, nil},
		{"unknown kind", func(tx *transaction.Transaction) {
			tx.Kind = "REFUND"
		}, transaction.ErrUnknownKind},
		{"zero amount", func(tx *transaction.Transaction) {
			tx.Amount = money.Zero("USD")
		}, transaction.ErrAmountMustBePositive},
		{"transfer without destination", func(tx *transaction.Transaction) {
			tx.Kind = transaction.KindTransfer
		}, transaction.ErrDestinationRequired},
		{"transfer to itself", func(tx *transaction.Transaction) {
			tx.Kind = transaction.KindTransfer
			tx.DestinationID = &source
		}, transaction.ErrSameSourceAndDestination},
		{"valid transfer", func(tx *transaction.Transaction) {
			tx.Kind = transaction.KindTransfer
			tx.DestinationID = &dest
		}, nil},
		{"income with destination", func(tx *transaction.Transaction) {
			tx.DestinationID = &dest
		}, transaction.ErrUnexpectedDestination},
		{"template without frequency", func(tx *transaction.Transaction) {
			tx.IsRecurrent = true
		}, transaction.ErrFrequencyRequired},
		{"template with bad frequency", func(tx *transaction.Transaction) {
			tx.IsRecurrent = true
			tx.Frequency = "FORTNIGHTLY"
		}, transaction.ErrUnknownFrequency},
		{"template with parent", func(tx *transaction.Transaction) {
			tx.IsRecurrent = true
			tx.Frequency = transaction.FrequencyMonthly
			parent := uuid.New()
			tx.ParentID = &parent
		}, transaction.ErrTemplateWithParent},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			tx := &transaction.Transaction{
				ID:        uuid.New(),
				OwnerID:   owner,
				AccountID: source,
				Kind:      transaction.KindIncome,
				Amount:    mustMoney(t, "50.00"),
				Date:      time.Now(),
			}
			tt.mutate(tx)
			err := tx.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNextOccurrence(t *testing.T) {
	t.Parallel()
	date := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	tests := []struct {
		name      string
		original  time.Time
		frequency transaction.Frequency
		reference time.Time
		want      time.Time
	}{
		{"original at reference", date(2026, 3, 15), transaction.FrequencyMonthly, date(2026, 3, 15), date(2026, 3, 15)},
		{"original after reference", date(2026, 5, 1), transaction.FrequencyDaily, date(2026, 3, 1), date(2026, 5, 1)},
		{"monthly keeps anchor day", date(2026, 1, 15), transaction.FrequencyMonthly, date(2026, 3, 2), date(2026, 3, 15)},
		{"weekly keeps weekday", date(2026, 1, 5), transaction.FrequencyWeekly, date(2026, 1, 20), date(2026, 1, 26)},
		{"daily", date(2026, 1, 1), transaction.FrequencyDaily, date(2026, 1, 10), date(2026, 1, 10)},
		{"yearly", date(2024, 2, 10), transaction.FrequencyYearly, date(2026, 1, 1), date(2026, 2, 10)},
		{"month end normalizes", date(2026, 1, 31), transaction.FrequencyMonthly, date(2026, 2, 1), date(2026, 3, 3)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := transaction.NextOccurrence(tt.original, tt.frequency, tt.reference)
			assert.True(t, got.Equal(tt.want), "got %s want %s", got, tt.want)
		})
	}
}
