package repository

import (
	"context"
	"errors"
	"time"

	"github.com/fintrack/fintrack/pkg/currency"
	"github.com/fintrack/fintrack/pkg/domain"
	"github.com/fintrack/fintrack/pkg/domain/transaction"
	"github.com/fintrack/fintrack/pkg/money"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a transaction repository bound to the
// given session.
func NewTransactionRepository(db *gorm.DB) *transactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Get(ctx context.Context, ownerID, id uuid.UUID) (*transaction.Transaction, error) {
	var row Transaction
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&row).Error
	if err != nil {
		return nil, notFound(err, domain.ErrTransactionNotFound)
	}
	return mapTransactionToDomain(&row)
}

func (r *transactionRepository) Create(ctx context.Context, t *transaction.Transaction) error {
	row := mapTransactionToModel(t)
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *transactionRepository) Update(ctx context.Context, t *transaction.Transaction) error {
	row := mapTransactionToModel(t)
	return r.db.WithContext(ctx).Save(&row).Error
}

func (r *transactionRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&Transaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}

func (r *transactionRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*transaction.Transaction, error) {
	var rows []Transaction
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("date, created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return mapTransactionRows(rows)
}

func (r *transactionRepository) ListByAccount(ctx context.Context, ownerID, accountID uuid.UUID) ([]*transaction.Transaction, error) {
	var rows []Transaction
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND (account_id = ? OR destination_id = ?)", ownerID, accountID, accountID).
		Order("date, created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return mapTransactionRows(rows)
}

func (r *transactionRepository) ListTemplates(ctx context.Context) ([]*transaction.Transaction, error) {
	var rows []Transaction
	err := r.db.WithContext(ctx).
		Where("is_recurrent = ? AND parent_id IS NULL", true).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return mapTransactionRows(rows)
}

// LatestOccurrenceDate returns the date of the most recent occurrence
// generated from the template, or the zero time when none exist yet.
func (r *transactionRepository) LatestOccurrenceDate(ctx context.Context, templateID uuid.UUID) (time.Time, error) {
	var row Transaction
	err := r.db.WithContext(ctx).
		Where("parent_id = ?", templateID).
		Order("date DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	return row.Date, nil
}

// CreateOccurrence inserts an occurrence unless one already exists for the
// same template and date. It reports whether a row was written.
func (r *transactionRepository) CreateOccurrence(ctx context.Context, t *transaction.Transaction) (bool, error) {
	row := mapTransactionToModel(t)
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "parent_id"}, {Name: "date"}},
		DoNothing: true,
	}).Create(&row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func mapTransactionRows(rows []Transaction) ([]*transaction.Transaction, error) {
	result := make([]*transaction.Transaction, 0, len(rows))
	for i := range rows {
		t, err := mapTransactionToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, nil
}

func mapTransactionToModel(t *transaction.Transaction) Transaction {
	return Transaction{
		ID:            t.ID,
		OwnerID:       t.OwnerID,
		AccountID:     t.AccountID,
		DestinationID: t.DestinationID,
		Kind:          string(t.Kind),
		Amount:        t.Amount.Amount(),
		Currency:      t.Amount.Currency().String(),
		Category:      t.Category,
		Date:          t.Date,
		IsRecurrent:   t.IsRecurrent,
		Frequency:     string(t.Frequency),
		ParentID:      t.ParentID,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func mapTransactionToDomain(row *Transaction) (*transaction.Transaction, error) {
	amount, err := money.New(row.Amount, currency.Code(row.Currency))
	if err != nil {
		return nil, err
	}
	return &transaction.Transaction{
		ID:            row.ID,
		OwnerID:       row.OwnerID,
		AccountID:     row.AccountID,
		DestinationID: row.DestinationID,
		Kind:          transaction.Kind(row.Kind),
		Amount:        amount,
		Category:      row.Category,
		Date:          row.Date,
		IsRecurrent:   row.IsRecurrent,
		Frequency:     transaction.Frequency(row.Frequency),
		ParentID:      row.ParentID,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}
