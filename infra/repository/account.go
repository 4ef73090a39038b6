package repository

import (
	"context"

	"github.com/fintrack/fintrack/pkg/currency"
	"github.com/fintrack/fintrack/pkg/domain"
	"github.com/fintrack/fintrack/pkg/domain/account"
	"github.com/fintrack/fintrack/pkg/money"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates an account repository bound to the given
// session.
func NewAccountRepository(db *gorm.DB) *accountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Get(ctx context.Context, ownerID, id uuid.UUID) (*account.Account, error) {
	return r.get(r.db.WithContext(ctx), ownerID, id)
}

func (r *accountRepository) GetForUpdate(ctx context.Context, ownerID, id uuid.UUID) (*account.Account, error) {
	return r.get(forUpdate(r.db.WithContext(ctx)), ownerID, id)
}

func (r *accountRepository) get(db *gorm.DB, ownerID, id uuid.UUID) (*account.Account, error) {
	var row Account
	err := db.Preload("Secondary").
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&row).Error
	if err != nil {
		return nil, notFound(err, domain.ErrAccountNotFound)
	}
	return mapAccountToDomain(&row)
}

func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	row := mapAccountToModel(a)
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *accountRepository) Update(ctx context.Context, a *account.Account) error {
	row := mapAccountToModel(a)
	db := r.db.WithContext(ctx)
	if err := db.Omit("Secondary").Save(&row).Error; err != nil {
		return err
	}
	for i := range row.Secondary {
		bucket := row.Secondary[i]
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}, {Name: "currency"}},
			DoUpdates: clause.AssignmentColumns([]string{"balance", "updated_at"}),
		}).Create(&bucket).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *accountRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*account.Account, error) {
	var rows []Account
	err := r.db.WithContext(ctx).Preload("Secondary").
		Where("owner_id = ?", ownerID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]*account.Account, 0, len(rows))
	for i := range rows {
		a, err := mapAccountToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, nil
}

func mapAccountToModel(a *account.Account) Account {
	row := Account{
		ID:        a.ID,
		OwnerID:   a.OwnerID,
		Name:      a.Name,
		Currency:  a.Currency().String(),
		Balance:   a.Balance.Amount(),
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
	for _, bucket := range a.Secondary {
		row.Secondary = append(row.Secondary, SecondaryBalance{
			AccountID: a.ID,
			Currency:  bucket.Currency().String(),
			Balance:   bucket.Amount(),
		})
	}
	return row
}

func mapAccountToDomain(row *Account) (*account.Account, error) {
	balance, err := money.New(row.Balance, currency.Code(row.Currency))
	if err != nil {
		return nil, err
	}
	secondary := make([]money.Money, 0, len(row.Secondary))
	for _, bucket := range row.Secondary {
		m, err := money.New(bucket.Balance, currency.Code(bucket.Currency))
		if err != nil {
			return nil, err
		}
		secondary = append(secondary, m)
	}
	return account.New().
		WithID(row.ID).
		WithOwnerID(row.OwnerID).
		WithName(row.Name).
		WithCurrency(currency.Code(row.Currency)).
		WithBalance(balance).
		WithSecondary(secondary).
		WithCreatedAt(row.CreatedAt).
		WithUpdatedAt(row.UpdatedAt).
		Build()
}
