package repository

import (
	"context"

	"github.com/fintrack/fintrack/pkg/currency"
	"github.com/fintrack/fintrack/pkg/domain"
	"github.com/fintrack/fintrack/pkg/domain/investment"
	"github.com/fintrack/fintrack/pkg/money"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type holdingRepository struct {
	db *gorm.DB
}

// NewHoldingRepository creates a holding repository bound to the given
// session.
func NewHoldingRepository(db *gorm.DB) *holdingRepository {
	return &holdingRepository{db: db}
}

func (r *holdingRepository) Get(ctx context.Context, ownerID, id uuid.UUID) (*investment.Holding, error) {
	var row Holding
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&row).Error
	if err != nil {
		return nil, notFound(err, domain.ErrHoldingNotFound)
	}
	return mapHoldingToDomain(&row)
}

func (r *holdingRepository) GetBySymbol(ctx context.Context, ownerID, accountID uuid.UUID, symbol string) (*investment.Holding, error) {
	return r.getBySymbol(r.db.WithContext(ctx), ownerID, accountID, symbol)
}

func (r *holdingRepository) GetBySymbolForUpdate(ctx context.Context, ownerID, accountID uuid.UUID, symbol string) (*investment.Holding, error) {
	return r.getBySymbol(forUpdate(r.db.WithContext(ctx)), ownerID, accountID, symbol)
}

func (r *holdingRepository) getBySymbol(db *gorm.DB, ownerID, accountID uuid.UUID, symbol string) (*investment.Holding, error) {
	var row Holding
	err := db.
		Where("owner_id = ? AND account_id = ? AND symbol = ?", ownerID, accountID, symbol).
		First(&row).Error
	if err != nil {
		return nil, notFound(err, domain.ErrHoldingNotFound)
	}
	return mapHoldingToDomain(&row)
}

func (r *holdingRepository) Create(ctx context.Context, h *investment.Holding) error {
	row := mapHoldingToModel(h)
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *holdingRepository) Update(ctx context.Context, h *investment.Holding) error {
	row := mapHoldingToModel(h)
	return r.db.WithContext(ctx).Save(&row).Error
}

func (r *holdingRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&Holding{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrHoldingNotFound
	}
	return nil
}

func (r *holdingRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*investment.Holding, error) {
	var rows []Holding
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("symbol").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return mapHoldingRows(rows)
}

func (r *holdingRepository) ListByAccount(ctx context.Context, ownerID, accountID uuid.UUID) ([]*investment.Holding, error) {
	var rows []Holding
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND account_id = ?", ownerID, accountID).
		Order("symbol").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return mapHoldingRows(rows)
}

type investmentRepository struct {
	db *gorm.DB
}

// NewInvestmentRepository creates an investment record repository bound to
// the given session.
func NewInvestmentRepository(db *gorm.DB) *investmentRepository {
	return &investmentRepository{db: db}
}

func (r *investmentRepository) Get(ctx context.Context, ownerID, id uuid.UUID) (*investment.Transaction, error) {
	var row InvestmentTransaction
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&row).Error
	if err != nil {
		return nil, notFound(err, domain.ErrInvestmentNotFound)
	}
	return mapInvestmentToDomain(&row)
}

func (r *investmentRepository) Create(ctx context.Context, t *investment.Transaction) error {
	row := mapInvestmentToModel(t)
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *investmentRepository) Update(ctx context.Context, t *investment.Transaction) error {
	row := mapInvestmentToModel(t)
	return r.db.WithContext(ctx).Save(&row).Error
}

func (r *investmentRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		Delete(&InvestmentTransaction{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInvestmentNotFound
	}
	return nil
}

func (r *investmentRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*investment.Transaction, error) {
	var rows []InvestmentTransaction
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("date, created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return mapInvestmentRows(rows)
}

// ListBySymbol returns the full record log for one position, oldest first.
// Insertion order breaks same-day ties so folds are deterministic.
func (r *investmentRepository) ListBySymbol(ctx context.Context, ownerID, accountID uuid.UUID, symbol string) ([]*investment.Transaction, error) {
	var rows []InvestmentTransaction
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND account_id = ? AND symbol = ?", ownerID, accountID, symbol).
		Order("date, created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return mapInvestmentRows(rows)
}

func mapHoldingRows(rows []Holding) ([]*investment.Holding, error) {
	result := make([]*investment.Holding, 0, len(rows))
	for i := range rows {
		h, err := mapHoldingToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, h)
	}
	return result, nil
}

func mapInvestmentRows(rows []InvestmentTransaction) ([]*investment.Transaction, error) {
	result := make([]*investment.Transaction, 0, len(rows))
	for i := range rows {
		t, err := mapInvestmentToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	return result, nil
}

func mapHoldingToModel(h *investment.Holding) Holding {
	return Holding{
		ID:           h.ID,
		OwnerID:      h.OwnerID,
		AccountID:    h.AccountID,
		Symbol:       h.Symbol,
		AssetKind:    string(h.AssetKind),
		Quantity:     h.Quantity.Decimal(),
		AveragePrice: h.AveragePrice.Amount(),
		MarkPrice:    h.MarkPrice.Amount(),
		Currency:     h.AveragePrice.Currency().String(),
		CreatedAt:    h.CreatedAt,
		UpdatedAt:    h.UpdatedAt,
	}
}

func mapHoldingToDomain(row *Holding) (*investment.Holding, error) {
	code := currency.Code(row.Currency)
	avg, err := money.New(row.AveragePrice, code)
	if err != nil {
		return nil, err
	}
	mark, err := money.New(row.MarkPrice, code)
	if err != nil {
		return nil, err
	}
	qty, err := money.NewQuantity(row.Quantity)
	if err != nil {
		return nil, err
	}
	return &investment.Holding{
		ID:           row.ID,
		OwnerID:      row.OwnerID,
		AccountID:    row.AccountID,
		Symbol:       row.Symbol,
		AssetKind:    investment.AssetKind(row.AssetKind),
		Quantity:     qty,
		AveragePrice: avg,
		MarkPrice:    mark,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
	}, nil
}

func mapInvestmentToModel(t *investment.Transaction) InvestmentTransaction {
	return InvestmentTransaction{
		ID:        t.ID,
		OwnerID:   t.OwnerID,
		AccountID: t.AccountID,
		HoldingID: t.HoldingID,
		Kind:      string(t.Kind),
		Symbol:    t.Symbol,
		AssetKind: string(t.AssetKind),
		Quantity:  t.Quantity.Decimal(),
		Price:     t.Price.Amount(),
		Currency:  t.Price.Currency().String(),
		Date:      t.Date,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

func mapInvestmentToDomain(row *InvestmentTransaction) (*investment.Transaction, error) {
	price, err := money.New(row.Price, currency.Code(row.Currency))
	if err != nil {
		return nil, err
	}
	qty, err := money.NewQuantity(row.Quantity)
	if err != nil {
		return nil, err
	}
	kind := investment.AssetKind(row.AssetKind)
	if kind == "" {
		kind = investment.AssetEquity
	}
	return &investment.Transaction{
		ID:        row.ID,
		OwnerID:   row.OwnerID,
		AccountID: row.AccountID,
		HoldingID: row.HoldingID,
		Kind:      investment.Kind(row.Kind),
		Symbol:    row.Symbol,
		AssetKind: kind,
		Quantity:  qty,
		Price:     price,
		Date:      row.Date,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
