package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account is the persisted account row.
type Account struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Name      string
	Currency  string             `gorm:"type:varchar(3);not null;default:'USD'"`
	Balance   decimal.Decimal    `gorm:"type:decimal(20,2);not null"`
	Secondary []SecondaryBalance `gorm:"foreignKey:AccountID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Account) TableName() string { return "accounts" }

// SecondaryBalance is one non-primary currency bucket of an account.
type SecondaryBalance struct {
	ID        uint      `gorm:"primaryKey"`
	AccountID uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_account_currency;not null"`
	Currency  string    `gorm:"type:varchar(3);uniqueIndex:idx_account_currency;not null"`
	Balance   decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	UpdatedAt time.Time
}

func (SecondaryBalance) TableName() string { return "secondary_balances" }

// Transaction is the persisted transaction record. The unique index on
// (parent_id, date) is the insert-if-absent guard behind recurring
// idempotency; rows without a parent are unconstrained by it.
type Transaction struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OwnerID       uuid.UUID  `gorm:"type:uuid;index;not null"`
	AccountID     uuid.UUID  `gorm:"type:uuid;index;not null"`
	DestinationID *uuid.UUID `gorm:"type:uuid"`
	Kind          string     `gorm:"type:varchar(10);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Currency      string     `gorm:"type:varchar(3);not null"`
	Category      string
	Date          time.Time  `gorm:"uniqueIndex:idx_template_occurrence"`
	IsRecurrent   bool       `gorm:"index"`
	Frequency     string     `gorm:"type:varchar(10)"`
	ParentID      *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_template_occurrence"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Transaction) TableName() string { return "transactions" }

// Holding is the persisted holding projection.
type Holding struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	OwnerID      uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_owner_account_symbol;not null"`
	AccountID    uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_owner_account_symbol;not null"`
	Symbol       string    `gorm:"uniqueIndex:idx_owner_account_symbol;not null"`
	AssetKind    string    `gorm:"type:varchar(10);not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(30,8);not null"`
	AveragePrice decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	MarkPrice    decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Currency     string    `gorm:"type:varchar(3);not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Holding) TableName() string { return "holdings" }

// InvestmentTransaction is one persisted buy/sell record. The log of these
// rows is the source of truth the holding projection folds from.
type InvestmentTransaction struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID  `gorm:"type:uuid;index;not null"`
	AccountID uuid.UUID  `gorm:"type:uuid;index;not null"`
	HoldingID *uuid.UUID `gorm:"type:uuid"`
	Kind      string     `gorm:"type:varchar(10);not null"`
	Symbol    string     `gorm:"index;not null"`
	AssetKind string     `gorm:"type:varchar(10);not null"`
	Quantity  decimal.Decimal `gorm:"type:decimal(30,8);not null"`
	Price     decimal.Decimal `gorm:"type:decimal(20,2);not null"`
	Currency  string     `gorm:"type:varchar(3);not null"`
	Date      time.Time  `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (InvestmentTransaction) TableName() string { return "investment_transactions" }
