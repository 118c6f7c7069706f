package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
)

// LedgerCategory is an income type or an expense category, switchable on and off
type LedgerCategory struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	SourceID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"source_id"`
	Kind      enum.LedgerKind `gorm:"size:20;not null;index" json:"kind"`
	Name      string          `gorm:"size:255;not null" json:"name"`
	Enabled   bool            `gorm:"default:true" json:"enabled"`
	System    bool            `gorm:"default:false" json:"system"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new ledger category
func (c *LedgerCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the LedgerCategory model
func (LedgerCategory) TableName() string {
	return "ledger_categories"
}

// SalesCategoryName is the system income type bill payments are booked under
const SalesCategoryName = "Sales"

// DefaultLedgerCategories are seeded into every new source
func DefaultLedgerCategories(sourceID uuid.UUID) []LedgerCategory {
	income := []string{SalesCategoryName, "Services", "Other income"}
	expense := []string{"Rent", "Salaries", "Utilities", "Supplies", "Transport", "Other expense"}

	out := make([]LedgerCategory, 0, len(income)+len(expense))
	for _, name := range income {
		out = append(out, LedgerCategory{SourceID: sourceID, Kind: enum.LedgerKindIncome, Name: name, Enabled: true, System: name == SalesCategoryName})
	}
	for _, name := range expense {
		out = append(out, LedgerCategory{SourceID: sourceID, Kind: enum.LedgerKindExpense, Name: name, Enabled: true})
	}
	return out
}

// Transaction is one income or expense entry
type Transaction struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	SourceID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"source_id"`
	Kind            enum.LedgerKind `gorm:"size:20;not null;index" json:"kind"`
	CategoryID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id"`
	Amount          Money           `gorm:"not null" json:"amount"`
	GSTAmount       Money           `gorm:"column:gst_amount;not null;default:0" json:"gst_amount"`
	Description     string          `gorm:"type:text" json:"description,omitempty"`
	PaymentMethod   string          `gorm:"size:50" json:"payment_method,omitempty"`
	TransactionDate time.Time       `gorm:"not null;index" json:"transaction_date"`
	BillID          *uuid.UUID      `gorm:"type:uuid;index" json:"bill_id,omitempty"`
	PayerID         *uuid.UUID      `gorm:"type:uuid;index" json:"payer_id,omitempty"`
	CreatedBy       uuid.UUID       `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`

	Category *LedgerCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// BeforeCreate generates a UUID before creating a new transaction
func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Transaction model
func (Transaction) TableName() string {
	return "transactions"
}

// LedgerSummary is the aggregate shown on the reports page
type LedgerSummary struct {
	From         time.Time `json:"from"`
	To           time.Time `json:"to"`
	Income       Money     `json:"income"`
	Expense      Money     `json:"expense"`
	Net          Money     `json:"net"`
	GSTCollected Money     `json:"gst_collected"`
	Entries      int64     `json:"entries"`
}
