package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	"github.com/sangkips/ledgerpos-api/internal/domain/policy"
)

// Source is a business unit; every catalog, bill and ledger row belongs to one
type Source struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Slug      string         `gorm:"size:255;unique;not null" json:"slug"`
	OwnerID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_id"`
	Currency  string         `gorm:"size:3;not null;default:'INR'" json:"currency"`
	Settings  SourceSettings `gorm:"type:jsonb" json:"settings"`
	IsActive  bool           `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Members []SourceMember `gorm:"foreignKey:SourceID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new source
func (s *Source) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Source model
func (Source) TableName() string {
	return "sources"
}

// SourceSettings is printed on receipts and shown on bills
type SourceSettings struct {
	BusinessName  string `json:"business_name,omitempty"`
	Address       string `json:"address,omitempty"`
	Phone         string `json:"phone,omitempty"`
	TaxID         string `json:"tax_id,omitempty"`
	ReceiptFooter string `json:"receipt_footer,omitempty"`
	Timezone      string `json:"timezone,omitempty"`
}

// Scan implements the sql.Scanner interface for SourceSettings
func (s *SourceSettings) Scan(value interface{}) error {
	if value == nil {
		*s = SourceSettings{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("failed to scan SourceSettings: unsupported type")
	}
	return json.Unmarshal(raw, s)
}

// Value implements the driver.Valuer interface for SourceSettings
func (s SourceSettings) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// DefaultSourceSettings returns settings for a freshly created source
func DefaultSourceSettings(name string) SourceSettings {
	return SourceSettings{
		BusinessName:  name,
		ReceiptFooter: "Thank you for your business!",
		Timezone:      "Asia/Kolkata",
	}
}

// SourceMember is a user's role and access flags inside one source
type SourceMember struct {
	SourceID      uuid.UUID       `gorm:"type:uuid;primaryKey" json:"source_id"`
	UserID        uuid.UUID       `gorm:"type:uuid;primaryKey" json:"user_id"`
	Email         string          `gorm:"size:255;not null;index" json:"email"`
	Role          enum.SourceRole `gorm:"size:20;not null" json:"role"`
	IncomeAccess  bool            `gorm:"default:false" json:"income_access"`
	ExpenseAccess bool            `gorm:"default:false" json:"expense_access"`
	BillingAccess bool            `gorm:"default:false" json:"billing_access"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`

	Source *Source `gorm:"foreignKey:SourceID" json:"source,omitempty"`
}

// TableName returns the table name for the SourceMember model
func (SourceMember) TableName() string {
	return "source_members"
}

// Access returns the role and flags in the shape the permission policy takes
func (m *SourceMember) Access() policy.Access {
	return policy.Access{
		Role:          m.Role,
		IncomeAccess:  m.IncomeAccess,
		ExpenseAccess: m.ExpenseAccess,
		BillingAccess: m.BillingAccess,
	}
}

// SetAccess copies flags from a policy.Access
func (m *SourceMember) SetAccess(a policy.Access) {
	m.IncomeAccess = a.IncomeAccess
	m.ExpenseAccess = a.ExpenseAccess
	m.BillingAccess = a.BillingAccess
}
