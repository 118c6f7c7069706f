package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payer is a customer a bill can be charged to
type Payer struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	SourceID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"source_id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Phone     string         `gorm:"size:50" json:"phone,omitempty"`
	Email     string         `gorm:"size:255" json:"email,omitempty"`
	Notes     string         `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new payer
func (p *Payer) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Payer model
func (Payer) TableName() string {
	return "payers"
}

// CreditSetting is how many days a payer gets to settle a bill in one source
type CreditSetting struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	SourceID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_credit_source_payer" json:"source_id"`
	PayerID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_credit_source_payer" json:"payer_id"`
	CreditDays int       `gorm:"not null;default:1" json:"credit_days"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new credit setting
func (c *CreditSetting) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the CreditSetting model
func (CreditSetting) TableName() string {
	return "credit_settings"
}
