package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
)

// Invitation asks someone to join a source. Only the bcrypt hash of the code is kept.
type Invitation struct {
	ID         uuid.UUID             `gorm:"type:uuid;primary_key" json:"id"`
	SourceID   uuid.UUID             `gorm:"type:uuid;not null;index" json:"source_id"`
	Email      string                `gorm:"size:255;not null;index" json:"email"`
	Role       enum.SourceRole       `gorm:"size:20;not null" json:"role"`
	CodeHash   string                `gorm:"size:100;not null" json:"-"`
	Status     enum.InvitationStatus `gorm:"size:20;not null;default:'pending';index" json:"status"`
	InvitedBy  uuid.UUID             `gorm:"type:uuid;not null" json:"invited_by"`
	ExpiresAt  time.Time             `gorm:"not null" json:"expires_at"`
	AcceptedAt *time.Time            `json:"accepted_at,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`

	Source *Source `gorm:"foreignKey:SourceID" json:"source,omitempty"`
}

// BeforeCreate generates a UUID before creating a new invitation
func (i *Invitation) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Invitation model
func (Invitation) TableName() string {
	return "invitations"
}

// IsExpired checks the expiry against now
func (i *Invitation) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}
