package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
)

// PayerRequest represents a payer create or update request
type PayerRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=255"`
	Phone string `json:"phone" binding:"max=50"`
	Email string `json:"email" binding:"omitempty,email"`
	Notes string `json:"notes" binding:"max=1000"`
}

// CreditRequest sets a payer's credit period
type CreditRequest struct {
	CreditDays int `json:"credit_days" binding:"required"`
}

// LedgerCategoryRequest creates an income type or expense category
type LedgerCategoryRequest struct {
	Kind enum.LedgerKind `json:"kind" binding:"required"`
	Name string          `json:"name" binding:"required,min=1,max=100"`
}

// TransactionRequest records a manual income or expense
type TransactionRequest struct {
	Kind            enum.LedgerKind `json:"kind" binding:"required"`
	CategoryID      uuid.UUID       `json:"category_id" binding:"required"`
	Amount          entity.Money    `json:"amount"`
	GSTInclusive    bool            `json:"gst_inclusive"`
	Description     string          `json:"description" binding:"max=500"`
	PaymentMethod   string          `json:"payment_method" binding:"max=50"`
	TransactionDate *time.Time      `json:"transaction_date"`
	PayerID         *uuid.UUID      `json:"payer_id"`
}

// TransactionFilterRequest represents ledger list filters
type TransactionFilterRequest struct {
	Kind       string `form:"kind"`
	CategoryID string `form:"category_id"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
	Cursor     string `form:"cursor"`
	Limit      int    `form:"limit"`
}
