package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/ledgerpos-api/internal/domain/checkout"
	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
)

// OpenBillRequest opens a new bill
type OpenBillRequest struct {
	PayerID *uuid.UUID `json:"payer_id"`
	Notes   string     `json:"notes" binding:"max=1000"`
}

// BillFilterRequest represents bill list filters
type BillFilterRequest struct {
	Status    []string `form:"status"`
	PayerID   string   `form:"payer_id"`
	StartDate string   `form:"start_date"`
	EndDate   string   `form:"end_date"`
	OnlyDue   bool     `form:"only_due"`
	Page      int      `form:"page"`
	PerPage   int      `form:"per_page"`
}

// AddItemRequest adds a catalog product or a custom line. Custom lines need a name and price.
type AddItemRequest struct {
	ProductID *uuid.UUID    `json:"product_id"`
	Name      string        `json:"name" binding:"max=255"`
	Price     *entity.Money `json:"price"`
	Quantity  int64         `json:"quantity" binding:"required"`
	ItemType  enum.ItemType `json:"item_type"`
}

// UpdateItemRequest changes a line's quantity or price
type UpdateItemRequest struct {
	Quantity *int64       `json:"quantity"`
	Price    *entity.Money `json:"price"`
}

// DiscountRequest sets the flat bill discount
type DiscountRequest struct {
	Discount entity.Money `json:"discount"`
}

// SetPayerRequest attaches a payer. A null payer_id detaches it.
type SetPayerRequest struct {
	PayerID *uuid.UUID `json:"payer_id"`
}

// PaymentRequest is used by checkout and pay-due
type PaymentRequest struct {
	Amount        entity.Money `json:"amount"`
	PaymentMethod string       `json:"payment_method" binding:"max=50"`
}

// QuoteItemRequest is one line of a stateless quote
type QuoteItemRequest struct {
	ID       string        `json:"id"`
	Price    entity.Money  `json:"price"`
	Quantity int64         `json:"quantity"`
	Type     enum.ItemType `json:"type"`
}

// QuoteRequest prices a cart without storing it
type QuoteRequest struct {
	Items    []QuoteItemRequest `json:"items" binding:"required,min=1"`
	Discount entity.Money       `json:"discount"`
	GstMode  *enum.GstMode      `json:"gst_mode"`
	GstRate  *checkout.Percent  `json:"gst_rate"`
}
