package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sangkips/ledgerpos-api/internal/domain/checkout"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
)

// Bill is a cart while active and a sales record once completed
type Bill struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	SourceID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"source_id"`
	BillNo        string          `gorm:"size:50;not null;uniqueIndex" json:"bill_no"`
	PayerID       *uuid.UUID      `gorm:"type:uuid;index" json:"payer_id,omitempty"`
	Status        enum.BillStatus `gorm:"size:20;not null;default:'active';index" json:"status"`
	GstMode       enum.GstMode    `gorm:"not null;default:0" json:"gst_mode"`
	GstRate       decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"gst_rate"`
	Discount      Money           `gorm:"not null;default:0" json:"discount"`
	SubTotal      Money           `gorm:"not null;default:0" json:"sub_total"`
	GST           Money           `gorm:"column:gst;not null;default:0" json:"gst"`
	Total         Money           `gorm:"not null;default:0" json:"total"`
	Paid          Money           `gorm:"not null;default:0" json:"paid"`
	Due           Money           `gorm:"not null;default:0" json:"due"`
	PaymentMethod string          `gorm:"size:50" json:"payment_method,omitempty"`
	Notes         string          `gorm:"type:text" json:"notes,omitempty"`
	BillDate      time.Time       `gorm:"not null;index" json:"bill_date"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	CreatedBy     uuid.UUID       `gorm:"type:uuid;not null" json:"created_by"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `gorm:"index" json:"-"`

	Items []BillItem `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE" json:"items"`
	Payer *Payer     `gorm:"foreignKey:PayerID" json:"payer,omitempty"`
}

// BeforeCreate generates a UUID before creating a new bill
func (b *Bill) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Bill model
func (Bill) TableName() string {
	return "bills"
}

// Policy is the GST policy captured when the bill was opened
func (b *Bill) Policy() checkout.GstPolicy {
	rate, err := checkout.PercentFromDecimal(b.GstRate)
	if err != nil {
		rate = checkout.NewPercent(0)
	}
	return checkout.NewPolicy(b.GstMode, rate)
}

// LineItems converts the bill lines for the calculator
func (b *Bill) LineItems() []checkout.LineItem {
	items := make([]checkout.LineItem, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, it.LineItem())
	}
	return items
}

// ApplyTotals stores calculator output and refreshes line totals and the balance
func (b *Bill) ApplyTotals(t checkout.Totals) {
	for i := range b.Items {
		b.Items[i].Total = NewMoney(b.Items[i].Price.Decimal().Mul(decimal.NewFromInt(b.Items[i].Quantity)))
	}
	b.SubTotal = NewMoney(t.Subtotal)
	b.GST = NewMoney(t.GST)
	b.Discount = NewMoney(t.Discount)
	b.Total = NewMoney(t.FinalTotal)
	b.refreshDue()
}

// RecordPayment adds amount to Paid and recomputes Due
func (b *Bill) RecordPayment(amount Money) {
	b.Paid += amount
	b.refreshDue()
}

func (b *Bill) refreshDue() {
	b.Due = b.Total - b.Paid
	if b.Due < 0 {
		b.Due = 0
	}
}

// FindItem returns the index of a line or -1
func (b *Bill) FindItem(itemID uuid.UUID) int {
	for i := range b.Items {
		if b.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// FindProduct returns the index of the line selling productID or -1
func (b *Bill) FindProduct(productID uuid.UUID) int {
	for i := range b.Items {
		if b.Items[i].ProductID != nil && *b.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// BillItem is one line of a bill
type BillItem struct {
	ID        uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	BillID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"bill_id"`
	ProductID *uuid.UUID    `gorm:"type:uuid;index" json:"product_id,omitempty"`
	Name      string        `gorm:"size:255;not null" json:"name"`
	ItemType  enum.ItemType `gorm:"size:20;not null;default:'basic'" json:"item_type"`
	Category  string        `gorm:"size:255" json:"category,omitempty"`
	Price     Money         `gorm:"not null" json:"price"`
	Quantity  int64         `gorm:"not null" json:"quantity"`
	Total     Money         `gorm:"not null" json:"total"`
	CreatedAt time.Time     `json:"created_at"`
}

// BeforeCreate generates a UUID before creating a new bill item
func (i *BillItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the BillItem model
func (BillItem) TableName() string {
	return "bill_items"
}

// LineItem converts the row for the calculator
func (i BillItem) LineItem() checkout.LineItem {
	return checkout.LineItem{
		ID:       i.ID.String(),
		Price:    i.Price.Decimal(),
		Quantity: i.Quantity,
		Type:     i.ItemType,
		Category: i.Category,
	}
}
