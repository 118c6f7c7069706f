package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
)

// Category groups products or services; disabled categories are hidden from checkout
type Category struct {
	ID        uuid.UUID         `gorm:"type:uuid;primary_key" json:"id"`
	SourceID  uuid.UUID         `gorm:"type:uuid;not null;index" json:"source_id"`
	Name      string            `gorm:"size:255;not null" json:"name"`
	Kind      enum.CategoryKind `gorm:"size:20;not null;default:'product'" json:"kind"`
	Enabled   bool              `gorm:"default:true" json:"enabled"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	DeletedAt gorm.DeletedAt    `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new category
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}

// Product is a sellable catalog entry. Basic products count stock in containers,
// each holding ContentPerUnit of ContentUnit (e.g. 220 ml per bottle).
type Product struct {
	ID             uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	SourceID       uuid.UUID           `gorm:"type:uuid;not null;index" json:"source_id"`
	CategoryID     *uuid.UUID          `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Name           string              `gorm:"size:255;not null" json:"name"`
	SKU            string              `gorm:"size:100;index" json:"sku,omitempty"`
	Type           enum.ItemType       `gorm:"size:20;not null;default:'basic'" json:"type"`
	Price          Money               `gorm:"not null;default:0" json:"price"`
	Stock          *int64              `json:"stock"`
	ContentPerUnit decimal.NullDecimal `gorm:"type:numeric(14,3)" json:"content_per_unit"`
	ContentUnit    string              `gorm:"size:20" json:"content_unit,omitempty"`
	IsActive       bool                `gorm:"default:true" json:"is_active"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	DeletedAt      gorm.DeletedAt      `gorm:"index" json:"-"`

	Category    *Category          `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Ingredients []RecipeIngredient `gorm:"foreignKey:ProductID" json:"ingredients,omitempty"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// CanBeIngredient is true for basic products that define their container content
func (p *Product) CanBeIngredient() bool {
	return p.Type == enum.ItemTypeBasic &&
		p.ContentPerUnit.Valid && p.ContentPerUnit.Decimal.Sign() > 0 &&
		p.ContentUnit != ""
}

// RecipeIngredient is one component of a composite product
type RecipeIngredient struct {
	ID              uuid.UUID       `gorm:"type:uuid;primary_key" json:"id"`
	ProductID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	IngredientID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"ingredient_id"`
	ContentQuantity decimal.Decimal `gorm:"type:numeric(14,3);not null" json:"content_quantity"`
	Unit            string          `gorm:"size:20;not null" json:"unit"`

	Ingredient *Product `gorm:"foreignKey:IngredientID" json:"ingredient,omitempty"`
}

// BeforeCreate generates a UUID before creating a new recipe row
func (r *RecipeIngredient) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the RecipeIngredient model
func (RecipeIngredient) TableName() string {
	return "recipe_ingredients"
}
