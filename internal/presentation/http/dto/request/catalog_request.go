package request

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
)

// CategoryRequest is used to create and rename categories
type CategoryRequest struct {
	Name string            `json:"name" binding:"required,min=1,max=100"`
	Kind enum.CategoryKind `json:"kind"`
}

// ToggleRequest enables or disables a category
type ToggleRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// ProductRequest represents a product create or update request. On update,
// omitted fields are left unchanged.
type ProductRequest struct {
	CategoryID     *uuid.UUID       `json:"category_id"`
	Name           *string          `json:"name" binding:"omitempty,min=1,max=255"`
	SKU            *string          `json:"sku" binding:"omitempty,max=100"`
	Type           *enum.ItemType   `json:"type"`
	Price          *entity.Money    `json:"price"`
	Stock          *int64           `json:"stock" binding:"omitempty,min=0"`
	ContentPerUnit *decimal.Decimal `json:"content_per_unit"`
	ContentUnit    *string          `json:"content_unit" binding:"omitempty,max=20"`
	IsActive       *bool            `json:"is_active"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search     string `form:"search"`
	CategoryID string `form:"category_id"`
	Type       string `form:"type"`
	ActiveOnly bool   `form:"active_only"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}

// RecipeLineRequest is one ingredient of a composite product
type RecipeLineRequest struct {
	IngredientID    uuid.UUID       `json:"ingredient_id" binding:"required"`
	ContentQuantity decimal.Decimal `json:"content_quantity"`
	Unit            string          `json:"unit" binding:"max=20"`
}

// SetRecipeRequest replaces a composite product's recipe
type SetRecipeRequest struct {
	Ingredients []RecipeLineRequest `json:"ingredients" binding:"dive"`
}

// AdjustStockRequest adds or removes containers
type AdjustStockRequest struct {
	Delta int64 `json:"delta" binding:"required"`
}
