package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	"github.com/sangkips/ledgerpos-api/pkg/pagination"
)

// CategoryRepository defines the interface for catalog category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error)
	List(ctx context.Context, kind *enum.CategoryKind, enabledOnly bool) ([]entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductRepository defines the interface for product data operations
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	// GetByID preloads the category and recipe ingredients
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
	List(ctx context.Context, params *ProductFilterParams) ([]entity.Product, int64, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	ReplaceRecipe(ctx context.Context, productID uuid.UUID, ingredients []entity.RecipeIngredient) error
	// AdjustStock applies all deltas or none
	AdjustStock(ctx context.Context, adjustments []StockAdjustment) error
}

// ProductFilterParams contains filtering parameters for product queries
type ProductFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Type       *enum.ItemType
	CategoryID *uuid.UUID
	ActiveOnly bool
}

// StockAdjustment changes a product's stock by Delta containers
type StockAdjustment struct {
	ProductID uuid.UUID
	Delta     int64
}
