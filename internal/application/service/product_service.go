package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sangkips/ledgerpos-api/internal/domain/checkout"
	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	"github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/pkg/apperror"
	"github.com/sangkips/ledgerpos-api/pkg/pagination"
)

// ProductService handles catalog products, composite recipes and stock
type ProductService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	tx           repository.Transactor
	gst          checkout.GstPolicy
}

// NewProductService creates a new product service. gst prices the catalog preview.
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	tx repository.Transactor,
	gst checkout.GstPolicy,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		tx:           tx,
		gst:          gst,
	}
}

// ProductInput is shared by create and update. Nil fields are left unchanged on update.
type ProductInput struct {
	CategoryID     *uuid.UUID
	Name           *string
	SKU            *string
	Type           *enum.ItemType
	Price          *entity.Money
	Stock          *int64
	ContentPerUnit *decimal.Decimal
	ContentUnit    *string
	IsActive       *bool
}

func (s *ProductService) apply(ctx context.Context, p *entity.Product, input *ProductInput) error {
	if input.Name != nil {
		p.Name = strings.TrimSpace(*input.Name)
	}
	if input.SKU != nil {
		p.SKU = strings.TrimSpace(*input.SKU)
	}
	if input.Type != nil {
		if !input.Type.IsValid() {
			return apperror.NewBadRequestError("Invalid product type")
		}
		p.Type = *input.Type
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return apperror.Wrap(http.StatusUnprocessableEntity, checkout.ErrInvalidPrice)
		}
		p.Price = *input.Price
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return apperror.NewBadRequestError("Stock must not be negative")
		}
		v := *input.Stock
		p.Stock = &v
	}
	if input.ContentPerUnit != nil {
		if input.ContentPerUnit.Sign() <= 0 {
			return apperror.Wrap(http.StatusUnprocessableEntity, checkout.ErrDivisionByZero)
		}
		p.ContentPerUnit = decimal.NewNullDecimal(*input.ContentPerUnit)
	}
	if input.ContentUnit != nil {
		p.ContentUnit = strings.TrimSpace(*input.ContentUnit)
	}
	if input.IsActive != nil {
		p.IsActive = *input.IsActive
	}
	if input.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *input.CategoryID)
		if err != nil {
			return err
		}
		if category == nil {
			return apperror.NewNotFoundError("Category")
		}
		p.CategoryID = &category.ID
	}

	if p.Name == "" {
		return apperror.NewBadRequestError("Product name is required")
	}
	if !p.Type.TracksStock() {
		p.Stock = nil
	}
	return nil
}

// CreateProduct creates a new product
func (s *ProductService) CreateProduct(ctx context.Context, input *ProductInput) (*entity.Product, error) {
	sourceID, err := requireSource(ctx)
	if err != nil {
		return nil, err
	}

	product := &entity.Product{SourceID: sourceID, Type: enum.ItemTypeBasic, IsActive: true}
	if err := s.apply(ctx, product, input); err != nil {
		return nil, err
	}
	if product.Type == enum.ItemTypeBasic && product.Stock == nil {
		zero := int64(0)
		product.Stock = &zero
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, domainError(err)
	}
	return s.GetProduct(ctx, product.ID)
}

// GetProduct retrieves a product with its category and recipe
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// ListProducts lists products with filtering
func (s *ProductService) ListProducts(ctx context.Context, params *repository.ProductFilterParams) (*pagination.PaginatedResult[entity.Product], error) {
	if _, err := requireSource(ctx); err != nil {
		return nil, err
	}
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	products, total, err := s.productRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}

// UpdateProduct updates a product
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input *ProductInput) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Type != nil && *input.Type != product.Type && len(product.Ingredients) > 0 {
		return nil, apperror.NewConflictError("Clear the recipe before changing a composite product's type")
	}

	if err := s.apply(ctx, product, input); err != nil {
		return nil, err
	}
	product.Category = nil
	product.Ingredients = nil

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, domainError(err)
	}
	return s.GetProduct(ctx, id)
}

// DeleteProduct deletes a product
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

// RecipeInput is one ingredient line of a composite product
type RecipeInput struct {
	IngredientID    uuid.UUID
	ContentQuantity decimal.Decimal
	Unit            string
}

// SetRecipe replaces a composite product's ingredients
func (s *ProductService) SetRecipe(ctx context.Context, productID uuid.UUID, lines []RecipeInput) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Type != enum.ItemTypeComposite {
		return nil, apperror.NewBadRequestError("Only composite products have recipes")
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.IngredientID)
	}
	ingredients, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*entity.Product, len(ingredients))
	for i := range ingredients {
		byID[ingredients[i].ID] = &ingredients[i]
	}

	rows := make([]entity.RecipeIngredient, 0, len(lines))
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, l := range lines {
		ing, ok := byID[l.IngredientID]
		if !ok {
			return nil, apperror.NewNotFoundError(fmt.Sprintf("Ingredient %s", l.IngredientID))
		}
		if ing.ID == productID || !ing.CanBeIngredient() {
			return nil, apperror.NewBadRequestError(fmt.Sprintf("%s cannot be used as an ingredient", ing.Name))
		}
		if seen[ing.ID] {
			return nil, apperror.NewBadRequestError(fmt.Sprintf("%s is listed twice", ing.Name))
		}
		seen[ing.ID] = true
		if l.ContentQuantity.Sign() <= 0 {
			return nil, apperror.Wrap(http.StatusUnprocessableEntity, &checkout.ItemError{ItemID: ing.ID.String(), Err: checkout.ErrInvalidContent})
		}

		unit := l.Unit
		if unit == "" {
			unit = ing.ContentUnit
		}
		rows = append(rows, entity.RecipeIngredient{
			ProductID:       productID,
			IngredientID:    ing.ID,
			ContentQuantity: l.ContentQuantity,
			Unit:            unit,
		})
	}

	if err := s.productRepo.ReplaceRecipe(ctx, productID, rows); err != nil {
		return nil, err
	}
	return s.GetProduct(ctx, productID)
}

// IngredientAvailability describes one recipe line against current stock
type IngredientAvailability struct {
	IngredientID       uuid.UUID       `json:"ingredient_id"`
	Name               string          `json:"name"`
	Unit               string          `json:"unit"`
	ContentPerUnit     decimal.Decimal `json:"content_per_unit"`
	ContentPerServing  decimal.Decimal `json:"content_per_serving"`
	AvailableContent   decimal.Decimal `json:"available_content"`
	RequiredContainers int64           `json:"required_containers"`
	Makeable           int64           `json:"makeable"`
}

// Availability is how many units of a composite product current stock can make
type Availability struct {
	ProductID   uuid.UUID                `json:"product_id"`
	Makeable    int64                    `json:"makeable"`
	Ingredients []IngredientAvailability `json:"ingredients"`
}

// Availability reports per-ingredient content and the number of composite units
// makeable, which is limited by the scarcest ingredient
func (s *ProductService) Availability(ctx context.Context, productID uuid.UUID) (*Availability, error) {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.Type != enum.ItemTypeComposite {
		return nil, apperror.NewBadRequestError("Availability is only computed for composite products")
	}

	out := &Availability{ProductID: product.ID, Ingredients: make([]IngredientAvailability, 0, len(product.Ingredients))}
	for i, ri := range product.Ingredients {
		if ri.Ingredient == nil || !ri.Ingredient.CanBeIngredient() {
			return nil, apperror.NewConflictError(fmt.Sprintf("Ingredient %s is missing or has no content per unit", ri.IngredientID))
		}
		perUnit := ri.Ingredient.ContentPerUnit.Decimal

		available := checkout.AvailableContent(ri.Ingredient.Stock, perUnit)
		containers, err := checkout.RequiredContainers(ri.ContentQuantity, perUnit)
		if err != nil {
			return nil, domainError(err)
		}
		makeable, err := checkout.MakeableUnits(available, ri.ContentQuantity)
		if err != nil {
			return nil, domainError(err)
		}

		out.Ingredients = append(out.Ingredients, IngredientAvailability{
			IngredientID:       ri.IngredientID,
			Name:               ri.Ingredient.Name,
			Unit:               ri.Unit,
			ContentPerUnit:     perUnit,
			ContentPerServing:  ri.ContentQuantity,
			AvailableContent:   available,
			RequiredContainers: containers,
			Makeable:           makeable,
		})
		if i == 0 || makeable < out.Makeable {
			out.Makeable = makeable
		}
	}
	return out, nil
}

// AdjustStock adds delta containers to a basic product. Negative deltas may not
// take stock below zero.
func (s *ProductService) AdjustStock(ctx context.Context, productID uuid.UUID, delta int64) (*entity.Product, error) {
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		product, err := s.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		if !product.Type.TracksStock() {
			return apperror.NewBadRequestError("Only basic products track stock")
		}
		if product.Stock == nil {
			zero := int64(0)
			product.Stock = &zero
			product.Category = nil
			product.Ingredients = nil
			if err := s.productRepo.Update(ctx, product); err != nil {
				return err
			}
		}
		return s.productRepo.AdjustStock(ctx, []repository.StockAdjustment{{ProductID: productID, Delta: delta}})
	})
	if err != nil {
		return nil, domainError(err)
	}
	return s.GetProduct(ctx, productID)
}

// PriceWithGST previews a product price under the catalog GST policy
func (s *ProductService) PriceWithGST(product *entity.Product) checkout.Breakdown {
	b := s.gst.Apply(product.Price.Decimal())
	return checkout.Breakdown{
		Base:  b.Base.Round(2),
		GST:   b.GST.Round(2),
		Gross: b.Gross.Round(2),
	}
}

// Consumption converts sold bill lines into stock deductions. Basic lines use
// their quantity in containers. Composite lines consume, per ingredient, the
// containers needed for quantity × content per serving. Services and untracked
// products consume nothing.
func (s *ProductService) Consumption(ctx context.Context, items []entity.BillItem) ([]repository.StockAdjustment, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		if it.ProductID != nil {
			ids = append(ids, *it.ProductID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	products, err := s.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*entity.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	totals := make(map[uuid.UUID]int64)
	var order []uuid.UUID
	add := func(id uuid.UUID, n int64) {
		if _, ok := totals[id]; !ok {
			order = append(order, id)
		}
		totals[id] += n
	}

	for _, it := range items {
		if it.ProductID == nil {
			continue
		}
		p, ok := byID[*it.ProductID]
		if !ok {
			continue
		}
		switch p.Type {
		case enum.ItemTypeBasic:
			if p.Stock != nil {
				add(p.ID, it.Quantity)
			}
		case enum.ItemTypeComposite:
			for _, ri := range p.Ingredients {
				if ri.Ingredient == nil || !ri.Ingredient.CanBeIngredient() {
					return nil, apperror.NewConflictError(fmt.Sprintf("Recipe of %s references an unusable ingredient", p.Name))
				}
				required := ri.ContentQuantity.Mul(decimal.NewFromInt(it.Quantity))
				containers, err := checkout.RequiredContainers(required, ri.Ingredient.ContentPerUnit.Decimal)
				if err != nil {
					return nil, domainError(err)
				}
				add(ri.IngredientID, containers)
			}
		}
	}

	out := make([]repository.StockAdjustment, 0, len(order))
	for _, id := range order {
		if totals[id] > 0 {
			out = append(out, repository.StockAdjustment{ProductID: id, Delta: -totals[id]})
		}
	}
	return out, nil
}
