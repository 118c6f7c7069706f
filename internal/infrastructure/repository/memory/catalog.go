package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	domainRepo "github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/pkg/pagination"
)

type categoryRepository struct{ s *Store }

// NewCategoryRepository creates an in-memory catalog category repository
func NewCategoryRepository(s *Store) domainRepo.CategoryRepository {
	return &categoryRepository{s: s}
}

func (r *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	ensureID(&category.ID)
	r.s.stamp(&category.CreatedAt, &category.UpdatedAt)
	r.s.categories[category.ID] = *category
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	category, ok := r.s.categories[id]
	if !ok || !scoped(ctx, category.SourceID) {
		return nil, nil
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context, kind *enum.CategoryKind, enabledOnly bool) ([]entity.Category, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	var out []entity.Category
	for _, c := range r.s.categories {
		if !scoped(ctx, c.SourceID) || (kind != nil && c.Kind != *kind) || (enabledOnly && !c.Enabled) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	r.s.stamp(nil, &category.UpdatedAt)
	r.s.categories[category.ID] = *category
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	if c, ok := r.s.categories[id]; ok && scoped(ctx, c.SourceID) {
		delete(r.s.categories, id)
	}
	return nil
}

type productRepository struct{ s *Store }

// NewProductRepository creates an in-memory product repository
func NewProductRepository(s *Store) domainRepo.ProductRepository {
	return &productRepository{s: s}
}

func (r *productRepository) Create(ctx context.Context, product *entity.Product) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	ensureID(&product.ID)
	r.s.stamp(&product.CreatedAt, &product.UpdatedAt)
	r.s.products[product.ID] = stripProduct(*product)
	return nil
}

// stripProduct drops relations and detaches the stock pointer from the caller's copy
func stripProduct(p entity.Product) entity.Product {
	p.Category = nil
	p.Ingredients = nil
	if p.Stock != nil {
		v := *p.Stock
		p.Stock = &v
	}
	return p
}

// hydrate attaches the category and recipe. Callers hold the lock.
func (r *productRepository) hydrate(p entity.Product, withIngredients bool) entity.Product {
	p = stripProduct(p)
	if p.CategoryID != nil {
		if c, ok := r.s.categories[*p.CategoryID]; ok {
			p.Category = &c
		}
	}
	if withIngredients {
		for _, ing := range r.s.recipes[p.ID] {
			if ingredient, ok := r.s.products[ing.IngredientID]; ok {
				cp := stripProduct(ingredient)
				ing.Ingredient = &cp
			}
			p.Ingredients = append(p.Ingredients, ing)
		}
	}
	return p
}

func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	p, ok := r.s.products[id]
	if !ok || !scoped(ctx, p.SourceID) {
		return nil, nil
	}
	out := r.hydrate(p, true)
	return &out, nil
}

func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	var out []entity.Product
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok && scoped(ctx, p.SourceID) {
			out = append(out, r.hydrate(p, true))
		}
	}
	return out, nil
}

func (r *productRepository) List(ctx context.Context, params *domainRepo.ProductFilterParams) ([]entity.Product, int64, error) {
	r.s.rlock(ctx)
	defer r.s.runlock(ctx)

	search := strings.ToLower(params.Search)
	var matched []entity.Product
	for _, p := range r.s.products {
		if !scoped(ctx, p.SourceID) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) && !strings.Contains(strings.ToLower(p.SKU), search) {
			continue
		}
		if params.Type != nil && p.Type != *params.Type {
			continue
		}
		if params.CategoryID != nil && (p.CategoryID == nil || *p.CategoryID != *params.CategoryID) {
			continue
		}
		if params.ActiveOnly && !p.IsActive {
			continue
		}
		matched = append(matched, r.hydrate(p, false))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()
	return paginate(matched, params.Pagination.Offset(), params.Pagination.PerPage), int64(len(matched)), nil
}

func (r *productRepository) Update(ctx context.Context, product *entity.Product) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	r.s.stamp(nil, &product.UpdatedAt)
	r.s.products[product.ID] = stripProduct(*product)
	return nil
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	if p, ok := r.s.products[id]; ok && scoped(ctx, p.SourceID) {
		delete(r.s.products, id)
		delete(r.s.recipes, id)
	}
	return nil
}

func (r *productRepository) ReplaceRecipe(ctx context.Context, productID uuid.UUID, ingredients []entity.RecipeIngredient) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	rows := make([]entity.RecipeIngredient, 0, len(ingredients))
	for i := range ingredients {
		ensureID(&ingredients[i].ID)
		ingredients[i].ProductID = productID
		row := ingredients[i]
		row.Ingredient = nil
		rows = append(rows, row)
	}
	r.s.recipes[productID] = rows
	return nil
}

func (r *productRepository) AdjustStock(ctx context.Context, adjustments []domainRepo.StockAdjustment) error {
	r.s.wlock(ctx)
	defer r.s.wunlock(ctx)

	next := make(map[uuid.UUID]entity.Product, len(adjustments))
	for _, adj := range adjustments {
		p, ok := next[adj.ProductID]
		if !ok {
			p, ok = r.s.products[adj.ProductID]
		}
		if !ok || !scoped(ctx, p.SourceID) || p.Stock == nil || *p.Stock+adj.Delta < 0 {
			return fmt.Errorf("%w: product %s", domainRepo.ErrInsufficientStock, adj.ProductID)
		}
		p = stripProduct(p)
		*p.Stock += adj.Delta
		next[adj.ProductID] = p
	}
	for id, p := range next {
		r.s.products[id] = p
	}
	return nil
}
