package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	"github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/pkg/apperror"
)

// CategoryService handles catalog categories
type CategoryService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
}

// NewCategoryService creates a new category service
func NewCategoryService(categoryRepo repository.CategoryRepository, productRepo repository.ProductRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo, productRepo: productRepo}
}

// CreateCategoryInput represents the create category input
type CreateCategoryInput struct {
	Name string
	Kind enum.CategoryKind
}

// CreateCategory creates a new category
func (s *CategoryService) CreateCategory(ctx context.Context, input *CreateCategoryInput) (*entity.Category, error) {
	sourceID, err := requireSource(ctx)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewBadRequestError("Category name is required")
	}
	kind := input.Kind
	if kind == "" {
		kind = enum.CategoryKindProduct
	}
	if !kind.IsValid() {
		return nil, apperror.NewBadRequestError("Invalid category kind")
	}

	if err := s.ensureUniqueName(ctx, uuid.Nil, name); err != nil {
		return nil, err
	}

	category := &entity.Category{
		SourceID: sourceID,
		Name:     name,
		Kind:     kind,
		Enabled:  true,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, domainError(err)
	}
	return category, nil
}

func (s *CategoryService) ensureUniqueName(ctx context.Context, self uuid.UUID, name string) error {
	existing, err := s.categoryRepo.List(ctx, nil, false)
	if err != nil {
		return err
	}
	for _, c := range existing {
		if c.ID != self && strings.EqualFold(c.Name, name) {
			return apperror.NewConflictError("Category with this name already exists")
		}
	}
	return nil
}

// GetCategory retrieves a category by ID
func (s *CategoryService) GetCategory(ctx context.Context, id uuid.UUID) (*entity.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, apperror.NewNotFoundError("Category")
	}
	return category, nil
}

// ListCategories lists categories of the scoped source
func (s *CategoryService) ListCategories(ctx context.Context, kind *enum.CategoryKind, enabledOnly bool) ([]entity.Category, error) {
	if _, err := requireSource(ctx); err != nil {
		return nil, err
	}
	return s.categoryRepo.List(ctx, kind, enabledOnly)
}

// UpdateCategoryInput represents the update category input
type UpdateCategoryInput struct {
	ID   uuid.UUID
	Name string
	Kind enum.CategoryKind
}

// UpdateCategory renames a category or changes its kind
func (s *CategoryService) UpdateCategory(ctx context.Context, input *UpdateCategoryInput) (*entity.Category, error) {
	category, err := s.GetCategory(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		if err := s.ensureUniqueName(ctx, category.ID, name); err != nil {
			return nil, err
		}
		category.Name = name
	}
	if input.Kind != "" {
		if !input.Kind.IsValid() {
			return nil, apperror.NewBadRequestError("Invalid category kind")
		}
		category.Kind = input.Kind
	}

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// ToggleCategory enables or disables a category. Products in a disabled
// category cannot be added to bills.
func (s *CategoryService) ToggleCategory(ctx context.Context, id uuid.UUID, enabled bool) (*entity.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Enabled = enabled
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory deletes a category that no product uses
func (s *CategoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}

	_, inUse, err := s.productRepo.List(ctx, &repository.ProductFilterParams{CategoryID: &id})
	if err != nil {
		return err
	}
	if inUse > 0 {
		return apperror.NewConflictError("Category still has products")
	}
	return s.categoryRepo.Delete(ctx, id)
}
