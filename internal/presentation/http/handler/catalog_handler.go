package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/ledgerpos-api/internal/application/service"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	"github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/ledgerpos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/ledgerpos-api/pkg/pagination"
)

// CatalogHandler handles categories and products
type CatalogHandler struct {
	categoryService *service.CategoryService
	productService  *service.ProductService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(categoryService *service.CategoryService, productService *service.ProductService) *CatalogHandler {
	return &CatalogHandler{categoryService: categoryService, productService: productService}
}

// ListCategories handles listing categories, optionally by kind
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	var kind *enum.CategoryKind
	if raw := c.Query("kind"); raw != "" {
		k := enum.CategoryKind(raw)
		if !k.IsValid() {
			response.BadRequest(c, "Invalid category kind")
			return
		}
		kind = &k
	}

	categories, err := h.categoryService.ListCategories(c.Request.Context(), kind, c.Query("enabled") == "true")
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Categories retrieved successfully", categories)
}

// CreateCategory handles creating a category
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req request.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.CreateCategory(c.Request.Context(), &service.CreateCategoryInput{
		Name: req.Name,
		Kind: req.Kind,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Category created successfully", category)
}

// UpdateCategory handles renaming a category
func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := paramUUID(c, "id", "category")
	if !ok {
		return
	}

	var req request.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.UpdateCategory(c.Request.Context(), &service.UpdateCategoryInput{
		ID:   id,
		Name: req.Name,
		Kind: req.Kind,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Category updated successfully", category)
}

// ToggleCategory enables or disables a category
func (h *CatalogHandler) ToggleCategory(c *gin.Context) {
	id, ok := paramUUID(c, "id", "category")
	if !ok {
		return
	}

	var req request.ToggleRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.categoryService.ToggleCategory(c.Request.Context(), id, *req.Enabled)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Category updated successfully", category)
}

// DeleteCategory handles deleting a category
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := paramUUID(c, "id", "category")
	if !ok {
		return
	}

	if err := h.categoryService.DeleteCategory(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ListProducts handles listing products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	var filter request.ProductFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.ProductFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		Search:     filter.Search,
		ActiveOnly: filter.ActiveOnly,
	}

	categoryID, err := optionalUUID(filter.CategoryID)
	if err != nil {
		response.BadRequest(c, "Invalid category ID")
		return
	}
	params.CategoryID = categoryID

	if filter.Type != "" {
		t := enum.ItemType(filter.Type)
		if !t.IsValid() {
			response.BadRequest(c, "Invalid product type")
			return
		}
		params.Type = &t
	}

	result, err := h.productService.ListProducts(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Products retrieved successfully", result)
}

func toProductInput(req *request.ProductRequest) *service.ProductInput {
	return &service.ProductInput{
		CategoryID:     req.CategoryID,
		Name:           req.Name,
		SKU:            req.SKU,
		Type:           req.Type,
		Price:          req.Price,
		Stock:          req.Stock,
		ContentPerUnit: req.ContentPerUnit,
		ContentUnit:    req.ContentUnit,
		IsActive:       req.IsActive,
	}
}

// CreateProduct handles creating a product
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var req request.ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Name == nil {
		response.BadRequest(c, "Product name is required")
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), toProductInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Product created successfully", product)
}

// GetProduct returns a product with its catalog GST preview
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := paramUUID(c, "id", "product")
	if !ok {
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product retrieved successfully", gin.H{
		"product":        product,
		"price_with_gst": h.productService.PriceWithGST(product),
	})
}

// UpdateProduct handles updating a product
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := paramUUID(c, "id", "product")
	if !ok {
		return
	}

	var req request.ProductRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, toProductInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Product updated successfully", product)
}

// DeleteProduct handles deleting a product
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	id, ok := paramUUID(c, "id", "product")
	if !ok {
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// SetRecipe replaces a composite product's ingredients
func (h *CatalogHandler) SetRecipe(c *gin.Context) {
	id, ok := paramUUID(c, "id", "product")
	if !ok {
		return
	}

	var req request.SetRecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	lines := make([]service.RecipeInput, 0, len(req.Ingredients))
	for _, in := range req.Ingredients {
		lines = append(lines, service.RecipeInput{
			IngredientID:    in.IngredientID,
			ContentQuantity: in.ContentQuantity,
			Unit:            in.Unit,
		})
	}

	product, err := h.productService.SetRecipe(c.Request.Context(), id, lines)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Recipe updated successfully", product)
}

// Availability reports how many units of a composite product stock can make
func (h *CatalogHandler) Availability(c *gin.Context) {
	id, ok := paramUUID(c, "id", "product")
	if !ok {
		return
	}

	availability, err := h.productService.Availability(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Availability retrieved successfully", availability)
}

// AdjustStock adds or removes containers of a basic product
func (h *CatalogHandler) AdjustStock(c *gin.Context) {
	id, ok := paramUUID(c, "id", "product")
	if !ok {
		return
	}

	var req request.AdjustStockRequest
	if !bindJSON(c, &req) {
		return
	}

	product, err := h.productService.AdjustStock(c.Request.Context(), id, req.Delta)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Stock adjusted successfully", product)
}
