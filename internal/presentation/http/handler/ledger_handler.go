package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/ledgerpos-api/internal/application/service"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	"github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/ledgerpos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/ledgerpos-api/pkg/pagination"
)

// LedgerHandler handles income and expense categories, entries and reports
type LedgerHandler struct {
	ledgerService *service.LedgerService
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(ledgerService *service.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerService: ledgerService}
}

func parseLedgerKind(raw string) (*enum.LedgerKind, bool) {
	if raw == "" {
		return nil, true
	}
	kind := enum.LedgerKind(raw)
	if !kind.IsValid() {
		return nil, false
	}
	return &kind, true
}

// ListCategories lists income types and expense categories
func (h *LedgerHandler) ListCategories(c *gin.Context) {
	kind, ok := parseLedgerKind(c.Query("kind"))
	if !ok {
		response.BadRequest(c, "Kind must be income or expense")
		return
	}

	categories, err := h.ledgerService.ListCategories(c.Request.Context(), kind, c.Query("enabled") == "true")
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Ledger categories retrieved successfully", categories)
}

// CreateCategory adds an income type or expense category
func (h *LedgerHandler) CreateCategory(c *gin.Context) {
	var req request.LedgerCategoryRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.ledgerService.CreateCategory(c.Request.Context(), req.Kind, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Ledger category created successfully", category)
}

// ToggleCategory enables or disables a ledger category
func (h *LedgerHandler) ToggleCategory(c *gin.Context) {
	id, ok := paramUUID(c, "id", "category")
	if !ok {
		return
	}

	var req request.ToggleRequest
	if !bindJSON(c, &req) {
		return
	}

	category, err := h.ledgerService.ToggleCategory(c.Request.Context(), id, *req.Enabled)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Ledger category updated successfully", category)
}

// DeleteCategory deletes an unused ledger category
func (h *LedgerHandler) DeleteCategory(c *gin.Context) {
	id, ok := paramUUID(c, "id", "category")
	if !ok {
		return
	}

	if err := h.ledgerService.DeleteCategory(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// ListTransactions lists ledger entries. Passing cursor or limit switches to keyset paging.
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	var filter request.TransactionFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.TransactionFilterParams{}
	kind, ok := parseLedgerKind(filter.Kind)
	if !ok {
		response.BadRequest(c, "Kind must be income or expense")
		return
	}
	params.Kind = kind

	categoryID, err := optionalUUID(filter.CategoryID)
	if err != nil {
		response.BadRequest(c, "Invalid category ID")
		return
	}
	params.CategoryID = categoryID

	start, err := parseDate(filter.StartDate)
	if err != nil {
		response.BadRequest(c, "Invalid start_date, expected YYYY-MM-DD")
		return
	}
	end, err := parseDate(filter.EndDate)
	if err != nil {
		response.BadRequest(c, "Invalid end_date, expected YYYY-MM-DD")
		return
	}
	params.StartDate, params.EndDate = start, endOfDay(end)

	if filter.Cursor != "" || filter.Limit > 0 {
		page, err := h.ledgerService.ListTransactionsWithCursor(c.Request.Context(), params, &pagination.CursorParams{
			Cursor: filter.Cursor,
			Limit:  filter.Limit,
		})
		if err != nil {
			response.Error(c, err)
			return
		}
		response.SuccessWithCursor(c, "Transactions retrieved successfully", page)
		return
	}

	params.Pagination = &pagination.PaginationParams{Page: filter.Page, PerPage: filter.PerPage}
	result, err := h.ledgerService.ListTransactions(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Transactions retrieved successfully", result)
}

// CreateTransaction records a manual income or expense
func (h *LedgerHandler) CreateTransaction(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.TransactionRequest
	if !bindJSON(c, &req) {
		return
	}

	txn, err := h.ledgerService.CreateTransaction(c.Request.Context(), &service.CreateTransactionInput{
		Kind:            req.Kind,
		CategoryID:      req.CategoryID,
		Amount:          req.Amount,
		GSTInclusive:    req.GSTInclusive,
		Description:     req.Description,
		PaymentMethod:   req.PaymentMethod,
		TransactionDate: req.TransactionDate,
		PayerID:         req.PayerID,
		CreatedBy:       userID,
		Access:          GetAccess(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Transaction recorded successfully", txn)
}

// DeleteTransaction deletes a manual ledger entry
func (h *LedgerHandler) DeleteTransaction(c *gin.Context) {
	id, ok := paramUUID(c, "id", "transaction")
	if !ok {
		return
	}

	if err := h.ledgerService.DeleteTransaction(c.Request.Context(), id, GetAccess(c)); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Summary totals the ledger between from and to. Defaults to the current month.
func (h *LedgerHandler) Summary(c *gin.Context) {
	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := now

	if v, err := parseDate(c.Query("from")); err != nil {
		response.BadRequest(c, "Invalid from, expected YYYY-MM-DD")
		return
	} else if v != nil {
		from = *v
	}
	if v, err := parseDate(c.Query("to")); err != nil {
		response.BadRequest(c, "Invalid to, expected YYYY-MM-DD")
		return
	} else if v != nil {
		to = *endOfDay(v)
	}

	summary, err := h.ledgerService.Summary(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Summary retrieved successfully", summary)
}
