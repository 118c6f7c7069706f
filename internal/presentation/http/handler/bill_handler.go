package handler

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/ledgerpos-api/internal/application/service"
	"github.com/sangkips/ledgerpos-api/internal/domain/entity"
	"github.com/sangkips/ledgerpos-api/internal/domain/enum"
	"github.com/sangkips/ledgerpos-api/internal/domain/repository"
	"github.com/sangkips/ledgerpos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/ledgerpos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/ledgerpos-api/pkg/pagination"
)

// BillHandler handles the bill lifecycle and stateless quotes
type BillHandler struct {
	billService     *service.BillService
	checkoutService *service.CheckoutService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(billService *service.BillService, checkoutService *service.CheckoutService) *BillHandler {
	return &BillHandler{billService: billService, checkoutService: checkoutService}
}

// List handles listing bills. status may repeat or be comma separated.
func (h *BillHandler) List(c *gin.Context) {
	var filter request.BillFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	params := &repository.BillFilterParams{
		Pagination: &pagination.PaginationParams{
			Page:    filter.Page,
			PerPage: filter.PerPage,
		},
		OnlyDue: filter.OnlyDue,
	}
	for _, raw := range filter.Status {
		for _, st := range strings.Split(raw, ",") {
			if st = strings.TrimSpace(st); st != "" {
				params.Statuses = append(params.Statuses, enum.BillStatus(st))
			}
		}
	}

	payerID, err := optionalUUID(filter.PayerID)
	if err != nil {
		response.BadRequest(c, "Invalid payer ID")
		return
	}
	params.PayerID = payerID

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

	result, err := h.billService.ListBills(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Bills retrieved successfully", result)
}

// Open handles opening a new bill
func (h *BillHandler) Open(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	// The body is optional when opening a walk-in bill
	var req request.OpenBillRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		rejectBody(c, err)
		return
	}

	bill, err := h.billService.OpenBill(c.Request.Context(), &service.OpenBillInput{
		PayerID:   req.PayerID,
		Notes:     req.Notes,
		CreatedBy: userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Bill opened successfully", bill)
}

// Get returns a bill with its resolved payment status
func (h *BillHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id", "bill")
	if !ok {
		return
	}

	bill, err := h.billService.GetBill(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill retrieved successfully", bill)
}

// AddItem adds a product or custom line to a bill
func (h *BillHandler) AddItem(c *gin.Context) {
	id, ok := paramUUID(c, "id", "bill")
	if !ok {
		return
	}

	var req request.AddItemRequest
	if !bindJSON(c, &req) {
		return
	}

	bill, err := h.billService.AddItem(c.Request.Context(), id, &service.AddItemInput{
		ProductID: req.ProductID,
		Name:      req.Name,
		Price:     req.Price,
		Quantity:  req.Quantity,
		ItemType:  req.ItemType,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item added successfully", bill)
}

// UpdateItem changes a line's quantity or price
func (h *BillHandler) UpdateItem(c *gin.Context) {
	id, ok := paramUUID(c, "id", "bill")
	if !ok {
		return
	}
	itemID, ok := paramUUID(c, "itemId", "item")
	if !ok {
		return
	}

	var req request.UpdateItemRequest
	if !bindJSON(c, &req) {
		return
	}

	bill, err := h.billService.UpdateItem(c.Request.Context(), id, itemID, &service.UpdateItemInput{
		Quantity: req.Quantity,
		Price:    req.Price,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item updated successfully", bill)
}

// RemoveItem removes a line from a bill
func (h *BillHandler) RemoveItem(c *gin.Context) {
	id, ok := paramUUID(c, "id", "bill")
	if !ok {
		return
	}
	itemID, ok := paramUUID(c, "itemId", "item")
	if !ok {
		return
	}

	bill, err := h.billService.RemoveItem(c.Request.Context(), id, itemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Item removed successfully", bill)
}

// SetDiscount sets the bill's flat discount
func (h *BillHandler) SetDiscount(c *gin.Context) {
	id, ok := paramUUID(c, "id", "bill")
	if !ok {
		return
	}

	var req request.DiscountRequest
	if !bindJSON(c, &req) {
		return
	}

	bill, err := h.billService.SetDiscount(c.Request.Context(), id, req.Discount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Discount applied successfully", bill)
}

// SetPayer attaches or detaches the bill's payer
func (h *BillHandler) SetPayer(c *gin.Context) {
	id, ok := paramUUID(c, "id", "bill")
	if !ok {
		return
	}

	var req request.SetPayerRequest
	if !bindJSON(c, &req) {
		return
	}

	bill, err := h.billService.SetPayer(c.Request.Context(), id, req.PayerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payer updated successfully", bill)
}

func (h *BillHandler) transition(c *gin.Context, message string, fn func(context.Context, uuid.UUID) (*entity.Bill, error)) {
	id, ok := paramUUID(c, "id", "bill")
	if !ok {
		return
	}

	bill, err := fn(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, message, bill)
}

// Hold parks an active bill
func (h *BillHandler) Hold(c *gin.Context) {
	h.transition(c, "Bill put on hold", h.billService.Hold)
}

// Resume reactivates a held bill
func (h *BillHandler) Resume(c *gin.Context) {
	h.transition(c, "Bill resumed", h.billService.Resume)
}

// Cancel cancels an open bill
func (h *BillHandler) Cancel(c *gin.Context) {
	h.transition(c, "Bill cancelled", h.billService.Cancel)
}

// Checkout settles a bill and reports the change due
func (h *BillHandler) Checkout(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id", "bill")
	if !ok {
		return
	}

	var req request.PaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.billService.Checkout(c.Request.Context(), id, &service.CheckoutInput{
		Paid:          req.Amount,
		PaymentMethod: req.PaymentMethod,
		UserID:        userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Checkout completed successfully", result)
}

// PayDue records a payment against a partially-paid bill
func (h *BillHandler) PayDue(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := paramUUID(c, "id", "bill")
	if !ok {
		return
	}

	var req request.PaymentRequest
	if !bindJSON(c, &req) {
		return
	}

	bill, err := h.billService.PayDue(c.Request.Context(), id, &service.PayDueInput{
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		UserID:        userID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payment recorded successfully", bill)
}

// Quote prices a cart without opening a bill
func (h *BillHandler) Quote(c *gin.Context) {
	var req request.QuoteRequest
	if !bindJSON(c, &req) {
		return
	}

	input := &service.QuoteInput{
		Discount: req.Discount,
		Mode:     req.GstMode,
		Rate:     req.GstRate,
	}
	for _, it := range req.Items {
		input.Items = append(input.Items, service.QuoteItem{
			ID:       it.ID,
			Price:    it.Price,
			Quantity: it.Quantity,
			Type:     it.Type,
		})
	}

	quote, err := h.checkoutService.Quote(input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Quote calculated successfully", quote)
}
