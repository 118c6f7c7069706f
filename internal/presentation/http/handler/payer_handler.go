package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/ledgerpos-api/internal/application/service"
	"github.com/sangkips/ledgerpos-api/internal/presentation/http/dto/request"
	"github.com/sangkips/ledgerpos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/ledgerpos-api/pkg/pagination"
)

// PayerHandler handles payers, their credit periods and receivables
type PayerHandler struct {
	payerService *service.PayerService
}

// NewPayerHandler creates a new payer handler
func NewPayerHandler(payerService *service.PayerService) *PayerHandler {
	return &PayerHandler{payerService: payerService}
}

// List handles listing payers
func (h *PayerHandler) List(c *gin.Context) {
	var params pagination.PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.payerService.ListPayers(c.Request.Context(), c.Query("search"), &params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Payers retrieved successfully", result)
}

// Create handles creating a payer
func (h *PayerHandler) Create(c *gin.Context) {
	var req request.PayerRequest
	if !bindJSON(c, &req) {
		return
	}

	payer, err := h.payerService.CreatePayer(c.Request.Context(), &service.PayerInput{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
		Notes: req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Payer created successfully", payer)
}

// Get handles getting a single payer
func (h *PayerHandler) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id", "payer")
	if !ok {
		return
	}

	payer, err := h.payerService.GetPayer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payer retrieved successfully", payer)
}

// Update handles updating a payer
func (h *PayerHandler) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id", "payer")
	if !ok {
		return
	}

	var req request.PayerRequest
	if !bindJSON(c, &req) {
		return
	}

	payer, err := h.payerService.UpdatePayer(c.Request.Context(), id, &service.PayerInput{
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
		Notes: req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Payer updated successfully", payer)
}

// Delete handles deleting a payer
func (h *PayerHandler) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id", "payer")
	if !ok {
		return
	}

	if err := h.payerService.DeletePayer(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// GetCredit returns the payer's effective credit days
func (h *PayerHandler) GetCredit(c *gin.Context) {
	id, ok := paramUUID(c, "id", "payer")
	if !ok {
		return
	}

	credit, err := h.payerService.GetCredit(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Credit retrieved successfully", credit)
}

// SetCredit sets the payer's credit days
func (h *PayerHandler) SetCredit(c *gin.Context) {
	id, ok := paramUUID(c, "id", "payer")
	if !ok {
		return
	}

	var req request.CreditRequest
	if !bindJSON(c, &req) {
		return
	}

	credit, err := h.payerService.SetCredit(c.Request.Context(), id, req.CreditDays)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Credit updated successfully", credit)
}

// DeleteCredit resets the payer to the default credit days
func (h *PayerHandler) DeleteCredit(c *gin.Context) {
	id, ok := paramUUID(c, "id", "payer")
	if !ok {
		return
	}

	if err := h.payerService.DeleteCredit(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Receivables lists unpaid balances with their pending or overdue status
func (h *PayerHandler) Receivables(c *gin.Context) {
	var params pagination.PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	payerID, err := optionalUUID(c.Query("payer_id"))
	if err != nil {
		response.BadRequest(c, "Invalid payer ID")
		return
	}

	result, err := h.payerService.Receivables(c.Request.Context(), payerID, &params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Receivables retrieved successfully", result)
}
