package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tailorbook-api/internal/application/service"
	"github.com/sangkips/tailorbook-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tailorbook-api/internal/presentation/http/dto/response"
)

// ReceiptHandler handles receipt-related HTTP requests
type ReceiptHandler struct {
	receiptService *service.ReceiptService
}

// NewReceiptHandler creates a new receipt handler
func NewReceiptHandler(receiptService *service.ReceiptService) *ReceiptHandler {
	return &ReceiptHandler{receiptService: receiptService}
}

// Create records a payment against a bill
func (h *ReceiptHandler) Create(c *gin.Context) {
	var req request.CreateReceiptRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.receiptService.CreateReceipt(c.Request.Context(), &service.CreateReceiptInput{
		BillNumber:    req.BillNumber,
		Amount:        req.Amount,
		Discount:      req.Discount,
		TaxIDs:        req.TaxIDs,
		PaymentMethod: req.PaymentMethod,
		PaymentDate:   req.PaymentDate.Time,
		Notes:         req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Receipt created successfully", result)
}

// Get handles getting a single receipt
func (h *ReceiptHandler) Get(c *gin.Context) {
	number, ok := parseNumber(c, "number")
	if !ok {
		return
	}

	receipt, err := h.receiptService.GetReceipt(c.Request.Context(), number)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt retrieved successfully", receipt)
}

// Update edits a payment; it is validated as if it were the bill's last one
func (h *ReceiptHandler) Update(c *gin.Context) {
	number, ok := parseNumber(c, "number")
	if !ok {
		return
	}

	var req request.UpdateReceiptRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.receiptService.UpdateReceipt(c.Request.Context(), &service.UpdateReceiptInput{
		Number:        number,
		Amount:        req.Amount,
		Discount:      req.Discount,
		TaxIDs:        req.TaxIDs,
		PaymentMethod: req.PaymentMethod,
		PaymentDate:   req.PaymentDate.Time,
		Notes:         req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt updated successfully", result)
}

// Breakdown returns the due amount before and after a receipt
func (h *ReceiptHandler) Breakdown(c *gin.Context) {
	number, ok := parseNumber(c, "number")
	if !ok {
		return
	}

	breakdown, err := h.receiptService.Breakdown(c.Request.Context(), number)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt breakdown retrieved successfully", breakdown)
}
