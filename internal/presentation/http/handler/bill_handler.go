package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/tailorbook-api/internal/application/service"
	"github.com/sangkips/tailorbook-api/internal/domain/enum"
	"github.com/sangkips/tailorbook-api/internal/domain/repository"
	"github.com/sangkips/tailorbook-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tailorbook-api/internal/presentation/http/dto/response"
	"github.com/sangkips/tailorbook-api/pkg/pagination"
)

// BillHandler handles bill-related HTTP requests
type BillHandler struct {
	billService    *service.BillService
	receiptService *service.ReceiptService
}

// NewBillHandler creates a new bill handler
func NewBillHandler(billService *service.BillService, receiptService *service.ReceiptService) *BillHandler {
	return &BillHandler{
		billService:    billService,
		receiptService: receiptService,
	}
}

func itemInputs(items []request.BillItemRequest) []service.BillItemInput {
	if items == nil {
		return nil
	}
	inputs := make([]service.BillItemInput, len(items))
	for i, item := range items {
		inputs[i] = service.BillItemInput{
			Name:     item.Name,
			Quantity: item.Quantity,
			Rate:     item.Rate,
		}
	}
	return inputs
}

// List handles listing bills with optional status, category, customer and
// name filters
func (h *BillHandler) List(c *gin.Context) {
	var req request.BillFilterRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	filter := repository.BillFilter{
		Category: strings.TrimSpace(req.Category),
		Search:   strings.TrimSpace(req.Search),
	}
	if req.Status != "" {
		status := enum.PaymentStatus(req.Status)
		if !status.IsValid() {
			response.BadRequest(c, "Invalid status. Use 'Unpaid', 'Partially Paid' or 'Paid'")
			return
		}
		filter.Status = status
	}
	if req.CustomerID != "" {
		customerID, err := uuid.Parse(req.CustomerID)
		if err != nil {
			response.BadRequest(c, "Invalid customer ID")
			return
		}
		filter.CustomerID = &customerID
	}

	params := &pagination.PaginationParams{Page: req.Page, PerPage: req.PerPage}
	params.Validate()

	result, err := h.billService.ListBills(c.Request.Context(), filter, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Bills retrieved successfully", result)
}

// ListDue handles listing bills that still have an amount due
func (h *BillHandler) ListDue(c *gin.Context) {
	result, err := h.billService.ListDueBills(c.Request.Context(), pageParams(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, 200, "Due bills retrieved successfully", result)
}

// Create handles creating a bill
func (h *BillHandler) Create(c *gin.Context) {
	var req request.CreateBillRequest
	if !bindJSON(c, &req) {
		return
	}

	input := &service.CreateBillInput{
		CustomerID:   req.CustomerID,
		Name:         req.Name,
		Category:     req.Category,
		DeliveryDate: req.DeliveryDate.Ptr(),
		Items:        itemInputs(req.Items),
		Discount:     req.Discount,
		Notes:        req.Notes,
	}
	if req.OrderDate != nil {
		input.OrderDate = req.OrderDate.Time
	}

	bill, err := h.billService.CreateBill(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Bill created successfully", bill)
}

// Get handles getting a single bill
func (h *BillHandler) Get(c *gin.Context) {
	number, ok := parseNumber(c, "number")
	if !ok {
		return
	}

	bill, err := h.billService.GetBill(c.Request.Context(), number)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill retrieved successfully", bill)
}

// Update handles editing a bill's header, lines or discount
func (h *BillHandler) Update(c *gin.Context) {
	number, ok := parseNumber(c, "number")
	if !ok {
		return
	}

	var req request.UpdateBillRequest
	if !bindJSON(c, &req) {
		return
	}

	bill, err := h.billService.UpdateBill(c.Request.Context(), &service.UpdateBillInput{
		Number:       number,
		Version:      req.Version,
		CustomerID:   req.CustomerID,
		Name:         req.Name,
		Category:     req.Category,
		OrderDate:    req.OrderDate.Ptr(),
		DeliveryDate: req.DeliveryDate.Ptr(),
		Items:        itemInputs(req.Items),
		Discount:     req.Discount,
		Notes:        req.Notes,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Bill updated successfully", bill)
}

// Delete handles deleting a bill without receipts
func (h *BillHandler) Delete(c *gin.Context) {
	number, ok := parseNumber(c, "number")
	if !ok {
		return
	}

	if err := h.billService.DeleteBill(c.Request.Context(), number); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// AmountTrack returns the figures the receipt form starts from.
// ?exclude=<receipt number> leaves that receipt out when editing it.
func (h *BillHandler) AmountTrack(c *gin.Context) {
	number, ok := parseNumber(c, "number")
	if !ok {
		return
	}

	var exclude int64
	if raw := c.Query("exclude"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			response.BadRequest(c, "Invalid exclude receipt number")
			return
		}
		exclude = n
	}

	track, err := h.billService.AmountTrack(c.Request.Context(), number, exclude)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Amount track retrieved successfully", track)
}

// Reconcile compares a bill's stored totals with its receipts.
// ?repair=true rewrites drifted totals.
func (h *BillHandler) Reconcile(c *gin.Context) {
	number, ok := parseNumber(c, "number")
	if !ok {
		return
	}

	repair, _ := strconv.ParseBool(c.DefaultQuery("repair", "false"))

	result, err := h.billService.Reconcile(c.Request.Context(), number, repair)
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Bill totals are consistent"
	switch {
	case result.Repaired:
		message = "Bill totals repaired"
	case !result.Consistent:
		message = "Bill totals have drifted"
	}
	response.OK(c, message, result)
}

// Receipts returns the receipt history of a bill
func (h *BillHandler) Receipts(c *gin.Context) {
	number, ok := parseNumber(c, "number")
	if !ok {
		return
	}

	receipts, err := h.receiptService.ListByBill(c.Request.Context(), number)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipts retrieved successfully", receipts)
}
