package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tailorbook-api/internal/application/service"
	"github.com/sangkips/tailorbook-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tailorbook-api/internal/presentation/http/dto/response"
)

// TaxHandler handles shop tax definitions
type TaxHandler struct {
	taxService *service.TaxService
}

// NewTaxHandler creates a new tax handler
func NewTaxHandler(taxService *service.TaxService) *TaxHandler {
	return &TaxHandler{taxService: taxService}
}

func taxInput(req *request.TaxRequest) *service.TaxInput {
	return &service.TaxInput{
		Name:          req.Name,
		TaxType:       req.TaxType,
		TaxPercentage: req.TaxPercentage,
		Active:        req.Active,
	}
}

// List returns the shop's taxes. ?active=true hides disabled ones.
func (h *TaxHandler) List(c *gin.Context) {
	taxes, err := h.taxService.ListTaxes(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Taxes retrieved successfully", taxes)
}

// Create defines a new tax
func (h *TaxHandler) Create(c *gin.Context) {
	var req request.TaxRequest
	if !bindJSON(c, &req) {
		return
	}

	tax, err := h.taxService.CreateTax(c.Request.Context(), taxInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Tax created successfully", tax)
}

// Update replaces a tax definition. Receipts keep the copy they were paid with.
func (h *TaxHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req request.TaxRequest
	if !bindJSON(c, &req) {
		return
	}

	tax, err := h.taxService.UpdateTax(c.Request.Context(), id, taxInput(&req))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Tax updated successfully", tax)
}

// Delete removes a tax definition
func (h *TaxHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.taxService.DeleteTax(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
