package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tailorbook-api/internal/application/service"
	"github.com/sangkips/tailorbook-api/internal/presentation/http/dto/response"
)

// PrinterHandler handles printer-related HTTP requests.
type PrinterHandler struct {
	printerService *service.PrinterService
}

// NewPrinterHandler creates a new printer handler.
func NewPrinterHandler(printerService *service.PrinterService) *PrinterHandler {
	return &PrinterHandler{printerService: printerService}
}

// GetStatus returns the current printer connection status.
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	status := h.printerService.GetStatus(c.Request.Context())
	response.OK(c, "Printer status retrieved", status)
}

// PrintReceipt prints the payment slip of a receipt.
func (h *PrinterHandler) PrintReceipt(c *gin.Context) {
	number, ok := parseNumber(c, "number")
	if !ok {
		return
	}

	slip, err := h.printerService.PrintReceipt(c.Request.Context(), number)
	if err != nil {
		// The slip was built but printing failed; the counter can still show it
		if slip != nil {
			response.OK(c, "Slip generated but printing failed", gin.H{
				"slip":    slip,
				"warning": err.Error(),
			})
			return
		}
		response.Error(c, err)
		return
	}

	response.OK(c, "Receipt printed successfully", gin.H{
		"slip": slip,
	})
}
