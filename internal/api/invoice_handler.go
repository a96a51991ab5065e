package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shifttrack-backend-go/internal/core"
	"shifttrack-backend-go/internal/models"
)

// InvoiceHandler handles invoice API endpoints.
type InvoiceHandler struct {
	invoiceService core.InvoiceService
	logger         *zap.Logger
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(is core.InvoiceService, logger *zap.Logger) *InvoiceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvoiceHandler{invoiceService: is, logger: logger}
}

// mapInvoiceErrorToStatus maps errors from core.InvoiceService to HTTP status
// codes and an ErrorResponse body.
func (h *InvoiceHandler) mapInvoiceErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrInvoiceNotFound), errors.Is(err, core.ErrInvoiceForbidden):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: "Invoice not found"}
	case errors.Is(err, core.ErrEmptyInvoicePeriod):
		statusCode = http.StatusUnprocessableEntity
		errResponse = ErrorResponse{Error: "No billable shifts in the requested period"}
	case errors.Is(err, core.ErrInvalidPeriod):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Invalid invoice period", Details: err.Error()}
	default:
		h.logger.Error("Unexpected invoice service error", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

// GenerateInvoice handles POST /api/v1/invoices.
// It aggregates the caller's ended shifts in the requested period into a
// numbered invoice document.
func (h *InvoiceHandler) GenerateInvoice(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req models.GenerateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	invoice, err := h.invoiceService.Generate(c.Request.Context(), userID, req)
	if err != nil {
		h.mapInvoiceErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

// ListInvoices handles GET /api/v1/invoices.
// Supports limit and startAfter query parameters for pagination.
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	pagination := map[string]string{}
	if limit := c.Query("limit"); limit != "" {
		pagination["limit"] = limit
	}
	if startAfter := c.Query("startAfter"); startAfter != "" {
		pagination["startAfter"] = startAfter
	}

	invoices, err := h.invoiceService.List(c.Request.Context(), userID, pagination)
	if err != nil {
		h.mapInvoiceErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// GetInvoice handles GET /api/v1/invoices/:invoiceId.
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetByID(c.Request.Context(), userID, c.Param("invoiceId"))
	if err != nil {
		h.mapInvoiceErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice handles DELETE /api/v1/invoices/:invoiceId.
// The invoice number is not reused after deletion.
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), userID, c.Param("invoiceId")); err != nil {
		h.mapInvoiceErrorToStatus(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// DownloadInvoicePDF handles GET /api/v1/invoices/:invoiceId/pdf.
func (h *InvoiceHandler) DownloadInvoicePDF(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	invoiceID := c.Param("invoiceId")

	// Fetch first so the Content-Disposition filename can carry the invoice
	// number rather than the opaque document ID.
	invoice, err := h.invoiceService.GetByID(c.Request.Context(), userID, invoiceID)
	if err != nil {
		h.mapInvoiceErrorToStatus(c, err)
		return
	}

	pdfBytes, err := h.invoiceService.RenderPDF(c.Request.Context(), userID, invoiceID)
	if err != nil {
		h.mapInvoiceErrorToStatus(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", invoice.Number+".pdf"))
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

// DownloadInvoiceCSV handles GET /api/v1/invoices/:invoiceId/csv.
func (h *InvoiceHandler) DownloadInvoiceCSV(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	invoiceID := c.Param("invoiceId")

	invoice, err := h.invoiceService.GetByID(c.Request.Context(), userID, invoiceID)
	if err != nil {
		h.mapInvoiceErrorToStatus(c, err)
		return
	}

	csvBytes, err := h.invoiceService.RenderCSV(c.Request.Context(), userID, invoiceID)
	if err != nil {
		h.mapInvoiceErrorToStatus(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", invoice.Number+".csv"))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", csvBytes)
}
