package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/supportta-projects/waterpurifier-sub000/internal/billing"
	"github.com/supportta-projects/waterpurifier-sub000/internal/middleware"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"github.com/supportta-projects/waterpurifier-sub000/internal/repository"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type InvoiceHandler struct {
	billing *billing.Service
}

func NewInvoiceHandler(billing *billing.Service) *InvoiceHandler {
	return &InvoiceHandler{billing: billing}
}

func invoiceFilter(c *gin.Context) repository.InvoiceFilter {
	return repository.InvoiceFilter{
		Status:      models.InvoiceStatus(strings.ToUpper(c.Query("status"))),
		InvoiceType: models.InvoiceType(strings.ToUpper(c.Query("invoice_type"))),
		CustomerID:  queryID(c, "customer_id"),
	}
}

func (h *InvoiceHandler) GetInvoices(c *gin.Context) {
	p := pageFromQuery(c)
	invoices, total, err := h.billing.ListInvoices(c.Request.Context(), middleware.CurrentSession(c), invoiceFilter(c), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse("invoices", invoices, total, p))
}

func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	id, ok := paramID(c, "invoice")
	if !ok {
		return
	}

	inv, err := h.billing.GetInvoice(c.Request.Context(), middleware.CurrentSession(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *InvoiceHandler) UpdateInvoiceStatus(c *gin.Context) {
	id, ok := paramID(c, "invoice")
	if !ok {
		return
	}

	var req models.UpdateInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	inv, err := h.billing.UpdateInvoiceStatus(c.Request.Context(), middleware.CurrentSession(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// ShareInvoice returns the WhatsApp link for the invoice and marks it sent.
func (h *InvoiceHandler) ShareInvoice(c *gin.Context) {
	id, ok := paramID(c, "invoice")
	if !ok {
		return
	}

	inv, err := h.billing.Share(c.Request.Context(), middleware.CurrentSession(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"invoice":   inv,
		"share_url": inv.ShareURL,
		"view_url":  h.billing.ViewURL(inv),
	})
}

// ExportInvoices streams every matching invoice as CSV (default) or XLSX.
func (h *InvoiceHandler) ExportInvoices(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid format",
			Message: "format must be csv or xlsx",
			Code:    http.StatusBadRequest,
		})
		return
	}

	var buf bytes.Buffer
	var err error
	contentType := "text/csv"
	ctx, actor, f := c.Request.Context(), middleware.CurrentSession(c), invoiceFilter(c)
	if format == "xlsx" {
		contentType = xlsxContentType
		err = h.billing.ExportXLSX(ctx, actor, f, &buf)
	} else {
		err = h.billing.ExportCSV(ctx, actor, f, &buf)
	}
	if err != nil {
		respondError(c, err)
		return
	}

	filename := fmt.Sprintf("invoices-%s.%s", time.Now().Format("20060102"), format)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
