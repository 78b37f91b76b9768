package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/supportta-projects/waterpurifier-sub000/internal/billing"
	"gorm.io/gorm"
)

type PublicHandler struct {
	db      *gorm.DB
	billing *billing.Service
}

func NewPublicHandler(db *gorm.DB, billing *billing.Service) *PublicHandler {
	return &PublicHandler{db: db, billing: billing}
}

func (h *PublicHandler) Health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	if sqlDB, err := h.db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// PublicInvoice is the page a shared link opens. The token is the only
// credential, so the response leaves out internal references.
func (h *PublicHandler) PublicInvoice(c *gin.Context) {
	inv, err := h.billing.PublicInvoice(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"invoice_number": inv.InvoiceNumber,
		"invoice_type":   inv.InvoiceType,
		"customer_name":  inv.CustomerName,
		"product_name":   inv.ProductName,
		"quantity":       inv.Quantity,
		"unit_price":     inv.UnitPrice,
		"total_amount":   inv.TotalAmount,
		"status":         inv.Status,
		"notes":          inv.Notes,
		"created_at":     inv.CreatedAt,
		"share_url":      inv.ShareURL,
	})
}
