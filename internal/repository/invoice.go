package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/supportta-projects/waterpurifier-sub000/internal/ids"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"gorm.io/gorm"
)

type InvoiceFilter struct {
	Status      models.InvoiceStatus
	InvoiceType models.InvoiceType
	CustomerID  snowflake.ID
	CreatedBy   snowflake.ID
}

type InvoiceRepository struct {
	db *gorm.DB
}

func (r *InvoiceRepository) NumberExists() ids.ExistsFunc {
	return customIDExists(r.db, &models.Invoice{}, "invoice_number")
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *InvoiceRepository) Get(ctx context.Context, id snowflake.ID) (*models.Invoice, error) {
	var inv models.Invoice
	if err := r.db.WithContext(ctx).First(&inv, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &inv, nil
}

func (r *InvoiceRepository) GetByShareToken(ctx context.Context, token string) (*models.Invoice, error) {
	var inv models.Invoice
	if err := r.db.WithContext(ctx).First(&inv, "share_token = ?", token).Error; err != nil {
		return nil, notFound(err)
	}
	return &inv, nil
}

func (r *InvoiceRepository) GetByOrderID(ctx context.Context, orderID snowflake.ID) (*models.Invoice, error) {
	var inv models.Invoice
	if err := r.db.WithContext(ctx).First(&inv, "order_id = ?", orderID).Error; err != nil {
		return nil, notFound(err)
	}
	return &inv, nil
}

func (r *InvoiceRepository) ExistsForService(ctx context.Context, serviceID snowflake.ID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Invoice{}).Where("service_id = ?", serviceID).Count(&n).Error
	return n > 0, err
}

func (r *InvoiceRepository) Save(ctx context.Context, inv *models.Invoice) error {
	return r.db.WithContext(ctx).Save(inv).Error
}

func (r *InvoiceRepository) filter(ctx context.Context, f InvoiceFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Invoice{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.InvoiceType != "" {
		q = q.Where("invoice_type = ?", f.InvoiceType)
	}
	if f.CustomerID != 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.CreatedBy != 0 {
		q = q.Where("created_by = ?", f.CreatedBy)
	}
	return q
}

func (r *InvoiceRepository) List(ctx context.Context, f InvoiceFilter, p Page) ([]models.Invoice, int64, error) {
	var invoices []models.Invoice
	total, err := paginate(r.filter(ctx, f).Order("created_at DESC"), p, &invoices)
	return invoices, total, err
}

// All returns every matching invoice, oldest first. Used by exports.
func (r *InvoiceRepository) All(ctx context.Context, f InvoiceFilter) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.filter(ctx, f).Order("created_at ASC").Find(&invoices).Error
	return invoices, err
}

func (r *InvoiceRepository) CountByStatus(ctx context.Context, f InvoiceFilter) (map[string]int64, error) {
	return countBy(r.filter(ctx, f), "status")
}

func (r *InvoiceRepository) Total(ctx context.Context, f InvoiceFilter) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.filter(ctx, f).Select("SUM(total_amount)").Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
