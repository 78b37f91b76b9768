package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/supportta-projects/waterpurifier-sub000/internal/ids"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"gorm.io/gorm"
)

type OrderFilter struct {
	Status     models.OrderStatus
	CustomerID snowflake.ID
}

type OrderRepository struct {
	db *gorm.DB
}

func (r *OrderRepository) CustomIDExists() ids.ExistsFunc {
	return customIDExists(r.db, &models.Order{}, "custom_id")
}

func (r *OrderRepository) Create(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *OrderRepository) Get(ctx context.Context, id snowflake.ID) (*models.Order, error) {
	var o models.Order
	if err := r.db.WithContext(ctx).First(&o, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *OrderRepository) Save(ctx context.Context, o *models.Order) error {
	return r.db.WithContext(ctx).Save(o).Error
}

// LinkInvoice stores the invoice back-reference on the order.
func (r *OrderRepository) LinkInvoice(ctx context.Context, orderID snowflake.ID, inv *models.Invoice) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
		"invoice_id":     inv.ID,
		"invoice_number": inv.InvoiceNumber,
		"invoice_status": inv.Status,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *OrderRepository) SetInvoiceStatus(ctx context.Context, invoiceID snowflake.ID, status models.InvoiceStatus) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("invoice_id = ?", invoiceID).
		Update("invoice_status", status).Error
}

func (r *OrderRepository) List(ctx context.Context, f OrderFilter, p Page) ([]models.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Order{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.CustomerID != 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}

	var orders []models.Order
	total, err := paginate(q.Order("created_at DESC"), p, &orders)
	return orders, total, err
}

func (r *OrderRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	return countBy(r.db.WithContext(ctx).Model(&models.Order{}), "status")
}
