// Package repository is the gorm data access layer. Every repository is
// bound to a *gorm.DB, which is either the pool or an open transaction.
package repository

import (
	"context"

	"github.com/pkg/errors"
	"github.com/supportta-projects/waterpurifier-sub000/internal/ids"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("record not found")

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

type Page struct {
	Page  int
	Limit int
}

// NewPage clamps page to >= 1 and limit to 1..MaxLimit.
func NewPage(page, limit int) Page {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Page{Page: page, Limit: limit}
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

type Repositories struct {
	db        *gorm.DB
	Customers *CustomerRepository
	Products  *ProductRepository
	Orders    *OrderRepository
	Services  *ServiceRepository
	Invoices  *InvoiceRepository
	Users     *UserRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		db:        db,
		Customers: &CustomerRepository{db: db},
		Products:  &ProductRepository{db: db},
		Orders:    &OrderRepository{db: db},
		Services:  &ServiceRepository{db: db},
		Invoices:  &InvoiceRepository{db: db},
		Users:     &UserRepository{db: db},
	}
}

// Transaction runs fn against repositories bound to one transaction.
// Returning an error from fn rolls everything back.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func customIDExists(db *gorm.DB, model interface{}, column string) ids.ExistsFunc {
	return func(ctx context.Context, customID string) (bool, error) {
		var n int64
		err := db.WithContext(ctx).Model(model).Where(column+" = ?", customID).Count(&n).Error
		return n > 0, err
	}
}

func paginate(q *gorm.DB, p Page, dest interface{}) (int64, error) {
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, err
	}
	if err := q.Offset(p.Offset()).Limit(p.Limit).Find(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}

type StatusCount struct {
	Status string
	Count  int64
}

func countBy(q *gorm.DB, column string) (map[string]int64, error) {
	var rows []StatusCount
	if err := q.Select(column + " AS status, COUNT(*) AS count").Group(column).Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}

func likePattern(q string) string {
	return "%" + q + "%"
}
