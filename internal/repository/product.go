package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/supportta-projects/waterpurifier-sub000/internal/ids"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"gorm.io/gorm"
)

type ProductFilter struct {
	Query  string
	Status models.ProductStatus
}

type ProductRepository struct {
	db *gorm.DB
}

func (r *ProductRepository) CustomIDExists() ids.ExistsFunc {
	return customIDExists(r.db, &models.Product{}, "custom_id")
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *ProductRepository) Get(ctx context.Context, id snowflake.ID) (*models.Product, error) {
	var p models.Product
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *ProductRepository) Save(ctx context.Context, p *models.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *ProductRepository) Delete(ctx context.Context, id snowflake.ID) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepository) List(ctx context.Context, f ProductFilter, p Page) ([]models.Product, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Product{})
	if f.Query != "" {
		like := likePattern(strings.ToLower(f.Query))
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", like, like)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}

	var products []models.Product
	total, err := paginate(q.Order("name ASC"), p, &products)
	return products, total, err
}

// IntervalMonths maps product ids to their service interval.
func (r *ProductRepository) IntervalMonths(ctx context.Context, productIDs []snowflake.ID) (map[snowflake.ID]int, error) {
	out := make(map[snowflake.ID]int, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}
	var products []models.Product
	if err := r.db.WithContext(ctx).Select("id", "service_interval_months").
		Where("id IN ?", productIDs).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p.ServiceIntervalMonths
	}
	return out, nil
}
