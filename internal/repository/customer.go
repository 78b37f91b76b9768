package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/supportta-projects/waterpurifier-sub000/internal/ids"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"gorm.io/gorm"
)

type CustomerFilter struct {
	Query  string
	Active *bool
}

type CustomerRepository struct {
	db *gorm.DB
}

func (r *CustomerRepository) CustomIDExists() ids.ExistsFunc {
	return customIDExists(r.db, &models.Customer{}, "custom_id")
}

func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *CustomerRepository) Get(ctx context.Context, id snowflake.ID) (*models.Customer, error) {
	var c models.Customer
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *CustomerRepository) Save(ctx context.Context, c *models.Customer) error {
	return r.db.WithContext(ctx).Save(c).Error
}

func (r *CustomerRepository) Delete(ctx context.Context, id snowflake.ID) error {
	res := r.db.WithContext(ctx).Delete(&models.Customer{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// EmailTaken reports whether another customer already uses email.
func (r *CustomerRepository) EmailTaken(ctx context.Context, email string, except snowflake.ID) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).
		Where("LOWER(email) = ? AND id <> ?", strings.ToLower(email), except).
		Count(&n).Error
	return n > 0, err
}

func (r *CustomerRepository) List(ctx context.Context, f CustomerFilter, p Page) ([]models.Customer, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Customer{})
	if f.Query != "" {
		like := likePattern(strings.ToLower(f.Query))
		q = q.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ? OR custom_id LIKE ?)",
			like, like, like, strings.ToUpper(likePattern(f.Query)))
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}

	var customers []models.Customer
	total, err := paginate(q.Order("created_at DESC"), p, &customers)
	return customers, total, err
}

func (r *CustomerRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Customer{}).Count(&n).Error
	return n, err
}
