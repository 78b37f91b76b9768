package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/supportta-projects/waterpurifier-sub000/internal/ids"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"gorm.io/gorm"
)

type UserFilter struct {
	Roles  []models.Role
	Active *bool
	Query  string
}

type UserRepository struct {
	db *gorm.DB
}

func (r *UserRepository) CustomIDExists() ids.ExistsFunc {
	return customIDExists(r.db, &models.User{}, "custom_id")
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *UserRepository) Get(ctx context.Context, id snowflake.ID) (*models.User, error) {
	var u models.User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// GetByEmail matches case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.db.WithContext(ctx).First(&u, "LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&n).Error
	return n > 0, err
}

func (r *UserRepository) Save(ctx context.Context, u *models.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *UserRepository) List(ctx context.Context, f UserFilter, p Page) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if len(f.Roles) > 0 {
		q = q.Where("role IN ?", f.Roles)
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	if f.Query != "" {
		like := likePattern(strings.ToLower(f.Query))
		q = q.Where("(LOWER(name) LIKE ? OR email LIKE ?)", like, like)
	}

	var users []models.User
	total, err := paginate(q.Order("name ASC"), p, &users)
	return users, total, err
}

func (r *UserRepository) CountByRole(ctx context.Context) (map[string]int64, error) {
	return countBy(r.db.WithContext(ctx).Model(&models.User{}).Where("is_active = ?", true), "role")
}
