package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/supportta-projects/waterpurifier-sub000/internal/ids"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"gorm.io/gorm"
)

type ServiceFilter struct {
	Status       models.ServiceStatus
	ServiceType  models.ServiceType
	CustomerID   snowflake.ID
	TechnicianID snowflake.ID
	// WithAvailable widens a TechnicianID filter to unassigned AVAILABLE visits.
	WithAvailable bool
	From          *time.Time
	To            *time.Time
}

type ServiceRepository struct {
	db *gorm.DB
}

func (r *ServiceRepository) CustomIDExists() ids.ExistsFunc {
	return customIDExists(r.db, &models.Service{}, "custom_id")
}

func (r *ServiceRepository) Create(ctx context.Context, s *models.Service) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *ServiceRepository) Get(ctx context.Context, id snowflake.ID) (*models.Service, error) {
	var s models.Service
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// Save writes every column, nil pointers included.
func (r *ServiceRepository) Save(ctx context.Context, s *models.Service) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *ServiceRepository) SetInvoice(ctx context.Context, serviceID, invoiceID snowflake.ID) error {
	return r.db.WithContext(ctx).Model(&models.Service{}).
		Where("id = ?", serviceID).
		Update("invoice_id", invoiceID).Error
}

func (r *ServiceRepository) SetFollowUp(ctx context.Context, serviceID, followUpID snowflake.ID) error {
	return r.db.WithContext(ctx).Model(&models.Service{}).
		Where("id = ?", serviceID).
		Update("follow_up_id", followUpID).Error
}

func (r *ServiceRepository) filter(ctx context.Context, f ServiceFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Service{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ServiceType != "" {
		q = q.Where("service_type = ?", f.ServiceType)
	}
	if f.CustomerID != 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.TechnicianID != 0 {
		if f.WithAvailable {
			q = q.Where("(technician_id = ? OR status = ?)", f.TechnicianID, models.ServiceAvailable)
		} else {
			q = q.Where("technician_id = ?", f.TechnicianID)
		}
	}
	if f.From != nil {
		q = q.Where("scheduled_date >= ?", *f.From)
	}
	if f.To != nil {
		q = q.Where("scheduled_date < ?", *f.To)
	}
	return q
}

func (r *ServiceRepository) List(ctx context.Context, f ServiceFilter, p Page) ([]models.Service, int64, error) {
	var services []models.Service
	total, err := paginate(r.filter(ctx, f).Order("scheduled_date ASC"), p, &services)
	return services, total, err
}

func (r *ServiceRepository) CountByStatus(ctx context.Context, f ServiceFilter) (map[string]int64, error) {
	return countBy(r.filter(ctx, f), "status")
}

// CompletedWithoutFollowUp returns completed quarterly visits that have no
// next visit scheduled yet.
func (r *ServiceRepository) CompletedWithoutFollowUp(ctx context.Context, limit int) ([]models.Service, error) {
	var services []models.Service
	err := r.db.WithContext(ctx).
		Where("service_type = ? AND status = ? AND follow_up_id IS NULL AND completed_date IS NOT NULL",
			models.ServiceQuarterly, models.ServiceCompleted).
		Order("completed_date ASC").
		Limit(limit).
		Find(&services).Error
	return services, err
}

// ScheduledBetween returns open visits with scheduled_date in [from, to).
func (r *ServiceRepository) ScheduledBetween(ctx context.Context, from, to time.Time) ([]models.Service, error) {
	var services []models.Service
	err := r.db.WithContext(ctx).
		Where("scheduled_date >= ? AND scheduled_date < ? AND status <> ?", from, to, models.ServiceCompleted).
		Order("scheduled_date ASC").
		Find(&services).Error
	return services, err
}
