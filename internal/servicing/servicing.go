// Package servicing manages maintenance visits: creation, technician
// assignment, the status lifecycle and recurring quarterly follow-ups.
package servicing

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
	"github.com/supportta-projects/waterpurifier-sub000/internal/auth"
	"github.com/supportta-projects/waterpurifier-sub000/internal/events"
	"github.com/supportta-projects/waterpurifier-sub000/internal/ids"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"github.com/supportta-projects/waterpurifier-sub000/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrServiceNotFound       = errors.New("service not found")
	ErrCustomerNotFound      = errors.New("customer not found")
	ErrCustomerInactive      = errors.New("customer is inactive")
	ErrProductNotFound       = errors.New("product not found")
	ErrOrderMismatch         = errors.New("order does not belong to customer")
	ErrInvalidStatus         = errors.New("invalid service status")
	ErrInvalidType           = errors.New("invalid service type")
	ErrScheduledDateRequired = errors.New("scheduled date is required")
	ErrTechnicianRequired    = errors.New("technician is required")
	ErrTechnicianUnavailable = errors.New("technician not found or inactive")
)

const DefaultIntervalMonths = 3

type Service struct {
	repos *repository.Repositories
	gen   *ids.Generator
	bus   *events.Bus
	now   func() time.Time
}

func NewService(repos *repository.Repositories, gen *ids.Generator, bus *events.Bus) *Service {
	return &Service{repos: repos, gen: gen, bus: bus, now: time.Now}
}

// WithClock replaces the clock used for completion stamps and reminders.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func mapNotFound(err, target error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return err
}

// CanView reports whether actor may see svc. Technicians see their own
// visits and unassigned available ones.
func CanView(actor *auth.Session, svc *models.Service) bool {
	if actor.IsManager() {
		return true
	}
	if !actor.HasRole(models.RoleTechnician) {
		return false
	}
	if svc.TechnicianID != nil && *svc.TechnicianID == actor.UserID {
		return true
	}
	return svc.Status == models.ServiceAvailable
}

func (s *Service) Create(ctx context.Context, actor *auth.Session, req models.CreateServiceRequest) (*models.Service, error) {
	if !actor.IsManager() {
		return nil, auth.ErrForbidden
	}
	if req.ServiceType == "" {
		req.ServiceType = models.ServiceManual
	}
	if !req.ServiceType.Valid() {
		return nil, ErrInvalidType
	}
	if req.ScheduledDate.IsZero() {
		return nil, ErrScheduledDateRequired
	}

	customer, err := s.repos.Customers.Get(ctx, req.CustomerID)
	if err != nil {
		return nil, mapNotFound(err, ErrCustomerNotFound)
	}
	if !customer.IsActive {
		return nil, ErrCustomerInactive
	}
	product, err := s.repos.Products.Get(ctx, req.ProductID)
	if err != nil {
		return nil, mapNotFound(err, ErrProductNotFound)
	}
	if req.OrderID != nil {
		order, err := s.repos.Orders.Get(ctx, *req.OrderID)
		if err != nil || order.CustomerID != customer.ID {
			return nil, ErrOrderMismatch
		}
	}

	customID, err := s.gen.Reserve(ctx, ids.PrefixService, s.repos.Services.CustomIDExists())
	if err != nil {
		return nil, err
	}
	svc := &models.Service{
		ID:            s.gen.NextID(),
		CustomID:      customID,
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		CustomerPhone: customer.Phone,
		ProductID:     product.ID,
		ProductName:   product.Name,
		OrderID:       req.OrderID,
		ServiceType:   req.ServiceType,
		Status:        models.ServiceAvailable,
		ScheduledDate: req.ScheduledDate,
		Notes:         req.Notes,
		CreatedBy:     actor.UserID,
	}
	if err := s.repos.Services.Create(ctx, svc); err != nil {
		return nil, errors.Wrap(err, "create service")
	}
	zap.L().Info("service created", zap.String("service", svc.CustomID), zap.String("type", string(svc.ServiceType)))
	return svc, nil
}

func (s *Service) Get(ctx context.Context, actor *auth.Session, id snowflake.ID) (*models.Service, error) {
	svc, err := s.repos.Services.Get(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrServiceNotFound)
	}
	if !CanView(actor, svc) {
		return nil, auth.ErrForbidden
	}
	return svc, nil
}

func (s *Service) List(ctx context.Context, actor *auth.Session, f repository.ServiceFilter, p repository.Page) ([]models.Service, int64, error) {
	if !actor.IsManager() {
		f.TechnicianID = actor.UserID
		f.WithAvailable = true
	}
	return s.repos.Services.List(ctx, f, p)
}

// UpdateStatus moves a visit to any status. AVAILABLE clears the technician
// and completion date, ASSIGNED needs an active technician, COMPLETED
// stamps the completion date. Technicians may only progress their own
// visits and never assign or release them.
func (s *Service) UpdateStatus(ctx context.Context, actor *auth.Session, id snowflake.ID, req models.UpdateServiceStatusRequest) (*models.Service, error) {
	if !req.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	svc, err := s.repos.Services.Get(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrServiceNotFound)
	}

	if !actor.IsManager() {
		if !actor.HasRole(models.RoleTechnician) || svc.TechnicianID == nil || *svc.TechnicianID != actor.UserID {
			return nil, auth.ErrForbidden
		}
		if req.Status == models.ServiceAssigned || req.Status == models.ServiceAvailable {
			return nil, auth.ErrForbidden
		}
	}

	var technician *models.User
	switch req.Status {
	case models.ServiceAvailable:
		svc.TechnicianID = nil
		svc.TechnicianName = nil
		svc.CompletedDate = nil
	case models.ServiceAssigned:
		if req.TechnicianID == nil || *req.TechnicianID == 0 {
			return nil, ErrTechnicianRequired
		}
		technician, err = s.repos.Users.Get(ctx, *req.TechnicianID)
		if err != nil {
			return nil, mapNotFound(err, ErrTechnicianUnavailable)
		}
		if technician.Role != models.RoleTechnician || !technician.IsActive {
			return nil, ErrTechnicianUnavailable
		}
		name := req.TechnicianName
		if name == "" {
			name = technician.Name
		}
		techID := technician.ID
		svc.TechnicianID = &techID
		svc.TechnicianName = &name
	case models.ServiceCompleted:
		done := s.now()
		if done.Before(svc.CreatedAt) {
			done = svc.CreatedAt
		}
		svc.CompletedDate = &done
	}
	svc.Status = req.Status

	if err := s.repos.Services.Save(ctx, svc); err != nil {
		return nil, errors.Wrap(err, "update service")
	}

	switch req.Status {
	case models.ServiceAssigned:
		s.bus.Publish(events.TopicServiceAssigned, events.ServiceAssigned{Service: *svc, Technician: *technician})
	case models.ServiceCompleted:
		s.bus.Publish(events.TopicServiceCompleted, events.ServiceCompleted{Service: *svc})
	}
	zap.L().Info("service status updated",
		zap.String("service", svc.CustomID),
		zap.String("status", string(svc.Status)),
		zap.String("by", actor.UserID.String()))
	return svc, nil
}

func (s *Service) Assign(ctx context.Context, actor *auth.Session, id, technicianID snowflake.ID) (*models.Service, error) {
	return s.UpdateStatus(ctx, actor, id, models.UpdateServiceStatusRequest{
		Status:       models.ServiceAssigned,
		TechnicianID: &technicianID,
	})
}
