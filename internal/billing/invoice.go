package billing

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
	"github.com/supportta-projects/waterpurifier-sub000/internal/auth"
	"github.com/supportta-projects/waterpurifier-sub000/internal/events"
	"github.com/supportta-projects/waterpurifier-sub000/internal/ids"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"github.com/supportta-projects/waterpurifier-sub000/internal/repository"
	"go.uber.org/zap"
)

// CreateServiceInvoice bills a completed service. Only technicians raise
// service invoices, and only for services assigned to them.
func (s *Service) CreateServiceInvoice(ctx context.Context, actor *auth.Session, serviceID snowflake.ID, req models.CreateServiceInvoiceRequest) (*models.Invoice, error) {
	if !actor.HasRole(models.RoleTechnician) {
		return nil, auth.ErrForbidden
	}

	svc, err := s.repos.Services.Get(ctx, serviceID)
	if err != nil {
		return nil, mapNotFound(err, ErrServiceNotFound)
	}
	if svc.TechnicianID != nil && *svc.TechnicianID != actor.UserID {
		return nil, auth.ErrForbidden
	}
	if svc.Status != models.ServiceCompleted {
		return nil, ErrServiceNotCompleted
	}
	if !ValidAmount(req.Amount) {
		return nil, ErrInvalidAmount
	}
	if svc.InvoiceID != nil {
		return nil, ErrInvoiceExists
	}

	var email string
	if customer, err := s.repos.Customers.Get(ctx, svc.CustomerID); err == nil {
		email = customer.Email
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	var invoice models.Invoice
	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		exists, err := tx.Invoices.ExistsForService(ctx, svc.ID)
		if err != nil {
			return err
		}
		if exists {
			return ErrInvoiceExists
		}

		number, err := s.gen.Reserve(ctx, ids.PrefixInvoice, tx.Invoices.NumberExists())
		if err != nil {
			return err
		}
		serviceRef := svc.ID
		invoice = models.Invoice{
			ID:            s.gen.NextID(),
			InvoiceNumber: number,
			InvoiceType:   models.InvoiceForService,
			ServiceID:     &serviceRef,
			CustomerID:    svc.CustomerID,
			CustomerName:  svc.CustomerName,
			CustomerPhone: svc.CustomerPhone,
			CustomerEmail: email,
			ProductID:     svc.ProductID,
			ProductName:   svc.ProductName,
			Quantity:      1,
			UnitPrice:     req.Amount,
			TotalAmount:   req.Amount,
			Status:        models.InvoicePending,
			ShareToken:    s.newToken(),
			Notes:         req.Notes,
			CreatedBy:     actor.UserID,
		}
		invoice.ShareURL = s.ShareURL(&invoice)
		if err := tx.Invoices.Create(ctx, &invoice); err != nil {
			return errors.Wrap(err, "create invoice")
		}
		return tx.Services.SetInvoice(ctx, svc.ID, invoice.ID)
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("service invoice created",
		zap.String("service", svc.CustomID),
		zap.String("invoice", invoice.InvoiceNumber))
	s.bus.Publish(events.TopicInvoiceCreated, events.InvoiceCreated{Invoice: invoice})
	return &invoice, nil
}

// CanView reports whether actor may read inv. Technicians only see the
// invoices they raised.
func CanView(actor *auth.Session, inv *models.Invoice) bool {
	if actor.IsManager() {
		return true
	}
	return actor.HasRole(models.RoleTechnician) && inv.CreatedBy == actor.UserID
}

func (s *Service) GetInvoice(ctx context.Context, actor *auth.Session, id snowflake.ID) (*models.Invoice, error) {
	inv, err := s.repos.Invoices.Get(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, ErrInvoiceNotFound)
	}
	if !CanView(actor, inv) {
		return nil, auth.ErrForbidden
	}
	return inv, nil
}

func (s *Service) ListInvoices(ctx context.Context, actor *auth.Session, f repository.InvoiceFilter, p repository.Page) ([]models.Invoice, int64, error) {
	if !actor.IsManager() {
		f.CreatedBy = actor.UserID
		f.InvoiceType = models.InvoiceForService
	}
	return s.repos.Invoices.List(ctx, f, p)
}

func (s *Service) PublicInvoice(ctx context.Context, token string) (*models.Invoice, error) {
	if token == "" {
		return nil, ErrInvoiceNotFound
	}
	inv, err := s.repos.Invoices.GetByShareToken(ctx, token)
	if err != nil {
		return nil, mapNotFound(err, ErrInvoiceNotFound)
	}
	return inv, nil
}

func (s *Service) UpdateInvoiceStatus(ctx context.Context, actor *auth.Session, id snowflake.ID, status models.InvoiceStatus) (*models.Invoice, error) {
	if !actor.IsManager() {
		return nil, auth.ErrForbidden
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var inv *models.Invoice
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		inv, err = tx.Invoices.Get(ctx, id)
		if err != nil {
			return mapNotFound(err, ErrInvoiceNotFound)
		}
		inv.Status = status
		if err := tx.Invoices.Save(ctx, inv); err != nil {
			return err
		}
		if inv.InvoiceType == models.InvoiceForOrder {
			return tx.Orders.SetInvoiceStatus(ctx, inv.ID, status)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// Share refreshes the share link and marks a pending invoice as sent.
func (s *Service) Share(ctx context.Context, actor *auth.Session, id snowflake.ID) (*models.Invoice, error) {
	var inv *models.Invoice
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		inv, err = tx.Invoices.Get(ctx, id)
		if err != nil {
			return mapNotFound(err, ErrInvoiceNotFound)
		}
		if !CanView(actor, inv) {
			return auth.ErrForbidden
		}
		if inv.Status == models.InvoicePending {
			inv.Status = models.InvoiceSent
		}
		inv.ShareURL = s.ShareURL(inv)
		if err := tx.Invoices.Save(ctx, inv); err != nil {
			return err
		}
		if inv.InvoiceType == models.InvoiceForOrder {
			return tx.Orders.SetInvoiceStatus(ctx, inv.ID, inv.Status)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(events.TopicInvoiceShared, events.InvoiceShared{Invoice: *inv, URL: inv.ShareURL, ViewURL: s.ViewURL(inv)})
	return inv, nil
}
