package billing

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/supportta-projects/waterpurifier-sub000/internal/auth"
	"github.com/supportta-projects/waterpurifier-sub000/internal/events"
	"github.com/supportta-projects/waterpurifier-sub000/internal/ids"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"github.com/supportta-projects/waterpurifier-sub000/internal/repository"
	"go.uber.org/zap"
)

// CreateOrder places an order and raises its invoice in one transaction.
// UnitPrice defaults to the product price when zero.
func (s *Service) CreateOrder(ctx context.Context, actor *auth.Session, req models.CreateOrderRequest) (*models.Order, *models.Invoice, error) {
	if !actor.IsManager() {
		return nil, nil, auth.ErrForbidden
	}
	if req.Quantity < 1 {
		return nil, nil, ErrInvalidQuantity
	}

	customer, err := s.repos.Customers.Get(ctx, req.CustomerID)
	if err != nil {
		return nil, nil, mapNotFound(err, ErrCustomerNotFound)
	}
	if !customer.IsActive {
		return nil, nil, ErrCustomerInactive
	}

	product, err := s.repos.Products.Get(ctx, req.ProductID)
	if err != nil {
		return nil, nil, mapNotFound(err, ErrProductNotFound)
	}
	if product.Status != models.ProductActive {
		return nil, nil, ErrProductUnavailable
	}

	unitPrice := req.UnitPrice
	if unitPrice.IsZero() {
		unitPrice = product.Price
	}
	if !ValidAmount(unitPrice) {
		return nil, nil, ErrInvalidPrice
	}
	unitPrice = unitPrice.Round(2)
	total := unitPrice.Mul(decimal.NewFromInt(int64(req.Quantity)))

	var order models.Order
	var invoice models.Invoice

	err = s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		orderNumber, err := s.gen.Reserve(ctx, ids.PrefixOrder, tx.Orders.CustomIDExists())
		if err != nil {
			return err
		}
		order = models.Order{
			ID:           s.gen.NextID(),
			CustomID:     orderNumber,
			CustomerID:   customer.ID,
			CustomerName: customer.Name,
			ProductID:    product.ID,
			ProductName:  product.Name,
			Quantity:     req.Quantity,
			UnitPrice:    unitPrice,
			TotalAmount:  total,
			Status:       models.OrderPending,
			Notes:        req.Notes,
			CreatedBy:    actor.UserID,
		}
		if err := tx.Orders.Create(ctx, &order); err != nil {
			return errors.Wrap(err, "create order")
		}

		invoiceNumber, err := s.gen.Reserve(ctx, ids.PrefixInvoice, tx.Invoices.NumberExists())
		if err != nil {
			return err
		}
		orderID := order.ID
		invoice = models.Invoice{
			ID:            s.gen.NextID(),
			InvoiceNumber: invoiceNumber,
			InvoiceType:   models.InvoiceForOrder,
			OrderID:       &orderID,
			CustomerID:    customer.ID,
			CustomerName:  customer.Name,
			CustomerPhone: customer.Phone,
			CustomerEmail: customer.Email,
			ProductID:     product.ID,
			ProductName:   product.Name,
			Quantity:      req.Quantity,
			UnitPrice:     unitPrice,
			TotalAmount:   total,
			Status:        models.InvoicePending,
			ShareToken:    s.newToken(),
			CreatedBy:     actor.UserID,
		}
		invoice.ShareURL = s.ShareURL(&invoice)
		if err := tx.Invoices.Create(ctx, &invoice); err != nil {
			return errors.Wrap(err, "create invoice")
		}

		if err := tx.Orders.LinkInvoice(ctx, order.ID, &invoice); err != nil {
			return errors.Wrap(err, "link invoice")
		}
		order.InvoiceID = &invoice.ID
		order.InvoiceNumber = &invoice.InvoiceNumber
		status := invoice.Status
		order.InvoiceStatus = &status
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	zap.L().Info("order created",
		zap.String("order", order.CustomID),
		zap.String("invoice", invoice.InvoiceNumber),
		zap.String("total", total.StringFixed(2)))
	s.bus.Publish(events.TopicOrderCreated, events.OrderCreated{Order: order, Invoice: invoice})
	s.bus.Publish(events.TopicInvoiceCreated, events.InvoiceCreated{Invoice: invoice})
	return &order, &invoice, nil
}

// UpdateOrderStatus sets the order status. Cancelling an order also cancels
// its invoice unless that invoice is already paid.
func (s *Service) UpdateOrderStatus(ctx context.Context, actor *auth.Session, id snowflake.ID, status models.OrderStatus) (*models.Order, error) {
	if !actor.IsManager() {
		return nil, auth.ErrForbidden
	}
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	var order *models.Order
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		order, err = tx.Orders.Get(ctx, id)
		if err != nil {
			return mapNotFound(err, ErrOrderNotFound)
		}
		order.Status = status

		if status == models.OrderCancelled {
			inv, err := tx.Invoices.GetByOrderID(ctx, order.ID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
			if inv != nil && (inv.Status == models.InvoicePending || inv.Status == models.InvoiceSent) {
				inv.Status = models.InvoiceCancelled
				if err := tx.Invoices.Save(ctx, inv); err != nil {
					return err
				}
				cancelled := models.InvoiceCancelled
				order.InvoiceStatus = &cancelled
			}
		}
		return tx.Orders.Save(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}
