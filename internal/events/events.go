// Package events carries domain notifications between packages in-process.
package events

import (
	evbus "github.com/asaskevich/EventBus"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"go.uber.org/zap"
)

const (
	TopicOrderCreated     = "order:created"
	TopicInvoiceCreated   = "invoice:created"
	TopicInvoiceShared    = "invoice:shared"
	TopicServiceAssigned  = "service:assigned"
	TopicServiceCompleted = "service:completed"
)

type OrderCreated struct {
	Order   models.Order
	Invoice models.Invoice
}

type InvoiceCreated struct {
	Invoice models.Invoice
}

// InvoiceShared carries the wa.me link and the public view page, which is
// empty when no public base URL is configured.
type InvoiceShared struct {
	Invoice models.Invoice
	URL     string
	ViewURL string
}

type ServiceAssigned struct {
	Service    models.Service
	Technician models.User
}

type ServiceCompleted struct {
	Service models.Service
}

// Bus wraps EventBus. A nil *Bus drops every event.
type Bus struct {
	bus evbus.Bus
}

func NewBus() *Bus {
	return &Bus{bus: evbus.New()}
}

func (b *Bus) Publish(topic string, payload interface{}) {
	if b == nil {
		return
	}
	b.bus.Publish(topic, payload)
}

// Subscribe registers an asynchronous handler. Handlers of one topic run
// one at a time.
func (b *Bus) Subscribe(topic string, fn interface{}) error {
	if b == nil {
		return nil
	}
	if err := b.bus.SubscribeAsync(topic, fn, true); err != nil {
		zap.L().Error("event subscription failed", zap.String("topic", topic), zap.Error(err))
		return err
	}
	return nil
}

// Wait blocks until all asynchronous handlers return.
func (b *Bus) Wait() {
	if b == nil {
		return
	}
	b.bus.WaitAsync()
}
