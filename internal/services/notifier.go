package services

import (
	"fmt"
	"html"

	"github.com/supportta-projects/waterpurifier-sub000/internal/events"
	"go.uber.org/zap"
)

// Notifier turns domain events into SMS and e-mail. Either channel may be
// nil. Delivery failures are logged and dropped.
type Notifier struct {
	sms     SMSServiceInterface
	email   EmailServiceInterface
	company string
}

func NewNotifier(sms SMSServiceInterface, email EmailServiceInterface, company string) *Notifier {
	if company == "" {
		company = "Water Purifier Services"
	}
	return &Notifier{sms: sms, email: email, company: company}
}

func (n *Notifier) Register(bus *events.Bus) error {
	subs := map[string]interface{}{
		events.TopicOrderCreated:     n.OnOrderCreated,
		events.TopicInvoiceShared:    n.OnInvoiceShared,
		events.TopicServiceAssigned:  n.OnServiceAssigned,
		events.TopicServiceCompleted: n.OnServiceCompleted,
	}
	for topic, fn := range subs {
		if err := bus.Subscribe(topic, fn); err != nil {
			return err
		}
	}
	return nil
}

func (n *Notifier) sendSMS(to, message, ref string) {
	if n.sms == nil || to == "" {
		return
	}
	if err := n.sms.SendSMS(to, message); err != nil {
		zap.L().Warn("sms notification failed", zap.String("ref", ref), zap.Error(err))
		return
	}
	zap.L().Debug("sms notification sent", zap.String("ref", ref))
}

func (n *Notifier) OnOrderCreated(e events.OrderCreated) {
	msg := fmt.Sprintf("Dear %s, thank you for your order %s for %d x %s. Invoice %s total Rs. %s. - %s",
		e.Order.CustomerName, e.Order.CustomID, e.Order.Quantity, e.Order.ProductName,
		e.Invoice.InvoiceNumber, e.Invoice.TotalAmount.StringFixed(2), n.company)
	n.sendSMS(e.Invoice.CustomerPhone, msg, e.Order.CustomID)
}

func (n *Notifier) OnInvoiceShared(e events.InvoiceShared) {
	inv := e.Invoice
	msg := fmt.Sprintf("Invoice %s for Rs. %s from %s.", inv.InvoiceNumber, inv.TotalAmount.StringFixed(2), n.company)
	if e.ViewURL != "" {
		msg += " View: " + e.ViewURL
	}
	n.sendSMS(inv.CustomerPhone, msg, inv.InvoiceNumber)

	if n.email == nil || inv.CustomerEmail == "" {
		return
	}
	subject := fmt.Sprintf("Invoice %s from %s", inv.InvoiceNumber, n.company)
	if err := n.email.SendEmail(inv.CustomerEmail, subject, n.invoiceHTML(e)); err != nil {
		zap.L().Warn("invoice email failed", zap.String("invoice", inv.InvoiceNumber), zap.Error(err))
	}
}

func (n *Notifier) invoiceHTML(e events.InvoiceShared) string {
	inv := e.Invoice
	body := fmt.Sprintf(
		"<p>Dear %s,</p><p>Please find the details of invoice <b>%s</b>.</p>"+
			"<table><tr><td>Product</td><td>%s</td></tr><tr><td>Quantity</td><td>%d</td></tr>"+
			"<tr><td>Unit price</td><td>Rs. %s</td></tr><tr><td>Total</td><td><b>Rs. %s</b></td></tr>"+
			"<tr><td>Status</td><td>%s</td></tr></table>",
		html.EscapeString(inv.CustomerName), html.EscapeString(inv.InvoiceNumber),
		html.EscapeString(inv.ProductName), inv.Quantity,
		inv.UnitPrice.StringFixed(2), inv.TotalAmount.StringFixed(2), inv.Status)
	if e.ViewURL != "" {
		body += fmt.Sprintf(`<p><a href="%s">View invoice online</a></p>`, html.EscapeString(e.ViewURL))
	}
	return body + "<p>" + html.EscapeString(n.company) + "</p>"
}

func (n *Notifier) OnServiceAssigned(e events.ServiceAssigned) {
	svc := e.Service
	msg := fmt.Sprintf("New job %s: %s for %s (%s) on %s.",
		svc.CustomID, svc.ProductName, svc.CustomerName, svc.CustomerPhone,
		svc.ScheduledDate.Format("02 Jan 2006 03:04 PM"))
	n.sendSMS(e.Technician.Phone, msg, svc.CustomID)
}

func (n *Notifier) OnServiceCompleted(e events.ServiceCompleted) {
	svc := e.Service
	msg := fmt.Sprintf("Dear %s, your %s service %s has been completed. Thank you. - %s",
		svc.CustomerName, svc.ProductName, svc.CustomID, n.company)
	n.sendSMS(svc.CustomerPhone, msg, svc.CustomID)
}
