package billing

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
)

// PublicInvoicePath is where the router serves invoices by share token.
const PublicInvoicePath = "/api/v1/public/invoices/"

// ViewURL is the public page a share link points at, or "" when no public
// base URL is configured.
func (s *Service) ViewURL(inv *models.Invoice) string {
	if s.opts.PublicBaseURL == "" || inv.ShareToken == "" {
		return ""
	}
	return s.opts.PublicBaseURL + PublicInvoicePath + inv.ShareToken
}

// ShareMessage is the text prefilled into the WhatsApp chat.
func (s *Service) ShareMessage(inv *models.Invoice) string {
	var b strings.Builder
	if inv.CustomerName != "" {
		fmt.Fprintf(&b, "Hello %s,\n", inv.CustomerName)
	}
	company := s.opts.CompanyName
	if company == "" {
		company = "us"
	}
	fmt.Fprintf(&b, "Invoice %s from %s\n", inv.InvoiceNumber, company)
	fmt.Fprintf(&b, "Product: %s x %d\n", inv.ProductName, inv.Quantity)
	fmt.Fprintf(&b, "Total: Rs. %s\n", inv.TotalAmount.StringFixed(2))
	fmt.Fprintf(&b, "Status: %s", inv.Status)
	if view := s.ViewURL(inv); view != "" {
		fmt.Fprintf(&b, "\nView: %s", view)
	}
	return b.String()
}

// ShareURL builds a wa.me link addressed to the customer's phone.
func (s *Service) ShareURL(inv *models.Invoice) string {
	text := strings.ReplaceAll(url.QueryEscape(s.ShareMessage(inv)), "+", "%20")
	return "https://wa.me/" + WhatsAppNumber(inv.CustomerPhone, s.opts.CountryCode) + "?text=" + text
}

// WhatsAppNumber keeps digits only and prefixes countryCode to local numbers.
func WhatsAppNumber(phone, countryCode string) string {
	hasPlus := strings.HasPrefix(strings.TrimSpace(phone), "+")
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n := digits.String()
	if n == "" || hasPlus || countryCode == "" {
		return n
	}
	if strings.HasPrefix(n, "0") {
		return countryCode + strings.TrimLeft(n, "0")
	}
	if len(n) <= 10 {
		return countryCode + n
	}
	return n
}
