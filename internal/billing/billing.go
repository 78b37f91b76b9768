// Package billing owns orders and invoices: order placement with its
// invoice, service invoices, invoice status, share links and exports.
package billing

import (
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/supportta-projects/waterpurifier-sub000/internal/events"
	"github.com/supportta-projects/waterpurifier-sub000/internal/ids"
	"github.com/supportta-projects/waterpurifier-sub000/internal/repository"
)

var (
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrInvalidPrice        = errors.New("unit price must be greater than zero with at most two decimals")
	ErrInvalidAmount       = errors.New("amount must be greater than zero with at most two decimals")
	ErrInvalidStatus       = errors.New("invalid status")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrCustomerInactive    = errors.New("customer is inactive")
	ErrProductNotFound     = errors.New("product not found")
	ErrProductUnavailable  = errors.New("product is not available for sale")
	ErrOrderNotFound       = errors.New("order not found")
	ErrServiceNotFound     = errors.New("service not found")
	ErrServiceNotCompleted = errors.New("service is not completed")
	ErrInvoiceExists       = errors.New("service already has an invoice")
	ErrInvoiceNotFound     = errors.New("invoice not found")
)

// ValidAmount reports whether d is a positive amount in whole paise. Money
// columns hold two decimals, so anything finer would be rounded on write.
func ValidAmount(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Round(2))
}

type Options struct {
	CompanyName   string
	PublicBaseURL string
	// CountryCode is prefixed to local phone numbers in share links, e.g. "91".
	CountryCode string
}

type Service struct {
	repos    *repository.Repositories
	gen      *ids.Generator
	bus      *events.Bus
	opts     Options
	newToken func() string
}

func NewService(repos *repository.Repositories, gen *ids.Generator, bus *events.Bus, opts Options) *Service {
	opts.PublicBaseURL = strings.TrimRight(opts.PublicBaseURL, "/")
	opts.CountryCode = strings.TrimPrefix(opts.CountryCode, "+")
	return &Service{
		repos:    repos,
		gen:      gen,
		bus:      bus,
		opts:     opts,
		newToken: shareToken,
	}
}

func shareToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func mapNotFound(err, target error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return target
	}
	return err
}
