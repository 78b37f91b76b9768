package billing

import (
	"context"
	"fmt"
	"io"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"github.com/supportta-projects/waterpurifier-sub000/internal/auth"
	"github.com/supportta-projects/waterpurifier-sub000/internal/models"
	"github.com/supportta-projects/waterpurifier-sub000/internal/repository"
)

const exportSheet = "Invoices"

type InvoiceRow struct {
	InvoiceNumber string `csv:"invoice_number"`
	InvoiceType   string `csv:"invoice_type"`
	Reference     string `csv:"reference"`
	CustomerName  string `csv:"customer_name"`
	CustomerPhone string `csv:"customer_phone"`
	ProductName   string `csv:"product_name"`
	Quantity      int    `csv:"quantity"`
	UnitPrice     string `csv:"unit_price"`
	TotalAmount   string `csv:"total_amount"`
	Status        string `csv:"status"`
	CreatedAt     string `csv:"created_at"`
}

var exportHeader = []string{
	"Invoice Number", "Type", "Reference", "Customer", "Phone",
	"Product", "Quantity", "Unit Price", "Total", "Status", "Created At",
}

func toRow(inv models.Invoice) InvoiceRow {
	ref := ""
	switch {
	case inv.OrderID != nil:
		ref = inv.OrderID.String()
	case inv.ServiceID != nil:
		ref = inv.ServiceID.String()
	}
	return InvoiceRow{
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceType:   string(inv.InvoiceType),
		Reference:     ref,
		CustomerName:  inv.CustomerName,
		CustomerPhone: inv.CustomerPhone,
		ProductName:   inv.ProductName,
		Quantity:      inv.Quantity,
		UnitPrice:     inv.UnitPrice.StringFixed(2),
		TotalAmount:   inv.TotalAmount.StringFixed(2),
		Status:        string(inv.Status),
		CreatedAt:     inv.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

func (s *Service) exportRows(ctx context.Context, actor *auth.Session, f repository.InvoiceFilter) ([]*InvoiceRow, error) {
	if !actor.HasRole(models.RoleAdmin) {
		return nil, auth.ErrForbidden
	}
	invoices, err := s.repos.Invoices.All(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "load invoices")
	}
	rows := make([]*InvoiceRow, 0, len(invoices))
	for _, inv := range invoices {
		row := toRow(inv)
		rows = append(rows, &row)
	}
	return rows, nil
}

func (s *Service) ExportCSV(ctx context.Context, actor *auth.Session, f repository.InvoiceFilter, w io.Writer) error {
	rows, err := s.exportRows(ctx, actor, f)
	if err != nil {
		return err
	}
	return gocsv.Marshal(rows, w)
}

func (s *Service) ExportXLSX(ctx context.Context, actor *auth.Session, f repository.InvoiceFilter, w io.Writer) error {
	rows, err := s.exportRows(ctx, actor, f)
	if err != nil {
		return err
	}

	xlsx := excelize.NewFile()
	xlsx.SetSheetName("Sheet1", exportSheet)
	for i, title := range exportHeader {
		xlsx.SetCellValue(exportSheet, cell(i, 1), title)
	}
	for r, row := range rows {
		values := []interface{}{
			row.InvoiceNumber, row.InvoiceType, row.Reference, row.CustomerName, row.CustomerPhone,
			row.ProductName, row.Quantity, row.UnitPrice, row.TotalAmount, row.Status, row.CreatedAt,
		}
		for c, v := range values {
			xlsx.SetCellValue(exportSheet, cell(c, r+2), v)
		}
	}
	return xlsx.Write(w)
}

// cell returns the A1 reference of a zero-based column and one-based row.
func cell(col, row int) string {
	name := ""
	for col >= 0 {
		name = string(rune('A'+col%26)) + name
		col = col/26 - 1
	}
	return fmt.Sprintf("%s%d", name, row)
}
