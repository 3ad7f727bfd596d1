package postgres

import (
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/gst-billing-api/internal/domain/entity"
	"github.com/jhoicas/gst-billing-api/internal/domain/repository"
)

var (
	_ repository.CustomerRepository       = (*Store[entity.Customer])(nil)
	_ repository.ProductRepository        = (*Store[entity.Product])(nil)
	_ repository.InvoiceRepository        = (*Store[entity.Invoice])(nil)
	_ repository.InvoiceHistoryRepository = (*Store[entity.InvoiceHistory])(nil)
)

func stampCreated(created *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
}

func stampBoth(created, updated *time.Time, now time.Time) {
	stampCreated(created, now)
	if updated.IsZero() {
		*updated = now
	}
}

// NewCustomerRepository tabla customers. Pasar pool o tx (Querier).
func NewCustomerRepository(q Querier) *Store[entity.Customer] {
	return newStore(q, tableSpec[entity.Customer]{
		table:      "customers",
		columns:    []string{"id", "name", "phone", "gst_number", "created_at"},
		dateColumn: "created_at",
		nameColumn: "name",
		id:         func(c *entity.Customer) *string { return &c.ID },
		stamp:      func(c *entity.Customer, now time.Time) { stampCreated(&c.CreatedAt, now) },
		values: func(c *entity.Customer) []any {
			return []any{c.ID, c.Name, c.Phone, c.GSTNumber, c.CreatedAt}
		},
		scan: func(row pgx.Row) (*entity.Customer, error) {
			var c entity.Customer
			if err := row.Scan(&c.ID, &c.Name, &c.Phone, &c.GSTNumber, &c.CreatedAt); err != nil {
				return nil, err
			}
			return &c, nil
		},
	})
}

// NewProductRepository tabla products (líneas de factura).
func NewProductRepository(q Querier) *Store[entity.Product] {
	return newStore(q, tableSpec[entity.Product]{
		table:      "products",
		columns:    []string{"id", "name", "hsn", "quantity", "inclusive_rate", "gst", "rate", "amount", "created_at"},
		dateColumn: "created_at",
		id:         func(p *entity.Product) *string { return &p.ID },
		stamp:      func(p *entity.Product, now time.Time) { stampCreated(&p.CreatedAt, now) },
		values: func(p *entity.Product) []any {
			return []any{p.ID, p.Name, p.HSN, p.Quantity, p.InclusiveRate, p.GST, p.Rate, p.Amount, p.CreatedAt}
		},
		scan: func(row pgx.Row) (*entity.Product, error) {
			var p entity.Product
			if err := row.Scan(&p.ID, &p.Name, &p.HSN, &p.Quantity, &p.InclusiveRate, &p.GST, &p.Rate, &p.Amount, &p.CreatedAt); err != nil {
				return nil, err
			}
			return &p, nil
		},
	})
}

// NewInvoiceRepository tabla invoices; invoice_number es único.
func NewInvoiceRepository(q Querier) *Store[entity.Invoice] {
	return newStore(q, tableSpec[entity.Invoice]{
		table: "invoices",
		columns: []string{
			"id", "invoice_number", "date", "customer_name", "customer_gst_number", "product_ids",
			"total_amount", "cgst", "sgst", "final_amount", "created_at", "updated_at",
		},
		dateColumn:    "date",
		invoiceColumn: "invoice_number",
		nameColumn:    "customer_name",
		id:            func(i *entity.Invoice) *string { return &i.ID },
		stamp:         func(i *entity.Invoice, now time.Time) { stampBoth(&i.CreatedAt, &i.UpdatedAt, now) },
		values: func(i *entity.Invoice) []any {
			return []any{
				i.ID, i.InvoiceNumber, i.Date, i.CustomerName, i.CustomerGSTNumber, i.ProductIDs,
				i.TotalAmount, i.CGST, i.SGST, i.FinalAmount, i.CreatedAt, i.UpdatedAt,
			}
		},
		scan: func(row pgx.Row) (*entity.Invoice, error) {
			var i entity.Invoice
			if err := row.Scan(
				&i.ID, &i.InvoiceNumber, &i.Date, &i.CustomerName, &i.CustomerGSTNumber, &i.ProductIDs,
				&i.TotalAmount, &i.CGST, &i.SGST, &i.FinalAmount, &i.CreatedAt, &i.UpdatedAt,
			); err != nil {
				return nil, err
			}
			return &i, nil
		},
	})
}

// NewInvoiceHistoryRepository tabla invoice_history; invoice_number es único.
func NewInvoiceHistoryRepository(q Querier) *Store[entity.InvoiceHistory] {
	return newStore(q, tableSpec[entity.InvoiceHistory]{
		table: "invoice_history",
		columns: []string{
			"id", "invoice_number", "date", "customer_name", "customer_phone_number", "customer_gst_number",
			"product_ids", "total_amount", "cgst", "sgst", "final_amount", "pdf_path", "created_at", "updated_at",
		},
		dateColumn:    "date",
		invoiceColumn: "invoice_number",
		nameColumn:    "customer_name",
		id:            func(h *entity.InvoiceHistory) *string { return &h.ID },
		stamp:         func(h *entity.InvoiceHistory, now time.Time) { stampBoth(&h.CreatedAt, &h.UpdatedAt, now) },
		values: func(h *entity.InvoiceHistory) []any {
			return []any{
				h.ID, h.InvoiceNumber, h.Date, h.CustomerName, h.CustomerPhoneNumber, h.CustomerGSTNumber,
				h.ProductIDs, h.TotalAmount, h.CGST, h.SGST, h.FinalAmount, h.PDFPath, h.CreatedAt, h.UpdatedAt,
			}
		},
		scan: func(row pgx.Row) (*entity.InvoiceHistory, error) {
			var h entity.InvoiceHistory
			if err := row.Scan(
				&h.ID, &h.InvoiceNumber, &h.Date, &h.CustomerName, &h.CustomerPhoneNumber, &h.CustomerGSTNumber,
				&h.ProductIDs, &h.TotalAmount, &h.CGST, &h.SGST, &h.FinalAmount, &h.PDFPath, &h.CreatedAt, &h.UpdatedAt,
			); err != nil {
				return nil, err
			}
			return &h, nil
		},
	})
}
