package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/gst-billing-api/internal/domain/entity"
)

func stampCreated(created *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
}

// NewCustomers colección de clientes.
func NewCustomers() *Collection[entity.Customer] {
	return NewCollection(Accessors[entity.Customer]{
		ID:           func(c *entity.Customer) *string { return &c.ID },
		Stamp:        func(c *entity.Customer, now time.Time) { stampCreated(&c.CreatedAt, now) },
		SortDate:     func(c *entity.Customer) time.Time { return c.CreatedAt },
		CustomerName: func(c *entity.Customer) string { return c.Name },
	})
}

// NewProducts colección de líneas de factura.
func NewProducts() *Collection[entity.Product] {
	return NewCollection(Accessors[entity.Product]{
		ID:       func(p *entity.Product) *string { return &p.ID },
		Stamp:    func(p *entity.Product, now time.Time) { stampCreated(&p.CreatedAt, now) },
		SortDate: func(p *entity.Product) time.Time { return p.CreatedAt },
	})
}

// NewInvoices colección de facturas.
func NewInvoices() *Collection[entity.Invoice] {
	return NewCollection(Accessors[entity.Invoice]{
		ID: func(i *entity.Invoice) *string { return &i.ID },
		Stamp: func(i *entity.Invoice, now time.Time) {
			stampCreated(&i.CreatedAt, now)
			if i.UpdatedAt.IsZero() {
				i.UpdatedAt = now
			}
		},
		SortDate:      func(i *entity.Invoice) time.Time { return i.Date },
		InvoiceNumber: func(i *entity.Invoice) string { return i.InvoiceNumber },
		CustomerName:  func(i *entity.Invoice) string { return i.CustomerName },
		Clone: func(i *entity.Invoice) *entity.Invoice {
			c := *i
			c.ProductIDs = append([]string(nil), i.ProductIDs...)
			return &c
		},
	})
}

// NewInvoiceHistory colección del historial de facturas.
func NewInvoiceHistory() *Collection[entity.InvoiceHistory] {
	return NewCollection(Accessors[entity.InvoiceHistory]{
		ID: func(h *entity.InvoiceHistory) *string { return &h.ID },
		Stamp: func(h *entity.InvoiceHistory, now time.Time) {
			stampCreated(&h.CreatedAt, now)
			if h.UpdatedAt.IsZero() {
				h.UpdatedAt = now
			}
		},
		SortDate:      func(h *entity.InvoiceHistory) time.Time { return h.Date },
		InvoiceNumber: func(h *entity.InvoiceHistory) string { return h.InvoiceNumber },
		CustomerName:  func(h *entity.InvoiceHistory) string { return h.CustomerName },
		Clone: func(h *entity.InvoiceHistory) *entity.InvoiceHistory {
			c := *h
			c.ProductIDs = append([]string(nil), h.ProductIDs...)
			return &c
		},
	})
}

// HSNRates tabla de tarifas en memoria.
type HSNRates struct {
	mu    sync.RWMutex
	rates map[string]entity.HSNRate
}

// NewHSNRates carga las tarifas iniciales.
func NewHSNRates(rates ...entity.HSNRate) *HSNRates {
	r := &HSNRates{rates: make(map[string]entity.HSNRate, len(rates))}
	for _, rate := range rates {
		r.rates[rate.HSN] = rate
	}
	return r
}

// Put agrega o reemplaza una tarifa.
func (r *HSNRates) Put(rate entity.HSNRate) {
	r.mu.Lock()
	r.rates[rate.HSN] = rate
	r.mu.Unlock()
}

func (r *HSNRates) FindByCodes(_ context.Context, codes []string) ([]*entity.HSNRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.HSNRate, 0, len(codes))
	for _, code := range codes {
		if rate, ok := r.rates[code]; ok {
			rate := rate
			out = append(out, &rate)
		}
	}
	return out, nil
}
