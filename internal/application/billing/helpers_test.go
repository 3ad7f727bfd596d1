package billing_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gst-billing-api/internal/application/billing"
	"github.com/jhoicas/gst-billing-api/internal/application/dto"
	"github.com/jhoicas/gst-billing-api/internal/domain/entity"
	"github.com/jhoicas/gst-billing-api/internal/domain/repository"
	"github.com/jhoicas/gst-billing-api/internal/domain/tax"
	"github.com/jhoicas/gst-billing-api/internal/infrastructure/lock"
	"github.com/jhoicas/gst-billing-api/internal/infrastructure/memstore"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// countingStore cuenta las escrituras sobre un DocumentStore real.
type countingStore[T any] struct {
	repository.DocumentStore[T]
	writes atomic.Int32
}

func (c *countingStore[T]) Create(ctx context.Context, doc *T) error {
	c.writes.Add(1)
	return c.DocumentStore.Create(ctx, doc)
}

func (c *countingStore[T]) Save(ctx context.Context, doc *T) error {
	c.writes.Add(1)
	return c.DocumentStore.Save(ctx, doc)
}

func (c *countingStore[T]) DeleteMany(ctx context.Context, f repository.Filter) (int64, error) {
	c.writes.Add(1)
	return c.DocumentStore.DeleteMany(ctx, f)
}

type fakeRenderer struct {
	calls atomic.Int32
}

func (r *fakeRenderer) RenderInvoice(_ context.Context, inv *entity.Invoice, _ []*entity.Product, _ tax.Result) (string, error) {
	r.calls.Add(1)
	return fmt.Sprintf("invoices/invoice-%s.pdf", inv.InvoiceNumber), nil
}

type fakeLedger struct {
	mu    sync.Mutex
	rows  map[string]entity.InvoiceHistory
	calls int
}

func (l *fakeLedger) Sync(_ context.Context, h *entity.InvoiceHistory) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.rows == nil {
		l.rows = make(map[string]entity.InvoiceHistory)
	}
	l.rows[h.InvoiceNumber] = *h
	l.calls++
	return nil
}

// fixedSize estimador de tamaño constante en bytes.
type fixedSize int64

func (f fixedSize) EstimateSize(context.Context) (int64, error) { return int64(f), nil }

type harness struct {
	customers *countingStore[entity.Customer]
	products  *countingStore[entity.Product]
	invoices  *countingStore[entity.Invoice]
	history   *countingStore[entity.InvoiceHistory]
	rates     *memstore.HSNRates
	renderer  *fakeRenderer
	ledger    *fakeLedger
}

func (h *harness) writes() int32 {
	return h.customers.writes.Load() + h.products.writes.Load() + h.invoices.writes.Load() + h.history.writes.Load()
}

// newHarness arma el orquestador sobre memstore. extraBytes simula datos preexistentes.
func newHarness(t *testing.T, policy tax.MissPolicy, extraBytes int64) (*billing.UpsertInvoiceUseCase, *harness) {
	t.Helper()
	h := &harness{
		customers: &countingStore[entity.Customer]{DocumentStore: memstore.NewCustomers()},
		products:  &countingStore[entity.Product]{DocumentStore: memstore.NewProducts()},
		invoices:  &countingStore[entity.Invoice]{DocumentStore: memstore.NewInvoices()},
		history:   &countingStore[entity.InvoiceHistory]{DocumentStore: memstore.NewInvoiceHistory()},
		rates: memstore.NewHSNRates(
			entity.HSNRate{HSN: "1234", CGST: d("6"), SGST: d("6")},
			entity.HSNRate{HSN: "4901", CGST: d("2.5"), SGST: d("2.5")},
			entity.HSNRate{HSN: "9503", CGST: d("9"), SGST: d("9")},
		),
		renderer: &fakeRenderer{},
		ledger:   &fakeLedger{},
	}
	quota := billing.NewQuotaGuard([]billing.SizeSource{
		{Name: billing.CollectionInvoice, Estimator: h.invoices},
		{Name: billing.CollectionInvoiceHistory, Estimator: h.history},
		{Name: billing.CollectionProduct, Estimator: h.products},
		{Name: billing.CollectionCustomer, Estimator: h.customers},
		{Name: "preexistente", Estimator: fixedSize(extraBytes)},
	}, 450, 30, nil)

	uc := billing.NewUpsertInvoiceUseCase(billing.UpsertDeps{
		Customers: h.customers,
		Products:  h.products,
		Invoices:  h.invoices,
		History:   h.history,
		Rates:     h.rates,
		Quota:     quota,
		Renderer:  h.renderer,
		Ledger:    h.ledger,
		Locker:    lock.NewLocalLocker(),
	}, policy, zerolog.Nop())
	return uc, h
}

func request(number string, products ...dto.ProductInput) dto.UpsertInvoiceRequest {
	return dto.UpsertInvoiceRequest{
		InvoiceNumber: number,
		Date:          "2024-03-15",
		CustomerInfo:  dto.CustomerInfo{Name: "Ravi Traders", Phone: "919876543210", GSTNumber: "27AAPFU0939F1ZV"},
		Products:      products,
	}
}

func line(name, hsn, qty, rate, gst string) dto.ProductInput {
	return dto.ProductInput{Name: name, HSN: hsn, Quantity: d(qty), Rate: d(rate), GST: d(gst)}
}
