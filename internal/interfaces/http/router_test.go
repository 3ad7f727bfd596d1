package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gst-billing-api/internal/application/billing"
	"github.com/jhoicas/gst-billing-api/internal/application/dto"
	appgst "github.com/jhoicas/gst-billing-api/internal/application/gst"
	"github.com/jhoicas/gst-billing-api/internal/domain"
	"github.com/jhoicas/gst-billing-api/internal/domain/entity"
	"github.com/jhoicas/gst-billing-api/internal/domain/tax"
	"github.com/jhoicas/gst-billing-api/internal/infrastructure/ledger"
	"github.com/jhoicas/gst-billing-api/internal/infrastructure/lock"
	"github.com/jhoicas/gst-billing-api/internal/infrastructure/memstore"
	apphttp "github.com/jhoicas/gst-billing-api/internal/interfaces/http"
)

type fakeRenderer struct{}

func (fakeRenderer) RenderInvoice(_ context.Context, inv *entity.Invoice, _ []*entity.Product, _ tax.Result) (string, error) {
	return "invoices/invoice-" + inv.InvoiceNumber + ".pdf", nil
}

type notReadySender struct{}

func (notReadySender) IsReady() bool { return false }
func (notReadySender) SendText(context.Context, string, string) error { return nil }
func (notReadySender) SendDocument(context.Context, string, string) error { return nil }

type fakeLookup struct{}

func (fakeLookup) Lookup(_ context.Context, number string) (*dto.GSTDetailsResponse, error) {
	if number == "27AAPFU0939F1ZV" {
		return &dto.GSTDetailsResponse{GSTIN: number, LegalName: "RAVI TRADERS"}, nil
	}
	return nil, domain.ErrNotFound
}

type preexisting int64

func (p preexisting) EstimateSize(context.Context) (int64, error) { return int64(p), nil }

// buildTestApp arma la API completa sobre memstore con el libro Excel real en un directorio temporal.
func buildTestApp(t *testing.T, extraBytes int64) (*fiber.App, *memstore.Collection[entity.InvoiceHistory]) {
	t.Helper()
	customers := memstore.NewCustomers()
	products := memstore.NewProducts()
	invoices := memstore.NewInvoices()
	history := memstore.NewInvoiceHistory()
	rates := memstore.NewHSNRates(entity.HSNRate{
		HSN:  "1234",
		CGST: decimal.RequireFromString("6"),
		SGST: decimal.RequireFromString("6"),
	})

	dir := t.TempDir()
	book := ledger.NewWriter(filepath.Join(dir, "invoice_history.xlsx"), "Invoice History", zerolog.Nop(), nil)
	book.Start()
	t.Cleanup(book.Close)

	quota := billing.NewQuotaGuard([]billing.SizeSource{
		{Name: billing.CollectionInvoice, Estimator: invoices},
		{Name: billing.CollectionInvoiceHistory, Estimator: history},
		{Name: billing.CollectionProduct, Estimator: products},
		{Name: billing.CollectionCustomer, Estimator: customers},
		{Name: "preexistente", Estimator: preexisting(extraBytes)},
	}, 450, 30, nil)

	upsert := billing.NewUpsertInvoiceUseCase(billing.UpsertDeps{
		Customers: customers,
		Products:  products,
		Invoices:  invoices,
		History:   history,
		Rates:     rates,
		Quota:     quota,
		Renderer:  fakeRenderer{},
		Ledger:    book,
		Locker:    lock.NewLocalLocker(),
	}, tax.MissReject, zerolog.Nop())

	purge := billing.NewPurgeUseCase(map[string]billing.Deleter{
		billing.CollectionInvoice:        invoices,
		billing.CollectionInvoiceHistory: history,
		billing.CollectionProduct:        products,
		billing.CollectionCustomer:       customers,
	}, 30, zerolog.Nop())

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		UpsertInvoice: upsert,
		SendInvoice:   billing.NewSendInvoiceUseCase(notReadySender{}, dir, zerolog.Nop()),
		Purge:         purge,
		History:       billing.NewHistoryUseCase(history),
		GSTLookup:     appgst.NewLookupUseCase(fakeLookup{}, zerolog.Nop()),
	})
	return app, history
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func invoiceBody(number, hsn string) map[string]any {
	return map[string]any{
		"invoiceNumber": number,
		"date":          "2024-03-15",
		"customerInfo":  map[string]any{"name": "Ravi Traders", "phone": "919876543210"},
		"products": []map[string]any{
			{"name": "Cuaderno", "HSN": hsn, "quantity": 2, "rate": 112, "gst": 12},
		},
	}
}

func TestUpsert_Creada201(t *testing.T) {
	app, _ := buildTestApp(t, 0)

	resp := doJSON(t, app, http.MethodPost, "/api/invoice", invoiceBody("INV-001", "1234"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	out := decode[dto.UpsertInvoiceResponse](t, resp)
	assert.Equal(t, "224.00", out.Invoice.FinalAmount.StringFixed(2))
	assert.Equal(t, "invoices/invoice-INV-001.pdf", out.PDFPath)
}

func TestUpsert_CuotaExcedidaDevuelveAviso200(t *testing.T) {
	app, history := buildTestApp(t, 460*1024*1024)

	resp := doJSON(t, app, http.MethodPost, "/api/invoice", invoiceBody("INV-001", "1234"))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	adv := decode[dto.QuotaAdvisory](t, resp)
	assert.Equal(t, "Database storage is full for free usage.", adv.Message)
	assert.Equal(t, "460.00 MB", adv.CurrentSize)
	assert.Equal(t, billing.Collections, adv.Collections)
	assert.Zero(t, history.Len())
}

func TestUpsert_HSNSinTarifa422(t *testing.T) {
	app, _ := buildTestApp(t, 0)

	resp := doJSON(t, app, http.MethodPost, "/api/invoice", invoiceBody("INV-001", "0000"))
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "HSN_RATE_MISSING", decode[dto.ErrorResponse](t, resp).Code)
}

func TestUpsert_Validacion400(t *testing.T) {
	app, _ := buildTestApp(t, 0)

	body := invoiceBody("", "1234")
	resp := doJSON(t, app, http.MethodPost, "/api/invoice", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, resp).Code)
}

func TestUpsert_CuerpoInvalido400(t *testing.T) {
	app, _ := buildTestApp(t, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/invoice", bytes.NewBufferString("{no es json"))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", decode[dto.ErrorResponse](t, resp).Code)
}

func TestHistory_Paginado(t *testing.T) {
	app, _ := buildTestApp(t, 0)
	for i := 1; i <= 3; i++ {
		resp := doJSON(t, app, http.MethodPost, "/api/invoice", invoiceBody(fmt.Sprintf("INV-%02d", i), "1234"))
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	resp := doJSON(t, app, http.MethodGet, "/api/invoice/invoice-history?page=1&limit=2&customerName=ravi", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page := decode[dto.HistoryPage](t, resp)
	assert.Equal(t, "Invoice history fetched successfully", page.Message)
	assert.Len(t, page.Data, 2)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, int64(3), page.TotalRecords)
}

func TestDeleteRecords_ColeccionDesconocida400(t *testing.T) {
	app, _ := buildTestApp(t, 0)

	resp := doJSON(t, app, http.MethodPost, "/api/invoice/delete-records", map[string]string{"deleteFrom": "Users"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/invoice/delete-records", map[string]string{"deleteFrom": "Invoice"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[dto.PurgeResponse](t, resp)
	assert.Equal(t, "Invoice", out.Collection)
	assert.Zero(t, out.DeletedCount)
}

func TestSend_MensajeriaNoLista503(t *testing.T) {
	app, _ := buildTestApp(t, 0)

	resp := doJSON(t, app, http.MethodPost, "/api/invoice/send", map[string]string{
		"phone":   "919876543210",
		"pdfPath": "invoice-INV-001.pdf",
	})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "MESSAGING_NOT_READY", decode[dto.ErrorResponse](t, resp).Code)
}

func TestGST_Consulta(t *testing.T) {
	app, _ := buildTestApp(t, 0)

	resp := doJSON(t, app, http.MethodGet, "/api/gst/27aapfu0939f1zv", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "RAVI TRADERS", decode[dto.GSTDetailsResponse](t, resp).LegalName)

	resp = doJSON(t, app, http.MethodGet, "/api/gst/ABC", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodGet, "/api/gst/29AAGCB7383J1Z4", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestRequestLogger_PropagaRequestID(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()
	app.Use(apphttp.RequestLogger(zerolog.New(&buf)))
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString(apphttp.GetRequestID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(fiber.HeaderXRequestID, "rid-1")
	resp, err := app.Test(req, int((2 * time.Second).Milliseconds()))
	require.NoError(t, err)
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "rid-1", string(body))
	assert.Equal(t, "rid-1", resp.Header.Get(fiber.HeaderXRequestID))
	assert.Contains(t, buf.String(), `"path":"/ping"`)
}
