package ledger_test

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/gst-billing-api/internal/domain/entity"
	"github.com/jhoicas/gst-billing-api/internal/infrastructure/ledger"
)

const sheet = "Invoice History"

func record(number, final string) *entity.InvoiceHistory {
	return &entity.InvoiceHistory{
		InvoiceNumber:       number,
		Date:                time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		CustomerName:        "Ravi Traders",
		CustomerPhoneNumber: "919876543210",
		TotalAmount:         decimal.RequireFromString("200"),
		CGST:                decimal.RequireFromString("12"),
		SGST:                decimal.RequireFromString("12"),
		FinalAmount:         decimal.RequireFromString(final),
		PDFPath:             "invoices/invoice-" + number + ".pdf",
	}
}

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func newWriter(t *testing.T) (*ledger.Writer, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "invoice_history.xlsx")
	w := ledger.NewWriter(path, sheet, zerolog.Nop(), nil)
	w.Start()
	t.Cleanup(w.Close)
	return w, path
}

type countingObserver struct {
	mu       sync.Mutex
	ok, fail int
}

func (o *countingObserver) ObserveLedgerWrite(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err != nil {
		o.fail++
		return
	}
	o.ok++
}

func TestSync_CreaLibroConEncabezado(t *testing.T) {
	w, path := newWriter(t)
	require.NoError(t, w.Sync(context.Background(), record("INV-1", "224")))

	rows := readRows(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, ledger.Columns, rows[0])
	assert.Equal(t, "INV-1", rows[1][0])
	assert.Equal(t, "2024-03-15", rows[1][1])
	assert.Equal(t, "224", rows[1][8])
	assert.Equal(t, "invoices/invoice-INV-1.pdf", rows[1][9])
}

func TestSync_ReemplazaFilaExistente(t *testing.T) {
	w, path := newWriter(t)
	ctx := context.Background()
	require.NoError(t, w.Sync(ctx, record("INV-1", "224")))
	require.NoError(t, w.Sync(ctx, record("INV-2", "105")))
	require.NoError(t, w.Sync(ctx, record("INV-1", "300")))

	rows := readRows(t, path)
	require.Len(t, rows, 3)
	assert.Equal(t, "INV-1", rows[1][0])
	assert.Equal(t, "300", rows[1][8])
	assert.Equal(t, "INV-2", rows[2][0])
}

func TestSync_ConcurrenteUnaFilaPorNumero(t *testing.T) {
	obs := &countingObserver{}
	path := filepath.Join(t.TempDir(), "libro.xlsx")
	w := ledger.NewWriter(path, sheet, zerolog.Nop(), obs)
	w.Start()
	defer w.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, w.Sync(context.Background(), record(fmt.Sprintf("INV-%d", i%5), "100")))
		}(i)
	}
	wg.Wait()

	rows := readRows(t, path)
	assert.Len(t, rows, 6)
	assert.Equal(t, 20, obs.ok)
	assert.Zero(t, obs.fail)
}

func TestSync_TrasCerrar(t *testing.T) {
	w := ledger.NewWriter(filepath.Join(t.TempDir(), "x.xlsx"), sheet, zerolog.Nop(), nil)
	w.Start()
	w.Close()
	assert.ErrorIs(t, w.Sync(context.Background(), record("INV-1", "1")), ledger.ErrClosed)
}

func TestSync_CerrarSinIniciar(t *testing.T) {
	w := ledger.NewWriter(filepath.Join(t.TempDir(), "x.xlsx"), sheet, zerolog.Nop(), nil)
	w.Close()
	assert.ErrorIs(t, w.Sync(context.Background(), record("INV-1", "1")), ledger.ErrClosed)
}
