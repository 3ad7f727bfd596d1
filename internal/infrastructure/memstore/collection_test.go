package memstore_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gst-billing-api/internal/domain"
	"github.com/jhoicas/gst-billing-api/internal/domain/entity"
	"github.com/jhoicas/gst-billing-api/internal/domain/repository"
	"github.com/jhoicas/gst-billing-api/internal/infrastructure/memstore"
)

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func seedHistory(t *testing.T, n int) *memstore.Collection[entity.InvoiceHistory] {
	t.Helper()
	c := memstore.NewInvoiceHistory()
	for i := 1; i <= n; i++ {
		name := "Cliente Beta"
		if i%2 == 0 {
			name = "Cliente Acme"
		}
		require.NoError(t, c.Create(context.Background(), &entity.InvoiceHistory{
			InvoiceNumber: fmt.Sprintf("INV-%02d", i),
			Date:          day(i),
			CustomerName:  name,
			FinalAmount:   decimal.NewFromInt(int64(i)),
		}))
	}
	return c
}

func TestCreate_AsignaIDYMarcas(t *testing.T) {
	c := memstore.NewCustomers()
	cust := &entity.Customer{Name: "Ana"}
	require.NoError(t, c.Create(context.Background(), cust))
	assert.NotEmpty(t, cust.ID)
	assert.False(t, cust.CreatedAt.IsZero())
	assert.Equal(t, 1, c.Len())
}

func TestFindOne_Ausente(t *testing.T) {
	c := memstore.NewInvoices()
	got, err := c.FindOne(context.Background(), repository.Filter{InvoiceNumber: "X"})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestFind_OrdenYPaginacion(t *testing.T) {
	c := seedHistory(t, 25)

	page, err := c.Find(context.Background(), repository.Filter{}, repository.Page{Offset: 10, Limit: 10})
	require.NoError(t, err)
	require.Len(t, page, 10)
	assert.Equal(t, "INV-15", page[0].InvoiceNumber)
	assert.Equal(t, "INV-06", page[9].InvoiceNumber)

	empty, err := c.Find(context.Background(), repository.Filter{}, repository.Page{Offset: 30, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestFind_FiltroNombreYFechas(t *testing.T) {
	c := seedHistory(t, 10)
	from, to := day(3), day(8)

	got, err := c.Find(context.Background(), repository.Filter{CustomerName: "acme", DateFrom: &from, DateTo: &to}, repository.Page{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "INV-08", got[0].InvoiceNumber)
	assert.Equal(t, "INV-04", got[2].InvoiceNumber)

	_, err = c.Find(context.Background(), repository.Filter{CustomerName: "("}, repository.Page{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSave_ReemplazaYNoComparteMemoria(t *testing.T) {
	c := memstore.NewInvoices()
	inv := &entity.Invoice{InvoiceNumber: "A1", ProductIDs: []string{"p1"}}
	require.NoError(t, c.Create(context.Background(), inv))

	inv.ProductIDs[0] = "mutado"
	stored, err := c.FindOne(context.Background(), repository.Filter{InvoiceNumber: "A1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, stored.ProductIDs)

	stored.FinalAmount = decimal.NewFromInt(10)
	require.NoError(t, c.Save(context.Background(), stored))
	again, _ := c.FindOne(context.Background(), repository.Filter{InvoiceNumber: "A1"})
	assert.True(t, again.FinalAmount.Equal(decimal.NewFromInt(10)))

	err = c.Save(context.Background(), &entity.Invoice{ID: "inexistente"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteMany_OlderThan(t *testing.T) {
	c := seedHistory(t, 10)
	cutoff := day(4)

	n, err := c.DeleteMany(context.Background(), repository.Filter{OlderThan: &cutoff})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	count, err := c.CountDocuments(context.Background(), repository.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}

func TestEstimateSize_CreceConDocumentos(t *testing.T) {
	c := memstore.NewProducts()
	empty, err := c.EstimateSize(context.Background())
	require.NoError(t, err)
	assert.Zero(t, empty)

	require.NoError(t, c.Create(context.Background(), &entity.Product{Name: "Lápiz", HSN: "9609"}))
	one, err := c.EstimateSize(context.Background())
	require.NoError(t, err)
	assert.Positive(t, one)
}

func TestHSNRates_FindByCodes(t *testing.T) {
	r := memstore.NewHSNRates(entity.HSNRate{HSN: "4901", CGST: decimal.RequireFromString("2.5"), SGST: decimal.RequireFromString("2.5")})
	got, err := r.FindByCodes(context.Background(), []string{"4901", "0000"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "4901", got[0].HSN)
}
