package billing

import (
	"context"

	"github.com/jhoicas/gst-billing-api/internal/domain/entity"
	"github.com/jhoicas/gst-billing-api/internal/domain/tax"
)

// ArtifactRenderer genera el PDF de la factura y devuelve la ruta del archivo.
type ArtifactRenderer interface {
	RenderInvoice(ctx context.Context, invoice *entity.Invoice, products []*entity.Product, summary tax.Result) (string, error)
}

// LedgerSyncer mantiene el libro tabular (una fila por número de factura).
type LedgerSyncer interface {
	Sync(ctx context.Context, record *entity.InvoiceHistory) error
}

// InvoiceLocker sección crítica por número de factura. unlock debe llamarse siempre.
type InvoiceLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// MessageSender canal de mensajería con ciclo de vida gestionado (WhatsApp).
type MessageSender interface {
	IsReady() bool
	SendText(ctx context.Context, phone, body string) error
	SendDocument(ctx context.Context, phone, filePath string) error
}

// SizeEstimator fuente de tamaño serializado (bytes) de una colección.
type SizeEstimator interface {
	EstimateSize(ctx context.Context) (int64, error)
}

// Metrics observaciones del ciclo de facturación. nil = sin métricas.
type Metrics interface {
	ObserveUpsert(created bool)
	ObserveQuota(sizeMB float64, exceeded bool)
	ObserveLookupMiss(codes int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveUpsert(bool) {}
func (nopMetrics) ObserveQuota(float64, bool) {}
func (nopMetrics) ObserveLookupMiss(int) {}
