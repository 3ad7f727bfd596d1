package repository

import "github.com/jhoicas/gst-billing-api/internal/domain/entity"

// InvoiceRepository define el puerto de persistencia para Invoice (upsert por número de factura).
type InvoiceRepository = DocumentStore[entity.Invoice]
