package repository

import "github.com/jhoicas/gst-billing-api/internal/domain/entity"

// InvoiceHistoryRepository define el puerto de persistencia para InvoiceHistory (espejo con PDF y teléfono).
type InvoiceHistoryRepository = DocumentStore[entity.InvoiceHistory]
