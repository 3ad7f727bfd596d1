package repository

import "github.com/jhoicas/gst-billing-api/internal/domain/entity"

// CustomerRepository define el puerto de persistencia para Customer (uno nuevo por factura enviada).
type CustomerRepository = DocumentStore[entity.Customer]
