package repository

import "github.com/jhoicas/gst-billing-api/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product (líneas de factura, solo escritura por envío).
type ProductRepository = DocumentStore[entity.Product]
