package repository

import (
	"context"
	"time"
)

// Filter criterios de búsqueda comunes a las cuatro colecciones.
// Campos vacíos (o nil) no filtran. Cada colección ignora los criterios que no aplican
// (por ejemplo CustomerName en Product).
type Filter struct {
	InvoiceNumber string     // igualdad exacta
	CustomerName  string     // expresión regular, sin distinguir mayúsculas
	DateFrom      *time.Time // date >= DateFrom (inclusive)
	DateTo        *time.Time // date <= DateTo (inclusive)
	OlderThan     *time.Time // campo de antigüedad < OlderThan (date en facturas, created_at en el resto)
}

// Page paginación por desplazamiento; los resultados se ordenan por fecha descendente.
// Limit <= 0 significa sin límite.
type Page struct {
	Offset int
	Limit  int
}

// DocumentStore puerto CRUD genérico usado por Customer, Product, Invoice e InvoiceHistory.
type DocumentStore[T any] interface {
	// FindOne devuelve el primer documento que cumple el filtro o (nil, nil) si no existe.
	FindOne(ctx context.Context, f Filter) (*T, error)
	Find(ctx context.Context, f Filter, p Page) ([]*T, error)
	// Create asigna ID y marcas de tiempo si vienen vacíos y persiste el documento.
	Create(ctx context.Context, doc *T) error
	// Save reemplaza el documento existente con el mismo ID.
	Save(ctx context.Context, doc *T) error
	DeleteMany(ctx context.Context, f Filter) (int64, error)
	CountDocuments(ctx context.Context, f Filter) (int64, error)
	// EstimateSize suma el tamaño serializado (bytes) de todos los documentos de la colección.
	EstimateSize(ctx context.Context) (int64, error)
}
