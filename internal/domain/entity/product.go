package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product línea de factura persistida. Se crea por envío; una actualización de la factura
// genera líneas nuevas y las anteriores quedan huérfanas.
type Product struct {
	ID            string
	Name          string
	HSN           string          // código de clasificación
	Quantity      decimal.Decimal
	InclusiveRate decimal.Decimal // precio unitario con impuesto (entrada)
	GST           decimal.Decimal // porcentaje de GST incluido en InclusiveRate
	Rate          decimal.Decimal // precio unitario sin impuesto (derivado)
	Amount        decimal.Decimal // Quantity * Rate (derivado)
	CreatedAt     time.Time
}
