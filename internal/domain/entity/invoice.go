package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice factura canónica. InvoiceNumber es la clave natural del upsert.
// Invariante: FinalAmount == TotalAmount + CGST + SGST.
type Invoice struct {
	ID                string
	InvoiceNumber     string
	Date              time.Time
	CustomerName      string
	CustomerGSTNumber string
	ProductIDs        []string // orden de las líneas
	TotalAmount       decimal.Decimal
	CGST              decimal.Decimal
	SGST              decimal.Decimal
	FinalAmount       decimal.Decimal
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
