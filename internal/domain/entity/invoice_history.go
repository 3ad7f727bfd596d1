package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceHistory espejo desnormalizado de Invoice con teléfono del cliente y ruta del PDF.
// Se actualiza junto con la Invoice del mismo número y debe conservar los mismos totales.
type InvoiceHistory struct {
	ID                  string
	InvoiceNumber       string
	Date                time.Time
	CustomerName        string
	CustomerPhoneNumber string
	CustomerGSTNumber   string
	ProductIDs          []string
	TotalAmount         decimal.Decimal
	CGST                decimal.Decimal
	SGST                decimal.Decimal
	FinalAmount         decimal.Decimal
	PDFPath             string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
