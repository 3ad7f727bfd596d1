package entity

import "github.com/shopspring/decimal"

// HSNRate tarifa de CGST y SGST (en porcentaje) por código HSN. Dato de referencia de solo lectura.
type HSNRate struct {
	HSN  string
	CGST decimal.Decimal
	SGST decimal.Decimal
}
