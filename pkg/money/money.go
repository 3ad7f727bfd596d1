// Package money agrupa el redondeo monetario usado en facturación (2 decimales, unidad menor de la rupia).
package money

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// Round2 redondea a 2 decimales, mitad hacia arriba (en valor absoluto).
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Percent devuelve base * pct / 100 sin redondear.
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred)
}

// Fixed2 formatea con exactamente 2 decimales ("224.00").
func Fixed2(d decimal.Decimal) string {
	return d.StringFixed(2)
}
