// Package tax contiene los servicios de dominio de GST: normalización de precios con impuesto
// incluido y cálculo de CGST/SGST agrupado por código HSN.
package tax

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/gst-billing-api/internal/domain"
	"github.com/jhoicas/gst-billing-api/pkg/money"
)

var hundred = decimal.NewFromInt(100)

// LineInput línea tal como llega del cliente: Rate incluye el GST.
type LineInput struct {
	Name     string
	HSN      string
	Quantity decimal.Decimal
	Rate     decimal.Decimal // precio unitario con impuesto incluido
	GST      decimal.Decimal // porcentaje
}

// NormalizedLine línea con precio sin impuesto y monto derivados.
type NormalizedLine struct {
	LineInput
	ExclusiveRate decimal.Decimal
	Amount        decimal.Decimal
}

// Normalize deriva el precio sin impuesto y el monto de la línea:
//
//	ExclusiveRate = round2(rate - rate*gst/(100+gst))
//	Amount        = round2(quantity * ExclusiveRate)
//
// Cada valor se redondea por separado; Amount se calcula sobre ExclusiveRate ya redondeado.
// Cantidades o precios negativos no se rechazan aquí (validación del llamador).
func Normalize(in LineInput) (NormalizedLine, error) {
	if in.GST.IsNegative() {
		return NormalizedLine{}, fmt.Errorf("%w: gst negativo (%s) en %q", domain.ErrInvalidInput, in.GST, in.Name)
	}
	embedded := in.Rate.Mul(in.GST).Div(hundred.Add(in.GST))
	exclusive := money.Round2(in.Rate.Sub(embedded))
	return NormalizedLine{
		LineInput:     in,
		ExclusiveRate: exclusive,
		Amount:        money.Round2(in.Quantity.Mul(exclusive)),
	}, nil
}

// NormalizeAll normaliza en orden; se detiene en el primer error.
func NormalizeAll(in []LineInput) ([]NormalizedLine, error) {
	out := make([]NormalizedLine, 0, len(in))
	for i, l := range in {
		n, err := Normalize(l)
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", i+1, err)
		}
		out = append(out, n)
	}
	return out, nil
}
