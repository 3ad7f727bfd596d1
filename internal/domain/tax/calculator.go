package tax

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/gst-billing-api/internal/domain"
	"github.com/jhoicas/gst-billing-api/pkg/money"
)

// Rates porcentajes de CGST y SGST de un código HSN.
type Rates struct {
	CGST decimal.Decimal
	SGST decimal.Decimal
}

// RateTable tarifas indexadas por código HSN (precargadas por el llamador).
type RateTable map[string]Rates

// MissPolicy qué hacer cuando un código HSN no tiene tarifa.
type MissPolicy string

const (
	// MissReject falla con *LookupMissError (política por defecto).
	MissReject MissPolicy = "reject"
	// MissZero aplica 0% y reporta los códigos en Result.MissingCodes para que el llamador lo registre.
	MissZero MissPolicy = "zero"
)

// Item lo mínimo que el motor necesita de una línea ya normalizada.
type Item struct {
	HSN    string
	Amount decimal.Decimal
}

// Group resumen por código HSN (alimenta también la tabla resumen del PDF).
type Group struct {
	HSN          string
	TaxableValue decimal.Decimal
	CGSTRate     decimal.Decimal
	SGSTRate     decimal.Decimal
	CGST         decimal.Decimal
	SGST         decimal.Decimal
}

// TotalTax CGST + SGST del grupo.
func (g Group) TotalTax() decimal.Decimal { return g.CGST.Add(g.SGST) }

// Result totales de la factura. Invariante: FinalAmount == TotalAmount + CGST + SGST.
type Result struct {
	TotalAmount  decimal.Decimal
	CGST         decimal.Decimal
	SGST         decimal.Decimal
	FinalAmount  decimal.Decimal
	Groups       []Group  // en orden de primera aparición del código
	MissingCodes []string // solo con MissZero
}

// LookupMissError uno o más códigos HSN sin tarifa registrada.
type LookupMissError struct {
	Codes []string
}

func (e *LookupMissError) Error() string {
	return fmt.Sprintf("%s: %s", domain.ErrRateLookupMiss.Error(), strings.Join(e.Codes, ", "))
}

// Is permite errors.Is(err, domain.ErrRateLookupMiss).
func (e *LookupMissError) Is(target error) bool { return target == domain.ErrRateLookupMiss }

// Compute agrupa por HSN, aplica las tarifas del grupo sobre el valor gravable y acumula:
//
//	CGST_g = round2(taxable_g * cgst%/100), SGST_g = round2(taxable_g * sgst%/100)
//
// Una lista vacía produce todos los totales en cero.
func Compute(items []Item, rates RateTable, policy MissPolicy) (Result, error) {
	var order []string
	taxable := make(map[string]decimal.Decimal)
	for _, it := range items {
		if _, seen := taxable[it.HSN]; !seen {
			order = append(order, it.HSN)
			taxable[it.HSN] = decimal.Zero
		}
		taxable[it.HSN] = taxable[it.HSN].Add(it.Amount)
	}

	var missing []string
	for _, code := range order {
		if _, ok := rates[code]; !ok {
			missing = append(missing, code)
		}
	}
	if len(missing) > 0 && policy != MissZero {
		return Result{}, &LookupMissError{Codes: missing}
	}

	res := Result{MissingCodes: missing}
	for _, code := range order {
		r := rates[code] // tarifa cero si falta (MissZero)
		g := Group{
			HSN:          code,
			TaxableValue: taxable[code],
			CGSTRate:     r.CGST,
			SGSTRate:     r.SGST,
			CGST:         money.Round2(money.Percent(taxable[code], r.CGST)),
			SGST:         money.Round2(money.Percent(taxable[code], r.SGST)),
		}
		res.Groups = append(res.Groups, g)
		res.TotalAmount = res.TotalAmount.Add(g.TaxableValue)
		res.CGST = res.CGST.Add(g.CGST)
		res.SGST = res.SGST.Add(g.SGST)
	}
	res.FinalAmount = res.TotalAmount.Add(res.CGST).Add(res.SGST)
	return res, nil
}

// Codes devuelve los códigos HSN distintos en orden de primera aparición.
func Codes(items []Item) []string {
	seen := make(map[string]struct{}, len(items))
	var out []string
	for _, it := range items {
		if _, ok := seen[it.HSN]; ok {
			continue
		}
		seen[it.HSN] = struct{}{}
		out = append(out, it.HSN)
	}
	return out
}

// AsLookupMiss extrae los códigos faltantes de un error, si lo es.
func AsLookupMiss(err error) ([]string, bool) {
	var lm *LookupMissError
	if errors.As(err, &lm) {
		return lm.Codes, true
	}
	return nil, false
}
