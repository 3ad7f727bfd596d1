package tax_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gst-billing-api/internal/domain"
	"github.com/jhoicas/gst-billing-api/internal/domain/tax"
)

func rates() tax.RateTable {
	return tax.RateTable{
		"1234": {CGST: d("6"), SGST: d("6")},
		"4901": {CGST: d("2.5"), SGST: d("2.5")},
		"9503": {CGST: d("9"), SGST: d("9")},
	}
}

func assertInvariant(t *testing.T, r tax.Result) {
	t.Helper()
	assert.True(t, r.FinalAmount.Equal(r.TotalAmount.Add(r.CGST).Add(r.SGST)),
		"final=%s total=%s cgst=%s sgst=%s", r.FinalAmount, r.TotalAmount, r.CGST, r.SGST)
}

func TestCompute_EscenarioExtremoAExtremo(t *testing.T) {
	line, err := tax.Normalize(tax.LineInput{HSN: "1234", Quantity: d("2"), Rate: d("112.00"), GST: d("12")})
	require.NoError(t, err)

	r, err := tax.Compute([]tax.Item{{HSN: line.HSN, Amount: line.Amount}}, rates(), tax.MissReject)
	require.NoError(t, err)

	assert.Equal(t, "200.00", r.TotalAmount.StringFixed(2))
	assert.Equal(t, "12.00", r.CGST.StringFixed(2))
	assert.Equal(t, "12.00", r.SGST.StringFixed(2))
	assert.Equal(t, "224.00", r.FinalAmount.StringFixed(2))
	assertInvariant(t, r)
}

func TestCompute_ListaVacia(t *testing.T) {
	r, err := tax.Compute(nil, rates(), tax.MissReject)
	require.NoError(t, err)
	assert.True(t, r.FinalAmount.IsZero())
	assert.Empty(t, r.Groups)
	assertInvariant(t, r)
}

// El impuesto se redondea por grupo sobre el valor gravable acumulado, no por línea.
func TestCompute_AgrupaPorHSN(t *testing.T) {
	items := []tax.Item{
		{HSN: "4901", Amount: d("10.10")},
		{HSN: "9503", Amount: d("33.33")},
		{HSN: "4901", Amount: d("10.10")},
	}
	r, err := tax.Compute(items, rates(), tax.MissReject)
	require.NoError(t, err)

	require.Len(t, r.Groups, 2)
	assert.Equal(t, "4901", r.Groups[0].HSN)
	assert.Equal(t, "20.20", r.Groups[0].TaxableValue.StringFixed(2))
	assert.Equal(t, "0.51", r.Groups[0].CGST.StringFixed(2)) // 20.20*2.5% = 0.505
	assert.Equal(t, "9503", r.Groups[1].HSN)
	assert.Equal(t, "3.00", r.Groups[1].SGST.StringFixed(2)) // 33.33*9% = 2.9997

	assert.Equal(t, "53.53", r.TotalAmount.StringFixed(2))
	assert.Equal(t, "3.51", r.CGST.StringFixed(2))
	assert.Equal(t, "3.51", r.SGST.StringFixed(2))
	assert.Equal(t, "60.55", r.FinalAmount.StringFixed(2))
	assertInvariant(t, r)
}

func TestCompute_InvarianteEnVariosConjuntos(t *testing.T) {
	sets := [][]tax.Item{
		{{HSN: "1234", Amount: d("0.01")}},
		{{HSN: "1234", Amount: d("99.99")}, {HSN: "1234", Amount: d("0.01")}},
		{{HSN: "4901", Amount: d("7.77")}, {HSN: "9503", Amount: d("123.45")}, {HSN: "1234", Amount: d("5.55")}},
	}
	for _, s := range sets {
		r, err := tax.Compute(s, rates(), tax.MissReject)
		require.NoError(t, err)
		assertInvariant(t, r)
		var sum decimal.Decimal
		for _, it := range s {
			sum = sum.Add(it.Amount)
		}
		assert.True(t, r.TotalAmount.Equal(sum))
	}
}

func TestCompute_CodigoSinTarifa_Rechaza(t *testing.T) {
	_, err := tax.Compute([]tax.Item{{HSN: "0000", Amount: d("10")}, {HSN: "1234", Amount: d("1")}}, rates(), tax.MissReject)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrRateLookupMiss)

	codes, ok := tax.AsLookupMiss(err)
	require.True(t, ok)
	assert.Equal(t, []string{"0000"}, codes)
}

func TestCompute_CodigoSinTarifa_PoliticaCero(t *testing.T) {
	r, err := tax.Compute([]tax.Item{{HSN: "0000", Amount: d("10")}, {HSN: "1234", Amount: d("100")}}, rates(), tax.MissZero)
	require.NoError(t, err)
	assert.Equal(t, []string{"0000"}, r.MissingCodes)
	assert.Equal(t, "110.00", r.TotalAmount.StringFixed(2))
	assert.Equal(t, "6.00", r.CGST.StringFixed(2))
	assertInvariant(t, r)
}

func TestCodes_OrdenDePrimeraAparicion(t *testing.T) {
	got := tax.Codes([]tax.Item{{HSN: "b"}, {HSN: "a"}, {HSN: "b"}, {HSN: "c"}})
	assert.Equal(t, []string{"b", "a", "c"}, got)
}
