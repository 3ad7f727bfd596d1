// Package pdf genera la factura con impuestos (GST) en PDF.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Tienda + dirección   │  N° Factura + Fecha          │
//	│  GSTIN emisor / Estado                                       │
//	│  ─────────────────────────────────────────────────────────  │
//	│  CONSIGNATARIO: Nombre + GSTIN                               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: N° | Descripción | HSN | Cant | Tarifa | GST | Monto │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTALES: Total / CGST / SGST / Final                        │
//	│  RESUMEN HSN: valor gravable + CGST + SGST por código        │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER: leyenda de documento generado por computador        │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/gst-billing-api/internal/domain/entity"
	"github.com/jhoicas/gst-billing-api/internal/domain/tax"
	appconfig "github.com/jhoicas/gst-billing-api/pkg/config"
	"github.com/jhoicas/gst-billing-api/pkg/money"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ── Renderer ──────────────────────────────────────────────────────────────────

// InvoiceRenderer implementa billing.ArtifactRenderer con Maroto v2.
// Escribe <dir>/invoice-<número>.pdf y sobrescribe el archivo en cada actualización.
type InvoiceRenderer struct {
	dir  string
	shop appconfig.ShopConfig
	log  zerolog.Logger
}

// NewInvoiceRenderer construye el renderer.
func NewInvoiceRenderer(dir string, shop appconfig.ShopConfig, log zerolog.Logger) *InvoiceRenderer {
	return &InvoiceRenderer{dir: dir, shop: shop, log: log}
}

// FileName nombre del PDF para un número de factura. Los caracteres no seguros pasan a "_";
// si hubo reemplazo se agrega un sufijo sha1 del número original para no colisionar (INV/1 vs INV_1).
func FileName(invoiceNumber string) string {
	safe := unsafeChars.ReplaceAllString(invoiceNumber, "_")
	if safe != invoiceNumber {
		sum := sha1.Sum([]byte(invoiceNumber))
		safe += "-" + hex.EncodeToString(sum[:])[:8]
	}
	return "invoice-" + safe + ".pdf"
}

// RenderInvoice genera el PDF y devuelve su ruta.
func (g *InvoiceRenderer) RenderInvoice(
	_ context.Context,
	invoice *entity.Invoice,
	products []*entity.Product,
	summary tax.Result,
) (string, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Tax Invoice "+invoice.InvoiceNumber, true).
		WithAuthor(nonEmpty(g.shop.Name, "GST Billing"), true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(invoice, g.shop))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(consigneeRow(invoice, g.shop))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(products)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(invoice))

	m.AddRows(row.New(4))
	m.AddRows(hsnSummaryRows(summary)...)

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(footerRow())

	doc, err := m.Generate()
	if err != nil {
		return "", fmt.Errorf("pdf: generar documento: %w", err)
	}

	if err := os.MkdirAll(g.dir, 0o755); err != nil {
		return "", fmt.Errorf("pdf: crear directorio %s: %w", g.dir, err)
	}
	path := filepath.Join(g.dir, FileName(invoice.InvoiceNumber))
	if err := os.WriteFile(path, doc.GetBytes(), 0o644); err != nil {
		return "", fmt.Errorf("pdf: escribir %s: %w", path, err)
	}
	g.log.Debug().Str("invoice_number", invoice.InvoiceNumber).Str("path", path).Msg("PDF generado")
	return path, nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: tienda (izq) y N° Factura + Fecha (der).
func headerRow(invoice *entity.Invoice, shop appconfig.ShopConfig) core.Row {
	return row.New(22).Add(
		col.New(7).Add(
			text.New(nonEmpty(shop.Name, "—"), props.Text{
				Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1,
			}),
			text.New(nonEmpty(shop.Address, "—"), props.Text{
				Size: 9, Top: 8, Color: colorGray,
			}),
			text.New("GSTIN/UIN: "+nonEmpty(shop.GSTIN, "—"), props.Text{
				Size: 8, Top: 14, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("TAX INVOICE", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New("Invoice No: "+invoice.InvoiceNumber, props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right, Top: 7,
			}),
			text.New("Date: "+invoice.Date.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// consigneeRow: datos del comprador y estado del emisor.
func consigneeRow(invoice *entity.Invoice, shop appconfig.ShopConfig) core.Row {
	gstin := ""
	if invoice.CustomerGSTNumber != "" {
		gstin = "Customer GSTIN/UIN: " + invoice.CustomerGSTNumber
	}
	return row.New(16).Add(
		col.New(12).Add(
			text.New("Consignee (Ship to)", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(invoice.CustomerName, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 5,
			}),
			text.New(gstin, props.Text{Size: 8, Top: 10, Color: colorGray}),
			text.New(fmt.Sprintf("State Name: %s, Code: %s",
				nonEmpty(shop.StateName, "—"),
				nonEmpty(shop.StateCode, "—"),
			), props.Text{Size: 8, Top: 13, Color: colorGray}),
		),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Sl", 1, align.Center),
		h("Description of Goods", 4, align.Left),
		h("HSN/SAC", 2, align.Center),
		h("Qty", 1, align.Center),
		h("Rate", 1, align.Right),
		h("GST%", 1, align.Center),
		h("Amount", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableDetailRows: una fila por línea; Rate es el precio sin impuesto.
func tableDetailRows(products []*entity.Product) []core.Row {
	result := make([]core.Row, 0, len(products))
	cell := func(s string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(s, props.Text{Size: 8, Align: a, Top: 1, Left: 1, Right: 1}))
	}
	for i, p := range products {
		result = append(result, row.New(7).Add(
			cell(fmt.Sprint(i+1), 1, align.Center),
			cell(p.Name, 4, align.Left),
			cell(p.HSN, 2, align.Center),
			cell(p.Quantity.String(), 1, align.Center),
			cell(money.Fixed2(p.Rate), 1, align.Right),
			cell(money.Fixed2(p.GST), 1, align.Center),
			cell(money.Fixed2(p.Amount), 2, align.Right),
		))
	}
	return result
}

func totalsRow(invoice *entity.Invoice) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1, Top: top})
	}
	return row.New(26).Add(
		col.New(6),
		col.New(3).Add(
			label("Total Amount:"),
			text.New("CGST:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 6}),
			text.New("SGST:", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2, Top: 12}),
			text.New("Final Amount:", props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 18,
			}),
		),
		col.New(3).Add(
			value(money.Fixed2(invoice.TotalAmount), 0),
			value(money.Fixed2(invoice.CGST), 6),
			value(money.Fixed2(invoice.SGST), 12),
			text.New(money.Fixed2(invoice.FinalAmount), props.Text{
				Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 18,
			}),
		),
	)
}

// hsnSummaryRows: tabla de impuestos por código HSN con fila de totales.
func hsnSummaryRows(summary tax.Result) []core.Row {
	cell := func(s string, size int, bold bool) core.Col {
		p := props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1}
		if bold {
			p.Style = fontstyle.Bold
		}
		return col.New(size).Add(text.New(s, p))
	}
	rows := []core.Row{
		row.New(7).Add(col.New(12).Add(text.New("HSN Summary", props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Center, Color: colorPrimary, Top: 1,
		}))),
		row.New(7).Add(
			cell("HSN/SAC", 2, true),
			cell("Taxable Value", 2, true),
			cell("CGST %", 1, true),
			cell("CGST", 2, true),
			cell("SGST %", 1, true),
			cell("SGST", 2, true),
			cell("Total Tax", 2, true),
		),
	}

	taxable := decimal.Zero
	for _, g := range summary.Groups {
		taxable = taxable.Add(g.TaxableValue)
		rows = append(rows, row.New(6).Add(
			cell(g.HSN, 2, false),
			cell(money.Fixed2(g.TaxableValue), 2, false),
			cell(g.CGSTRate.String()+"%", 1, false),
			cell(money.Fixed2(g.CGST), 2, false),
			cell(g.SGSTRate.String()+"%", 1, false),
			cell(money.Fixed2(g.SGST), 2, false),
			cell(g.TotalTax().StringFixed(2), 2, false),
		))
	}

	rows = append(rows, row.New(7).Add(
		cell("Total", 2, true),
		cell(taxable.StringFixed(2), 2, true),
		cell("", 1, false),
		cell(money.Fixed2(summary.CGST), 2, true),
		cell("", 1, false),
		cell(money.Fixed2(summary.SGST), 2, true),
		cell(summary.CGST.Add(summary.SGST).StringFixed(2), 2, true),
	))
	return rows
}

func footerRow() core.Row {
	return row.New(10).Add(col.New(12).Add(
		text.New("This is a Computer Generated Invoice", props.Text{
			Style: fontstyle.Bold, Size: 9, Align: align.Center, Color: colorGray, Top: 2,
		}),
	))
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
