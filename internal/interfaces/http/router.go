package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gst-billing-api/internal/application/billing"
	"github.com/jhoicas/gst-billing-api/internal/application/gst"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	UpsertInvoice *billing.UpsertInvoiceUseCase
	SendInvoice   *billing.SendInvoiceUseCase
	Purge         *billing.PurgeUseCase
	History       *billing.HistoryUseCase
	GSTLookup     *gst.LookupUseCase
	InvoicesDir   string // servido en /invoices; vacío = sin estáticos
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Facturas
	invoices := api.Group("/invoice")
	invoiceHandler := NewInvoiceHandler(deps.UpsertInvoice, deps.SendInvoice, deps.Purge, deps.History)
	invoices.Post("/", invoiceHandler.Upsert)
	invoices.Post("/send", invoiceHandler.Send)
	invoices.Post("/delete-records", invoiceHandler.DeleteRecords)
	invoices.Get("/invoice-history", invoiceHandler.History)

	// GSTIN
	gstGroup := api.Group("/gst")
	gstHandler := NewGSTHandler(deps.GSTLookup)
	gstGroup.Get("/:gstNumber", gstHandler.Get)

	// PDFs generados
	if deps.InvoicesDir != "" {
		app.Static("/invoices", deps.InvoicesDir)
	}
}
