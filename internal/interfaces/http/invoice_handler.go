package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/gst-billing-api/internal/application/billing"
	"github.com/jhoicas/gst-billing-api/internal/application/dto"
)

// InvoiceHandler maneja el ciclo de vida de facturas: upsert, envío, purga e historial.
type InvoiceHandler struct {
	upsert  *billing.UpsertInvoiceUseCase
	send    *billing.SendInvoiceUseCase
	purge   *billing.PurgeUseCase
	history *billing.HistoryUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(
	upsert *billing.UpsertInvoiceUseCase,
	send *billing.SendInvoiceUseCase,
	purge *billing.PurgeUseCase,
	history *billing.HistoryUseCase,
) *InvoiceHandler {
	return &InvoiceHandler{upsert: upsert, send: send, purge: purge, history: history}
}

// Upsert crea o actualiza la factura por número, genera el PDF y sincroniza el libro.
// POST /api/invoice
func (h *InvoiceHandler) Upsert(c *fiber.Ctx) error {
	var in dto.UpsertInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.upsert.Upsert(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Send envía el PDF de la factura por WhatsApp.
// POST /api/invoice/send
func (h *InvoiceHandler) Send(c *fiber.Ctx) error {
	var in dto.SendInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.send.Send(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// DeleteRecords purga registros antiguos de una colección.
// POST /api/invoice/delete-records
func (h *InvoiceHandler) DeleteRecords(c *fiber.Ctx) error {
	var in dto.PurgeRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.purge.Purge(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// History lista el historial paginado.
// GET /api/invoice/invoice-history?page=&limit=&customerName=&startDate=&endDate=
func (h *InvoiceHandler) History(c *fiber.Ctx) error {
	q := dto.HistoryQuery{
		PageRequest: dto.PageRequest{
			Page:  c.QueryInt("page", 1),
			Limit: c.QueryInt("limit", 10),
		},
		CustomerName: c.Query("customerName"),
		StartDate:    c.Query("startDate"),
		EndDate:      c.Query("endDate"),
	}
	out, err := h.history.List(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
