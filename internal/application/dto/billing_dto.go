package dto

import "github.com/shopspring/decimal"

// CustomerInfo datos del cliente enviados con la factura.
type CustomerInfo struct {
	Name      string `json:"name" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	GSTNumber string `json:"gstNumber,omitempty"`
}

// ProductInput línea de factura: Rate incluye el GST.
type ProductInput struct {
	Name     string          `json:"name" validate:"required"`
	HSN      string          `json:"HSN" validate:"required"`
	Quantity decimal.Decimal `json:"quantity"`
	Rate     decimal.Decimal `json:"rate"`
	GST      decimal.Decimal `json:"gst"`
}

// UpsertInvoiceRequest body para POST /api/invoice.
// Date acepta "2006-01-02" o RFC 3339.
type UpsertInvoiceRequest struct {
	InvoiceNumber string         `json:"invoiceNumber" validate:"required"`
	Date          string         `json:"date" validate:"required"`
	CustomerInfo  CustomerInfo   `json:"customerInfo"`
	Products      []ProductInput `json:"products" validate:"required,min=1,dive"`
}

// ProductResponse línea persistida.
type ProductResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	HSN           string          `json:"HSN"`
	Quantity      decimal.Decimal `json:"quantity"`
	InclusiveRate decimal.Decimal `json:"inclusiveRate"`
	Rate          decimal.Decimal `json:"rate"`
	GST           decimal.Decimal `json:"gst"`
	Amount        decimal.Decimal `json:"amount"`
}

// InvoiceResponse factura canónica.
type InvoiceResponse struct {
	ID                string          `json:"id"`
	InvoiceNumber     string          `json:"invoiceNumber"`
	Date              string          `json:"date"`
	CustomerName      string          `json:"customerName"`
	CustomerGSTNumber string          `json:"customerGstNumber,omitempty"`
	Products          []string        `json:"products"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	CGST              decimal.Decimal `json:"CGST"`
	SGST              decimal.Decimal `json:"SGST"`
	FinalAmount       decimal.Decimal `json:"finalAmount"`
}

// InvoiceHistoryResponse registro del historial.
type InvoiceHistoryResponse struct {
	InvoiceResponse
	CustomerPhoneNumber string `json:"customerPhoneNumber"`
	PDFPath             string `json:"pdfPath"`
}

// UpsertInvoiceResponse respuesta 201 de POST /api/invoice.
type UpsertInvoiceResponse struct {
	Message       string                 `json:"message"`
	Invoice       InvoiceResponse        `json:"invoice"`
	History       InvoiceHistoryResponse `json:"history"`
	LineItems     []ProductResponse      `json:"lineItems"`
	PDFPath       string                 `json:"pdfPath"`
	CurrentDBSize float64                `json:"currentDbSize"` // MB
}

// QuotaAdvisory respuesta 200 cuando el almacenamiento supera el umbral; no se persistió nada.
type QuotaAdvisory struct {
	Message     string   `json:"message"`
	CurrentSize string   `json:"currentSize"` // "460.00 MB"
	Suggestion  string   `json:"suggestion"`
	Collections []string `json:"collections"`
}

// PurgeRequest body para POST /api/invoice/delete-records.
type PurgeRequest struct {
	DeleteFrom string `json:"deleteFrom" validate:"required"`
}

// PurgeResponse resultado de la purga.
type PurgeResponse struct {
	Message      string `json:"message"`
	Collection   string `json:"collection"`
	DeletedCount int64  `json:"deletedCount"`
}

// HistoryQuery filtros de GET /api/invoice/invoice-history.
// El rango de fechas solo aplica si vienen ambos extremos.
type HistoryQuery struct {
	PageRequest
	CustomerName string `query:"customerName"`
	StartDate    string `query:"startDate"`
	EndDate      string `query:"endDate"`
}

// HistoryPage página de historial ordenada por fecha descendente.
type HistoryPage struct {
	Message      string                   `json:"message"`
	Data         []InvoiceHistoryResponse `json:"data"`
	CurrentPage  int                      `json:"currentPage"`
	TotalPages   int                      `json:"totalPages"`
	TotalRecords int64                    `json:"totalRecords"`
}

// SendInvoiceRequest body para POST /api/invoice/send.
type SendInvoiceRequest struct {
	Phone   string `json:"phone" validate:"required"`
	PDFPath string `json:"pdfPath" validate:"required"`
}
