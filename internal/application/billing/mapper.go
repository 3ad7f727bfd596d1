package billing

import (
	"github.com/jhoicas/gst-billing-api/internal/application/dto"
	"github.com/jhoicas/gst-billing-api/internal/domain/entity"
)

const dateLayout = "2006-01-02"

func toInvoiceResponse(inv *entity.Invoice) dto.InvoiceResponse {
	return dto.InvoiceResponse{
		ID:                inv.ID,
		InvoiceNumber:     inv.InvoiceNumber,
		Date:              inv.Date.Format(dateLayout),
		CustomerName:      inv.CustomerName,
		CustomerGSTNumber: inv.CustomerGSTNumber,
		Products:          append([]string{}, inv.ProductIDs...),
		TotalAmount:       inv.TotalAmount,
		CGST:              inv.CGST,
		SGST:              inv.SGST,
		FinalAmount:       inv.FinalAmount,
	}
}

func toHistoryResponse(h *entity.InvoiceHistory) dto.InvoiceHistoryResponse {
	return dto.InvoiceHistoryResponse{
		InvoiceResponse: dto.InvoiceResponse{
			ID:                h.ID,
			InvoiceNumber:     h.InvoiceNumber,
			Date:              h.Date.Format(dateLayout),
			CustomerName:      h.CustomerName,
			CustomerGSTNumber: h.CustomerGSTNumber,
			Products:          append([]string{}, h.ProductIDs...),
			TotalAmount:       h.TotalAmount,
			CGST:              h.CGST,
			SGST:              h.SGST,
			FinalAmount:       h.FinalAmount,
		},
		CustomerPhoneNumber: h.CustomerPhoneNumber,
		PDFPath:             h.PDFPath,
	}
}

func toProductResponses(products []*entity.Product) []dto.ProductResponse {
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, dto.ProductResponse{
			ID:            p.ID,
			Name:          p.Name,
			HSN:           p.HSN,
			Quantity:      p.Quantity,
			InclusiveRate: p.InclusiveRate,
			Rate:          p.Rate,
			GST:           p.GST,
			Amount:        p.Amount,
		})
	}
	return out
}
