package billing

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jhoicas/gst-billing-api/internal/application/dto"
	"github.com/jhoicas/gst-billing-api/internal/domain"
	"github.com/jhoicas/gst-billing-api/internal/domain/repository"
)

// HistoryUseCase consulta paginada del historial de facturas.
type HistoryUseCase struct {
	history repository.InvoiceHistoryRepository
}

func NewHistoryUseCase(history repository.InvoiceHistoryRepository) *HistoryUseCase {
	return &HistoryUseCase{history: history}
}

// List filtra por nombre (regex sin distinguir mayúsculas) y, si vienen ambos extremos,
// por rango de fechas inclusivo. Una fecha final sin hora cubre el día completo.
func (uc *HistoryUseCase) List(ctx context.Context, q dto.HistoryQuery) (*dto.HistoryPage, error) {
	q.DefaultPage()
	if err := validateStruct(q.PageRequest); err != nil {
		return nil, err
	}

	var f repository.Filter
	if q.CustomerName != "" {
		if _, err := regexp.Compile("(?i)" + q.CustomerName); err != nil {
			return nil, fmt.Errorf("%w: customerName no es una expresión válida", domain.ErrInvalidInput)
		}
		f.CustomerName = q.CustomerName
	}
	if q.StartDate != "" && q.EndDate != "" {
		from, err := parseDate(q.StartDate)
		if err != nil {
			return nil, err
		}
		to, err := parseDate(q.EndDate)
		if err != nil {
			return nil, err
		}
		if len(q.EndDate) == len(dateLayout) {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		f.DateFrom, f.DateTo = &from, &to
	}

	total, err := uc.history.CountDocuments(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("historial: contar: %w", err)
	}
	rows, err := uc.history.Find(ctx, f, repository.Page{Offset: q.Offset(), Limit: q.Limit})
	if err != nil {
		return nil, fmt.Errorf("historial: buscar: %w", err)
	}

	data := make([]dto.InvoiceHistoryResponse, 0, len(rows))
	for _, h := range rows {
		data = append(data, toHistoryResponse(h))
	}
	return &dto.HistoryPage{
		Message:      "Invoice history fetched successfully",
		Data:         data,
		CurrentPage:  q.Page,
		TotalPages:   int((total + int64(q.Limit) - 1) / int64(q.Limit)),
		TotalRecords: total,
	}, nil
}
