package repository

import (
	"context"

	"github.com/jhoicas/gst-billing-api/internal/domain/entity"
)

// HSNRateRepository acceso de solo lectura a la tabla de tarifas por código HSN.
type HSNRateRepository interface {
	// FindByCodes devuelve las tarifas encontradas; los códigos sin tarifa simplemente no aparecen.
	FindByCodes(ctx context.Context, codes []string) ([]*entity.HSNRate, error)
}
