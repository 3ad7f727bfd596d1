package gst

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/jhoicas/gst-billing-api/internal/application/dto"
	"github.com/jhoicas/gst-billing-api/internal/domain"
	"github.com/jhoicas/gst-billing-api/pkg/gstin"
)

// LookupClient consulta el registro oficial de contribuyentes por GSTIN.
// Devuelve domain.ErrNotFound si el número no está registrado.
type LookupClient interface {
	Lookup(ctx context.Context, gstin string) (*dto.GSTDetailsResponse, error)
}

// LookupUseCase valida el formato y delega en el cliente externo.
type LookupUseCase struct {
	client LookupClient
	log    zerolog.Logger
}

func NewLookupUseCase(client LookupClient, log zerolog.Logger) *LookupUseCase {
	return &LookupUseCase{client: client, log: log}
}

// Get devuelve los datos del contribuyente para prellenar el cliente de la factura.
func (uc *LookupUseCase) Get(ctx context.Context, raw string) (*dto.GSTDetailsResponse, error) {
	number, err := gstin.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: Invalid GST number format", domain.ErrInvalidInput)
	}
	details, err := uc.client.Lookup(ctx, number)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			uc.log.Error().Err(err).Str("gstin", number).Msg("error consultando GSTIN")
		}
		return nil, err
	}
	return details, nil
}
