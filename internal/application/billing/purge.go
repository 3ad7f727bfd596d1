package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/gst-billing-api/internal/application/dto"
	"github.com/jhoicas/gst-billing-api/internal/domain"
	"github.com/jhoicas/gst-billing-api/internal/domain/repository"
)

// Deleter borrado masivo por filtro; lo cumplen los cuatro DocumentStore.
type Deleter interface {
	DeleteMany(ctx context.Context, f repository.Filter) (int64, error)
}

// PurgeUseCase elimina registros antiguos de una colección elegida por el cliente.
type PurgeUseCase struct {
	targets map[string]Deleter
	days    int
	log     zerolog.Logger
	now     func() time.Time
}

// NewPurgeUseCase registra las colecciones purgables por nombre (ver Collections).
func NewPurgeUseCase(targets map[string]Deleter, days int, log zerolog.Logger) *PurgeUseCase {
	return &PurgeUseCase{targets: targets, days: days, log: log, now: time.Now}
}

// Purge borra los documentos con antigüedad mayor a los días configurados.
// Facturas e historial se filtran por date; Product y Customer por created_at.
func (uc *PurgeUseCase) Purge(ctx context.Context, in dto.PurgeRequest) (*dto.PurgeResponse, error) {
	name := strings.TrimSpace(in.DeleteFrom)
	if name == "" {
		return nil, fmt.Errorf("%w: deleteFrom es obligatorio", domain.ErrInvalidInput)
	}
	target, ok := uc.targets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (válidas: %s)", domain.ErrInvalidCollection, name, strings.Join(Collections, ", "))
	}

	cutoff := uc.now().AddDate(0, 0, -uc.days)
	n, err := target.DeleteMany(ctx, repository.Filter{OlderThan: &cutoff})
	if err != nil {
		return nil, fmt.Errorf("purga %s: %w", name, err)
	}

	uc.log.Info().
		Str("collection", name).
		Int64("deleted", n).
		Time("cutoff", cutoff).
		Msg("registros antiguos eliminados")

	return &dto.PurgeResponse{
		Message:      fmt.Sprintf("Successfully deleted %d records from %s.", n, name),
		Collection:   name,
		DeletedCount: n,
	}, nil
}
