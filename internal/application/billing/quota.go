package billing

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/gst-billing-api/internal/application/dto"
	"github.com/jhoicas/gst-billing-api/internal/domain"
)

const bytesPerMB = 1024 * 1024

// SizeSource colección que aporta al tamaño total estimado.
type SizeSource struct {
	Name      string
	Estimator SizeEstimator
}

// QuotaStatus resultado de la verificación de cuota.
type QuotaStatus struct {
	OK            bool
	CurrentSizeMB float64
}

// QuotaExceededError aviso de almacenamiento lleno; no es un fallo duro (se responde 200).
type QuotaExceededError struct {
	Advisory dto.QuotaAdvisory
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("%s (%s)", domain.ErrQuotaExceeded.Error(), e.Advisory.CurrentSize)
}

// Is permite errors.Is(err, domain.ErrQuotaExceeded).
func (e *QuotaExceededError) Is(target error) bool { return target == domain.ErrQuotaExceeded }

// QuotaGuard estima el tamaño persistido sumando el tamaño serializado de cada documento
// en las colecciones y bloquea escrituras por encima del umbral.
// Es una aproximación (no el tamaño real del motor): señal blanda, no cuota exacta.
type QuotaGuard struct {
	sources   []SizeSource
	maxMB     float64
	purgeDays int
	metrics   Metrics
	sf        singleflight.Group
}

// NewQuotaGuard construye el guardián. maxMB típico: 450.
func NewQuotaGuard(sources []SizeSource, maxMB float64, purgeDays int, metrics Metrics) *QuotaGuard {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &QuotaGuard{sources: sources, maxMB: maxMB, purgeDays: purgeDays, metrics: metrics}
}

// CurrentSizeMB recorre las colecciones en paralelo. Llamadas concurrentes comparten el mismo recorrido;
// cancelar ctx solo libera a este llamador, el recorrido sigue para los demás.
func (g *QuotaGuard) CurrentSizeMB(ctx context.Context) (float64, error) {
	ch := g.sf.DoChan("size", func() (interface{}, error) {
		return g.scan(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(float64), nil
	}
}

// FreshSizeMB recorre las colecciones sin compartir resultado, para medir después de una escritura.
func (g *QuotaGuard) FreshSizeMB(ctx context.Context) (float64, error) {
	return g.scan(ctx)
}

func (g *QuotaGuard) scan(ctx context.Context) (float64, error) {
	sizes := make([]int64, len(g.sources))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, src := range g.sources {
		eg.Go(func() error {
			n, err := src.Estimator.EstimateSize(egCtx)
			if err != nil {
				return fmt.Errorf("cuota: estimar %s: %w", src.Name, err)
			}
			sizes[i] = n
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, err
	}
	var total int64
	for _, n := range sizes {
		total += n
	}
	return float64(total) / bytesPerMB, nil
}

// Check compara el tamaño actual con el umbral. Sin efectos secundarios.
func (g *QuotaGuard) Check(ctx context.Context) (QuotaStatus, error) {
	size, err := g.CurrentSizeMB(ctx)
	if err != nil {
		return QuotaStatus{}, err
	}
	st := QuotaStatus{OK: size <= g.maxMB, CurrentSizeMB: size}
	g.metrics.ObserveQuota(size, !st.OK)
	return st, nil
}

// Advisory construye el aviso con la sugerencia de purga.
func (g *QuotaGuard) Advisory(st QuotaStatus) *QuotaExceededError {
	return &QuotaExceededError{Advisory: dto.QuotaAdvisory{
		Message:     "Database storage is full for free usage.",
		CurrentSize: fmt.Sprintf("%.2f MB", st.CurrentSizeMB),
		Suggestion:  fmt.Sprintf("Please choose a collection to delete records older than %d days.", g.purgeDays),
		Collections: append([]string(nil), Collections...),
	}}
}
