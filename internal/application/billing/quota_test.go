package billing_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gst-billing-api/internal/application/billing"
)

type failingSize struct{}

func (failingSize) EstimateSize(context.Context) (int64, error) { return 0, errors.New("sin conexión") }

type recordingMetrics struct {
	sizes    []float64
	exceeded []bool
}

func (m *recordingMetrics) ObserveUpsert(bool) {}
func (m *recordingMetrics) ObserveLookupMiss(int) {}
func (m *recordingMetrics) ObserveQuota(size float64, exceeded bool) {
	m.sizes = append(m.sizes, size)
	m.exceeded = append(m.exceeded, exceeded)
}

func TestQuota_SumaColecciones(t *testing.T) {
	m := &recordingMetrics{}
	g := billing.NewQuotaGuard([]billing.SizeSource{
		{Name: "a", Estimator: fixedSize(300 * 1024 * 1024)},
		{Name: "b", Estimator: fixedSize(160 * 1024 * 1024)},
	}, 450, 30, m)

	st, err := g.Check(context.Background())
	require.NoError(t, err)
	assert.False(t, st.OK)
	assert.InDelta(t, 460.0, st.CurrentSizeMB, 1e-9)
	assert.Equal(t, []bool{true}, m.exceeded)
}

func TestQuota_UmbralInclusivo(t *testing.T) {
	g := billing.NewQuotaGuard([]billing.SizeSource{{Name: "a", Estimator: fixedSize(450 * 1024 * 1024)}}, 450, 30, nil)
	st, err := g.Check(context.Background())
	require.NoError(t, err)
	assert.True(t, st.OK)
}

func TestQuota_ErrorDeEstimacion(t *testing.T) {
	g := billing.NewQuotaGuard([]billing.SizeSource{
		{Name: "a", Estimator: fixedSize(1)},
		{Name: "b", Estimator: failingSize{}},
	}, 450, 30, nil)
	_, err := g.Check(context.Background())
	assert.Error(t, err)
}

// gatedSize bloquea la primera estimación hasta que se cierre release.
type gatedSize struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
	bytes   int64
}

func (g *gatedSize) EstimateSize(ctx context.Context) (int64, error) {
	if g.calls.Add(1) == 1 {
		close(g.started)
		select {
		case <-g.release:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return g.bytes, nil
}

func newGatedSize(bytes int64) *gatedSize {
	return &gatedSize{started: make(chan struct{}), release: make(chan struct{}), bytes: bytes}
}

func TestQuota_CancelarUnLlamadorNoAfectaALosDemas(t *testing.T) {
	est := newGatedSize(10 * 1024 * 1024)
	g := billing.NewQuotaGuard([]billing.SizeSource{{Name: "a", Estimator: est}}, 450, 30, nil)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := g.CurrentSizeMB(ctxA)
		errA <- err
	}()
	<-est.started

	type result struct {
		size float64
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		size, err := g.CurrentSizeMB(context.Background())
		resB <- result{size, err}
	}()

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(est.release)
	got := <-resB
	require.NoError(t, got.err)
	assert.InDelta(t, 10.0, got.size, 1e-9)
}

func TestQuota_FreshSizeNoEsperaRecorridoCompartido(t *testing.T) {
	est := newGatedSize(20 * 1024 * 1024)
	g := billing.NewQuotaGuard([]billing.SizeSource{{Name: "a", Estimator: est}}, 450, 30, nil)

	go func() { _, _ = g.CurrentSizeMB(context.Background()) }()
	<-est.started
	defer close(est.release)

	size, err := g.FreshSizeMB(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 20.0, size, 1e-9)
}
