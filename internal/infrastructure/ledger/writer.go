package ledger

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jhoicas/gst-billing-api/internal/domain/entity"
)

// ErrClosed el escritor ya no acepta registros.
var ErrClosed = errors.New("libro: escritor cerrado")

// Observer recibe el resultado de cada escritura (métricas).
type Observer interface {
	ObserveLedgerWrite(err error)
}

type job struct {
	record entity.InvoiceHistory
	done   chan error
}

// Writer serializa todas las escrituras del libro en una única goroutine:
// el archivo nunca se lee y escribe desde dos peticiones a la vez.
type Writer struct {
	path  string
	sheet string
	log   zerolog.Logger
	obs   Observer

	jobs      chan job
	quit      chan struct{}
	stopped   chan struct{}
	startOnce sync.Once
	closeOnce sync.Once
}

// NewWriter crea el escritor; llamar Start antes de Sync.
func NewWriter(path, sheet string, log zerolog.Logger, obs Observer) *Writer {
	return &Writer{
		path:    path,
		sheet:   sheet,
		log:     log,
		obs:     obs,
		jobs:    make(chan job),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (w *Writer) Start() {
	w.startOnce.Do(func() { go w.loop() })
}

// Close detiene el escritor tras la escritura en curso.
func (w *Writer) Close() {
	w.closeOnce.Do(func() {
		close(w.quit)
		w.startOnce.Do(func() { close(w.stopped) })
	})
	<-w.stopped
}

// Sync inserta o reemplaza la fila del número de factura y espera a que quede guardada.
func (w *Writer) Sync(ctx context.Context, h *entity.InvoiceHistory) error {
	j := job{record: *h, done: make(chan error, 1)}
	select {
	case w.jobs <- j:
	case <-w.quit:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	// una vez aceptado se espera el resultado: la escritura ya está en curso
	return <-j.done
}

func (w *Writer) loop() {
	defer close(w.stopped)
	for {
		select {
		case <-w.quit:
			return
		case j := <-w.jobs:
			err := upsertFile(w.path, w.sheet, &j.record)
			if w.obs != nil {
				w.obs.ObserveLedgerWrite(err)
			}
			if err != nil {
				w.log.Error().Err(err).Str("invoice_number", j.record.InvoiceNumber).Msg("no se pudo actualizar el libro")
			} else {
				w.log.Debug().Str("invoice_number", j.record.InvoiceNumber).Str("path", w.path).Msg("libro actualizado")
			}
			j.done <- err
		}
	}
}
