package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/gst-billing-api/internal/domain"
	"github.com/jhoicas/gst-billing-api/internal/domain/repository"
)

// Accessors expone los campos que necesita el filtrado genérico.
// Los campos que no existen en la entidad quedan en nil y el criterio se ignora.
type Accessors[T any] struct {
	ID            func(*T) *string
	Stamp         func(*T, time.Time) // asigna created_at/updated_at vacíos
	SortDate      func(*T) time.Time  // date en facturas, created_at en el resto
	InvoiceNumber func(*T) string
	CustomerName  func(*T) string
	Clone         func(*T) *T
}

// Collection almacén en memoria de documentos T; implementa repository.DocumentStore[T].
type Collection[T any] struct {
	mu   sync.RWMutex
	docs map[string]*T
	acc  Accessors[T]
	now  func() time.Time
}

var _ repository.DocumentStore[struct{}] = (*Collection[struct{}])(nil)

// NewCollection crea una colección vacía.
func NewCollection[T any](acc Accessors[T]) *Collection[T] {
	if acc.Clone == nil {
		acc.Clone = func(d *T) *T { c := *d; return &c }
	}
	return &Collection[T]{docs: make(map[string]*T), acc: acc, now: time.Now}
}

func (c *Collection[T]) FindOne(ctx context.Context, f repository.Filter) (*T, error) {
	list, err := c.Find(ctx, f, repository.Page{Limit: 1})
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (c *Collection[T]) Find(_ context.Context, f repository.Filter, p repository.Page) ([]*T, error) {
	match, err := c.matcher(f)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	out := make([]*T, 0)
	for _, d := range c.docs {
		if match(d) {
			out = append(out, c.acc.Clone(d))
		}
	}
	c.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		di, dj := c.acc.SortDate(out[i]), c.acc.SortDate(out[j])
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return *c.acc.ID(out[i]) < *c.acc.ID(out[j])
	})

	if p.Offset > 0 {
		if p.Offset >= len(out) {
			return []*T{}, nil
		}
		out = out[p.Offset:]
	}
	if p.Limit > 0 && len(out) > p.Limit {
		out = out[:p.Limit]
	}
	return out, nil
}

func (c *Collection[T]) Create(_ context.Context, doc *T) error {
	id := c.acc.ID(doc)
	if *id == "" {
		*id = uuid.New().String()
	}
	if c.acc.Stamp != nil {
		c.acc.Stamp(doc, c.now())
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, dup := c.docs[*id]; dup {
		return fmt.Errorf("memstore: id %s: %w", *id, domain.ErrDuplicate)
	}
	c.docs[*id] = c.acc.Clone(doc)
	return nil
}

func (c *Collection[T]) Save(_ context.Context, doc *T) error {
	id := *c.acc.ID(doc)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[id]; !ok {
		return domain.ErrNotFound
	}
	c.docs[id] = c.acc.Clone(doc)
	return nil
}

func (c *Collection[T]) DeleteMany(_ context.Context, f repository.Filter) (int64, error) {
	match, err := c.matcher(f)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for id, d := range c.docs {
		if match(d) {
			delete(c.docs, id)
			n++
		}
	}
	return n, nil
}

func (c *Collection[T]) CountDocuments(_ context.Context, f repository.Filter) (int64, error) {
	match, err := c.matcher(f)
	if err != nil {
		return 0, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	var n int64
	for _, d := range c.docs {
		if match(d) {
			n++
		}
	}
	return n, nil
}

// EstimateSize suma el JSON de cada documento.
func (c *Collection[T]) EstimateSize(ctx context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var total int64
	for _, d := range c.docs {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		b, err := json.Marshal(d)
		if err != nil {
			return 0, fmt.Errorf("memstore: serializar: %w", err)
		}
		total += int64(len(b))
	}
	return total, nil
}

// Len número de documentos (útil en pruebas).
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

func (c *Collection[T]) matcher(f repository.Filter) (func(*T) bool, error) {
	var re *regexp.Regexp
	if f.CustomerName != "" && c.acc.CustomerName != nil {
		var err error
		re, err = regexp.Compile("(?i)" + f.CustomerName)
		if err != nil {
			return nil, fmt.Errorf("%w: expresión de nombre inválida", domain.ErrInvalidInput)
		}
	}
	return func(d *T) bool {
		if f.InvoiceNumber != "" && c.acc.InvoiceNumber != nil && c.acc.InvoiceNumber(d) != f.InvoiceNumber {
			return false
		}
		if re != nil && !re.MatchString(c.acc.CustomerName(d)) {
			return false
		}
		date := c.acc.SortDate(d)
		if f.DateFrom != nil && date.Before(*f.DateFrom) {
			return false
		}
		if f.DateTo != nil && date.After(*f.DateTo) {
			return false
		}
		if f.OlderThan != nil && !date.Before(*f.OlderThan) {
			return false
		}
		return true
	}, nil
}
