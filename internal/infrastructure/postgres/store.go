package postgres

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/gst-billing-api/internal/domain"
	"github.com/jhoicas/gst-billing-api/internal/domain/repository"
)

// tableSpec describe cómo se mapea una entidad a su tabla.
// columns[0] debe ser "id".
type tableSpec[T any] struct {
	table         string
	columns       []string
	dateColumn    string // orden, rango de fechas y purga
	invoiceColumn string // vacío si la tabla no tiene número de factura
	nameColumn    string // vacío si la tabla no tiene nombre de cliente
	id            func(*T) *string
	stamp         func(*T, time.Time)
	values        func(*T) []any
	scan          func(pgx.Row) (*T, error)
}

// Store implementación genérica de repository.DocumentStore[T] sobre una tabla.
type Store[T any] struct {
	q    Querier
	spec tableSpec[T]
	now  func() time.Time
}

func newStore[T any](q Querier, spec tableSpec[T]) *Store[T] {
	return &Store[T]{q: q, spec: spec, now: time.Now}
}

func (s *Store[T]) selectList() string {
	return strings.Join(s.spec.columns, ", ")
}

// whereClause construye el WHERE con placeholders a partir de argN+1.
func (s *Store[T]) whereClause(f repository.Filter, args []any) (string, []any, error) {
	var conds []string
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.InvoiceNumber != "" && s.spec.invoiceColumn != "" {
		add(s.spec.invoiceColumn+" = $%d", f.InvoiceNumber)
	}
	if f.CustomerName != "" && s.spec.nameColumn != "" {
		if _, err := regexp.Compile(f.CustomerName); err != nil {
			return "", nil, fmt.Errorf("%w: expresión de nombre inválida", domain.ErrInvalidInput)
		}
		add(s.spec.nameColumn+" ~* $%d", f.CustomerName)
	}
	if f.DateFrom != nil {
		add(s.spec.dateColumn+" >= $%d", *f.DateFrom)
	}
	if f.DateTo != nil {
		add(s.spec.dateColumn+" <= $%d", *f.DateTo)
	}
	if f.OlderThan != nil {
		add(s.spec.dateColumn+" < $%d", *f.OlderThan)
	}
	if len(conds) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func (s *Store[T]) FindOne(ctx context.Context, f repository.Filter) (*T, error) {
	list, err := s.Find(ctx, f, repository.Page{Limit: 1})
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (s *Store[T]) Find(ctx context.Context, f repository.Filter, p repository.Page) ([]*T, error) {
	where, args, err := s.whereClause(f, nil)
	if err != nil {
		return nil, err
	}
	query := "SELECT " + s.selectList() + " FROM " + s.spec.table + where +
		" ORDER BY " + s.spec.dateColumn + " DESC, id ASC"
	if p.Limit > 0 {
		args = append(args, p.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if p.Offset > 0 {
		args = append(args, p.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", s.spec.table, err)
	}
	defer rows.Close()

	out := make([]*T, 0)
	for rows.Next() {
		doc, err := s.spec.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.spec.table, err)
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find %s: %w", s.spec.table, err)
	}
	return out, nil
}

func (s *Store[T]) Create(ctx context.Context, doc *T) error {
	id := s.spec.id(doc)
	if *id == "" {
		*id = uuid.New().String()
	}
	s.spec.stamp(doc, s.now())

	placeholders := make([]string, len(s.spec.columns))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := "INSERT INTO " + s.spec.table + " (" + s.selectList() + ") VALUES (" + strings.Join(placeholders, ", ") + ")"
	if _, err := s.q.Exec(ctx, query, s.spec.values(doc)...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert %s: %w: %w", s.spec.table, domain.ErrDuplicate, err)
		}
		return fmt.Errorf("insert %s: %w", s.spec.table, err)
	}
	return nil
}

func (s *Store[T]) Save(ctx context.Context, doc *T) error {
	sets := make([]string, 0, len(s.spec.columns)-1)
	for i, col := range s.spec.columns[1:] {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+2))
	}
	query := "UPDATE " + s.spec.table + " SET " + strings.Join(sets, ", ") + " WHERE id = $1"
	tag, err := s.q.Exec(ctx, query, s.spec.values(doc)...)
	if err != nil {
		return fmt.Errorf("update %s: %w", s.spec.table, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Store[T]) DeleteMany(ctx context.Context, f repository.Filter) (int64, error) {
	where, args, err := s.whereClause(f, nil)
	if err != nil {
		return 0, err
	}
	tag, err := s.q.Exec(ctx, "DELETE FROM "+s.spec.table+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete %s: %w", s.spec.table, err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store[T]) CountDocuments(ctx context.Context, f repository.Filter) (int64, error) {
	where, args, err := s.whereClause(f, nil)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := s.q.QueryRow(ctx, "SELECT COUNT(*) FROM "+s.spec.table+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", s.spec.table, err)
	}
	return n, nil
}

// EstimateSize suma el tamaño del JSON de cada fila: misma aproximación que el tamaño de documento serializado.
func (s *Store[T]) EstimateSize(ctx context.Context) (int64, error) {
	var n int64
	query := "SELECT COALESCE(SUM(octet_length(row_to_json(t)::text)), 0) FROM " + s.spec.table + " t"
	if err := s.q.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("size %s: %w", s.spec.table, err)
	}
	return n, nil
}

// isUniqueViolation verifica si un error es una violación de constraint único.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
