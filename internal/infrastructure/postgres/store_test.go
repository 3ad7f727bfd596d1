package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/gst-billing-api/internal/domain"
	"github.com/jhoicas/gst-billing-api/internal/domain/repository"
	"github.com/jhoicas/gst-billing-api/pkg/config"
)

func TestWhereClause_Historial(t *testing.T) {
	s := NewInvoiceHistoryRepository(nil)
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)

	where, args, err := s.whereClause(repository.Filter{
		InvoiceNumber: "INV-1",
		CustomerName:  "^ravi",
		DateFrom:      &from,
		DateTo:        &to,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, " WHERE invoice_number = $1 AND customer_name ~* $2 AND date >= $3 AND date <= $4", where)
	assert.Equal(t, []any{"INV-1", "^ravi", from, to}, args)
}

func TestWhereClause_IgnoraColumnasAusentes(t *testing.T) {
	s := NewProductRepository(nil)
	cutoff := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	where, args, err := s.whereClause(repository.Filter{CustomerName: "x", InvoiceNumber: "y", OlderThan: &cutoff}, nil)
	require.NoError(t, err)
	assert.Equal(t, " WHERE created_at < $1", where)
	assert.Len(t, args, 1)
}

func TestWhereClause_Vacio(t *testing.T) {
	where, args, err := NewInvoiceRepository(nil).whereClause(repository.Filter{}, nil)
	require.NoError(t, err)
	assert.Empty(t, where)
	assert.Empty(t, args)
}

func TestWhereClause_RegexInvalida(t *testing.T) {
	_, _, err := NewCustomerRepository(nil).whereClause(repository.Filter{CustomerName: "(abc"}, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestResolveIPv4_Literal(t *testing.T) {
	ip, err := resolveIPv4(context.Background(), "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", ip)

	_, err = resolveIPv4(context.Background(), "::1")
	assert.Error(t, err)
}

func TestBuildPoolConfig_LimitesDesdeConfig(t *testing.T) {
	cfg := config.DBConfig{
		DatabaseURL:            "postgres://app:secret@db:5432/gst?sslmode=disable",
		MaxConns:               7,
		MinConns:               2,
		MaxConnLifetimeMinutes: 15,
		MaxConnIdleMinutes:     3,
	}
	pc, err := buildPoolConfig(cfg)
	require.NoError(t, err)

	assert.Equal(t, int32(7), pc.MaxConns)
	assert.Equal(t, int32(2), pc.MinConns)
	assert.Equal(t, 15*time.Minute, pc.MaxConnLifetime)
	assert.Equal(t, 3*time.Minute, pc.MaxConnIdleTime)
	assert.Equal(t, "db", pc.ConnConfig.Host)
	assert.NotNil(t, pc.AfterConnect)
}

func TestBuildPoolConfig_DSNInvalido(t *testing.T) {
	_, err := buildPoolConfig(config.DBConfig{DatabaseURL: "postgres://%zz", MaxConns: 1})
	assert.Error(t, err)
}

func TestDialIPv4(t *testing.T) {
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	conn, err := dialIPv4(context.Background(), "tcp", ln.Addr().String())
	require.NoError(t, err)
	assert.Equal(t, "tcp", conn.RemoteAddr().Network())
	_ = conn.Close()

	_, err = dialIPv4(context.Background(), "tcp", "[::1]:5432")
	assert.Error(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	dup := fmt.Errorf("insert invoices: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation})
	assert.True(t, isUniqueViolation(dup))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}))
	assert.False(t, isUniqueViolation(errors.New("23505")))
}

func TestMigracion_PrecisionDeLineas(t *testing.T) {
	raw, err := migrationsFS.ReadFile("migrations/000001_gst_billing.up.sql")
	require.NoError(t, err)
	sql := string(raw)

	// cantidad y precio con impuesto se guardan tal como llegan; solo los derivados van a 2 decimales
	assert.Regexp(t, `quantity\s+NUMERIC\(18,6\)`, sql)
	assert.Regexp(t, `inclusive_rate\s+NUMERIC\(18,6\)`, sql)
	assert.Regexp(t, `gst\s+NUMERIC\(9,4\)`, sql)
	assert.Regexp(t, `amount\s+NUMERIC\(14,2\)`, sql)
}
