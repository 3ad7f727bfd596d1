package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/gst-billing-api/internal/domain/entity"
	"github.com/jhoicas/gst-billing-api/internal/domain/repository"
)

var _ repository.HSNRateRepository = (*HSNRateRepo)(nil)

// HSNRateRepo lectura de la tabla hsn_rates.
type HSNRateRepo struct {
	q Querier
}

func NewHSNRateRepository(q Querier) *HSNRateRepo {
	return &HSNRateRepo{q: q}
}

// FindByCodes una sola consulta para todos los códigos de la factura.
func (r *HSNRateRepo) FindByCodes(ctx context.Context, codes []string) ([]*entity.HSNRate, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	rows, err := r.q.Query(ctx, `SELECT hsn, cgst, sgst FROM hsn_rates WHERE hsn = ANY($1)`, codes)
	if err != nil {
		return nil, fmt.Errorf("find hsn rates: %w", err)
	}
	defer rows.Close()

	out := make([]*entity.HSNRate, 0, len(codes))
	for rows.Next() {
		var h entity.HSNRate
		if err := rows.Scan(&h.HSN, &h.CGST, &h.SGST); err != nil {
			return nil, fmt.Errorf("scan hsn rate: %w", err)
		}
		out = append(out, &h)
	}
	return out, rows.Err()
}

// UpsertMany carga o actualiza tarifas en una sola sentencia.
func (r *HSNRateRepo) UpsertMany(ctx context.Context, rates []entity.HSNRate) (int64, error) {
	if len(rates) == 0 {
		return 0, nil
	}
	codes := make([]string, len(rates))
	cgst := make([]string, len(rates))
	sgst := make([]string, len(rates))
	for i, rt := range rates {
		codes[i], cgst[i], sgst[i] = rt.HSN, rt.CGST.String(), rt.SGST.String()
	}
	tag, err := r.q.Exec(ctx, `
		INSERT INTO hsn_rates (hsn, cgst, sgst)
		SELECT * FROM unnest($1::text[], $2::numeric[], $3::numeric[])
		ON CONFLICT (hsn) DO UPDATE SET cgst = EXCLUDED.cgst, sgst = EXCLUDED.sgst`,
		codes, cgst, sgst)
	if err != nil {
		return 0, fmt.Errorf("upsert hsn rates: %w", err)
	}
	return tag.RowsAffected(), nil
}
