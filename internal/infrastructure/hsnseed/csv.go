// Package hsnseed carga la tabla de tarifas HSN desde CSV (hsn,cgst,sgst) y genera el SQL de carga.
package hsnseed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/gst-billing-api/internal/domain/entity"
)

// Encodings admitidos para el archivo de entrada.
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "iso-8859-1"
	EncodingCP1252 = "windows-1252"
)

// Parse lee filas hsn,cgst,sgst. La primera fila se omite si no es numérica (cabecera).
// Un HSN repetido conserva la última fila. El resultado se ordena por código.
func Parse(r io.Reader, encoding string) ([]entity.HSNRate, error) {
	switch strings.ToLower(encoding) {
	case "", EncodingUTF8:
	case EncodingLatin1, "latin1":
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	case EncodingCP1252, "cp1252":
		r = transform.NewReader(r, charmap.Windows1252.NewDecoder())
	default:
		return nil, fmt.Errorf("hsnseed: encoding no soportado %q", encoding)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	byCode := make(map[string]entity.HSNRate)
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("hsnseed: leer CSV: %w", err)
		}
		code := strings.TrimSpace(rec[0])
		cgst, errC := decimal.NewFromString(strings.TrimSpace(rec[1]))
		sgst, errS := decimal.NewFromString(strings.TrimSpace(rec[2]))
		if errC != nil || errS != nil {
			if line == 1 {
				continue
			}
			return nil, fmt.Errorf("hsnseed: línea %d: tarifas no numéricas %q, %q", line, rec[1], rec[2])
		}
		if code == "" {
			return nil, fmt.Errorf("hsnseed: línea %d: código HSN vacío", line)
		}
		if cgst.IsNegative() || sgst.IsNegative() {
			return nil, fmt.Errorf("hsnseed: línea %d: tarifa negativa para %s", line, code)
		}
		byCode[code] = entity.HSNRate{HSN: code, CGST: cgst, SGST: sgst}
	}

	out := make([]entity.HSNRate, 0, len(byCode))
	for _, rate := range byCode {
		out = append(out, rate)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HSN < out[j].HSN })
	return out, nil
}

// WriteSQL escribe un upsert idempotente sobre hsn_rates.
func WriteSQL(w io.Writer, rates []entity.HSNRate) error {
	if len(rates) == 0 {
		return errors.New("hsnseed: no hay tarifas para escribir")
	}
	var b strings.Builder
	b.WriteString("-- Tarifas CGST/SGST por código HSN\n")
	b.WriteString("INSERT INTO hsn_rates (hsn, cgst, sgst) VALUES\n")
	for i, r := range rates {
		fmt.Fprintf(&b, "  ('%s', %s, %s)", escapeSQL(r.HSN), r.CGST.String(), r.SGST.String())
		if i < len(rates)-1 {
			b.WriteString(",\n")
		} else {
			b.WriteString("\n")
		}
	}
	b.WriteString("ON CONFLICT (hsn) DO UPDATE SET cgst = EXCLUDED.cgst, sgst = EXCLUDED.sgst;\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
