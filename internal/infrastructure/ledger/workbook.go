package ledger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/gst-billing-api/internal/domain/entity"
)

// Columns encabezados del libro, en orden.
var Columns = []string{
	"InvoiceNumber",
	"Date",
	"CustomerName",
	"customerPhoneNumber",
	"CustomerGstNumber",
	"TotalAmount",
	"CGST",
	"SGST",
	"FinalAmount",
	"PdfPath",
}

func toRow(h *entity.InvoiceHistory) []interface{} {
	return []interface{}{
		h.InvoiceNumber,
		h.Date.Format("2006-01-02"),
		h.CustomerName,
		h.CustomerPhoneNumber,
		h.CustomerGSTNumber,
		h.TotalAmount.InexactFloat64(),
		h.CGST.InexactFloat64(),
		h.SGST.InexactFloat64(),
		h.FinalAmount.InexactFloat64(),
		h.PDFPath,
	}
}

// rowFor devuelve la fila (1-based) para el número de factura: la existente o la siguiente libre.
// rows incluye el encabezado en la posición 0.
func rowFor(rows [][]string, invoiceNumber string) int {
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) > 0 && rows[i][0] == invoiceNumber {
			return i + 1
		}
	}
	if len(rows) == 0 {
		return 2
	}
	return len(rows) + 1
}

// upsertFile abre (o crea) el libro, inserta o reemplaza la fila del registro y guarda.
func upsertFile(path, sheet string, h *entity.InvoiceHistory) error {
	f, err := openOrCreate(path, sheet)
	if err != nil {
		return err
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return fmt.Errorf("libro: hoja %q: %w", sheet, err)
	}
	if idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("libro: crear hoja %q: %w", sheet, err)
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("libro: leer filas: %w", err)
	}
	if len(rows) == 0 {
		header := make([]interface{}, len(Columns))
		for i, c := range Columns {
			header[i] = c
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("libro: encabezado: %w", err)
		}
	}

	cell, err := excelize.CoordinatesToCellName(1, rowFor(rows, h.InvoiceNumber))
	if err != nil {
		return err
	}
	row := toRow(h)
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("libro: escribir fila %s: %w", cell, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("libro: directorio: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("libro: guardar %s: %w", path, err)
	}
	return nil
}

func openOrCreate(path, sheet string) (*excelize.File, error) {
	f, err := excelize.OpenFile(path)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("libro: abrir %s: %w", path, err)
	}
	f = excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("libro: renombrar hoja: %w", err)
	}
	return f, nil
}
