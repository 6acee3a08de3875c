package spreadsheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Cobranzas-api/internal/domain/cobranza"
)

// XLSXReader lee la primera hoja de un libro Excel.
// Las celdas numéricas llegan como float64 sin formato aplicado (una fecha llega como número de serie).
type XLSXReader struct{}

// Read lee el libro desde r.
func (XLSXReader) Read(r io.Reader) (cobranza.RawTable, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return cobranza.RawTable{}, fmt.Errorf("spreadsheet: abrir xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return cobranza.RawTable{}, fmt.Errorf("spreadsheet: leer hoja %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return cobranza.RawTable{}, nil
	}

	b := newTableBuilder(rows[0])
	for i, raw := range rows[1:] {
		cells := make([]any, len(raw))
		for j, val := range raw {
			cells[j] = typedCell(f, sheet, j+1, i+2, val)
		}
		b.add(cells)
	}
	return b.table, nil
}

// typedCell convierte las celdas numéricas en float64; el resto queda como texto.
func typedCell(f *excelize.File, sheet string, col, row int, val string) any {
	if strings.TrimSpace(val) == "" {
		return nil
	}
	ref, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return val
	}
	typ, err := f.GetCellType(sheet, ref)
	if err != nil {
		return val
	}
	if typ == excelize.CellTypeUnset || typ == excelize.CellTypeNumber {
		if n, err := strconv.ParseFloat(val, 64); err == nil {
			return n
		}
	}
	return val
}
