// Package spreadsheet lee las planillas del ERP (xlsx/csv) y escribe la planilla de salida.
package spreadsheet

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jhoicas/Cobranzas-api/internal/application/consolidation"
	"github.com/jhoicas/Cobranzas-api/internal/domain/cobranza"
)

// Reader elige el lector según la extensión del archivo.
type Reader struct {
	xlsx XLSXReader
	csv  CSVReader
}

var _ consolidation.TableReader = (*Reader)(nil)

// NewReader construye el lector de planillas.
func NewReader() *Reader {
	return &Reader{}
}

// ReadTable lee name desde r. Extensiones soportadas: .xlsx, .xlsm, .csv, .txt.
func (r *Reader) ReadTable(name string, in io.Reader) (cobranza.RawTable, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".xlsx", ".xlsm":
		return r.xlsx.Read(in)
	case ".csv", ".txt":
		return r.csv.Read(in)
	default:
		return cobranza.RawTable{}, fmt.Errorf("spreadsheet: extensión no soportada %q", ext)
	}
}

// tableBuilder arma la tabla a partir de filas de celdas ya tipadas.
// La primera fila es el encabezado; columnas sin nombre se ignoran y un
// nombre repetido conserva la primera columna. Las filas completamente vacías se omiten.
type tableBuilder struct {
	table   cobranza.RawTable
	columns []int // índice de celda → posición en Headers (-1 = ignorada)
}

func newTableBuilder(header []string) *tableBuilder {
	b := &tableBuilder{columns: make([]int, len(header))}
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" || seen[h] {
			b.columns[i] = -1
			continue
		}
		seen[h] = true
		b.columns[i] = len(b.table.Headers)
		b.table.Headers = append(b.table.Headers, h)
	}
	return b
}

func (b *tableBuilder) add(cells []any) {
	row := make(cobranza.RawRow, len(b.table.Headers))
	empty := true
	for i, v := range cells {
		if i >= len(b.columns) || b.columns[i] < 0 {
			continue
		}
		if v != nil {
			empty = false
		}
		row[b.table.Headers[b.columns[i]]] = v
	}
	if empty {
		return
	}
	for _, h := range b.table.Headers {
		if _, ok := row[h]; !ok {
			row[h] = nil
		}
	}
	b.table.Rows = append(b.table.Rows, row)
}
