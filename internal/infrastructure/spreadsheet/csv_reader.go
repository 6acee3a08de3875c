package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/jhoicas/Cobranzas-api/internal/domain/cobranza"
	"github.com/jhoicas/Cobranzas-api/pkg/textnorm"
)

// CSVReader lee CSV exportados por el ERP: separador ";" "," o tabulador (se detecta en el encabezado)
// y codificación UTF-8 o Windows-1252. Todos los valores llegan como texto.
type CSVReader struct{}

// Read lee el CSV desde r.
func (CSVReader) Read(r io.Reader) (cobranza.RawTable, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return cobranza.RawTable{}, fmt.Errorf("spreadsheet: leer csv: %w", err)
	}
	data, err := textnorm.ToUTF8(raw)
	if err != nil {
		return cobranza.RawTable{}, fmt.Errorf("spreadsheet: decodificar csv: %w", err)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = sniffDelimiter(data)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return cobranza.RawTable{}, fmt.Errorf("spreadsheet: parsear csv: %w", err)
	}
	if len(records) == 0 {
		return cobranza.RawTable{}, nil
	}

	b := newTableBuilder(records[0])
	for _, rec := range records[1:] {
		cells := make([]any, len(rec))
		for i, v := range rec {
			if strings.TrimSpace(v) != "" {
				cells[i] = v
			}
		}
		b.add(cells)
	}
	return b.table, nil
}

// sniffDelimiter elige el separador más frecuente en la primera línea.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{';', ',', '\t'} {
		if n := strings.Count(string(line), string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
