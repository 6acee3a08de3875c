package spreadsheet

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/Cobranzas-api/internal/application/consolidation"
)

// OutputSheet nombre de la hoja de Output_WABA.xlsx.
const OutputSheet = "Sheet1"

// OutputWriter escribe la planilla Output_WABA.xlsx (una fila por grupo).
type OutputWriter struct{}

var _ consolidation.SummaryWriter = OutputWriter{}

// WriteSummary escribe encabezado y filas en w.
func (OutputWriter) WriteSummary(w io.Writer, rows []consolidation.SummaryRow) error {
	f := excelize.NewFile()
	defer f.Close()

	header := make([]any, len(consolidation.SummaryHeaders))
	for i, h := range consolidation.SummaryHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(OutputSheet, "A1", &header); err != nil {
		return fmt.Errorf("spreadsheet: encabezado: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("spreadsheet: estilo: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(OutputSheet, "A1", last, bold); err != nil {
		return fmt.Errorf("spreadsheet: estilo: %w", err)
	}

	for i, r := range rows {
		values := r.Values()
		cells := make([]any, len(values))
		for j, v := range values {
			cells[j] = v
		}
		ref, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(OutputSheet, ref, &cells); err != nil {
			return fmt.Errorf("spreadsheet: fila %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(OutputSheet, "A", "A", 18); err != nil {
		return fmt.Errorf("spreadsheet: ancho de columnas: %w", err)
	}
	if err := f.SetColWidth(OutputSheet, "B", "G", 22); err != nil {
		return fmt.Errorf("spreadsheet: ancho de columnas: %w", err)
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("spreadsheet: escribir xlsx: %w", err)
	}
	return nil
}
