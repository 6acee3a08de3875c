package consolidation

import (
	"context"
	"io"

	"github.com/jhoicas/Cobranzas-api/internal/domain/cobranza"
	"github.com/jhoicas/Cobranzas-api/internal/domain/entity"
)

// DocumentFetcher descarga los bytes de un documento. Un único intento, tiempo acotado por la implementación.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// DocumentMerger concatena documentos en el orden recibido y devuelve un único documento.
// Falla si algún documento impide la concatenación (ej. PDF corrupto).
type DocumentMerger interface {
	Merge(ctx context.Context, docs [][]byte) ([]byte, error)
}

// TableReader lee una planilla (xlsx/csv) y devuelve la tabla cruda.
type TableReader interface {
	ReadTable(name string, r io.Reader) (cobranza.RawTable, error)
}

// SummaryWriter escribe la planilla de salida (Output_WABA.xlsx).
type SummaryWriter interface {
	WriteSummary(w io.Writer, rows []SummaryRow) error
}

// ReportGenerator genera el PDF de reporte de un lote.
type ReportGenerator interface {
	GenerateBatchReport(ctx context.Context, batch *entity.Batch, rows []SummaryRow) ([]byte, error)
}

// ArchiveFile entrada del paquete ZIP de exportación.
type ArchiveFile struct {
	Name string
	Data []byte
}

// ArchiveBuilder empaqueta archivos en un ZIP.
type ArchiveBuilder interface {
	Build(files []ArchiveFile) ([]byte, error)
}
