package consolidation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jhoicas/Cobranzas-api/internal/application/dto"
	"github.com/jhoicas/Cobranzas-api/internal/domain"
	"github.com/jhoicas/Cobranzas-api/internal/domain/entity"
	"github.com/jhoicas/Cobranzas-api/internal/domain/repository"
)

// ExportUseCase consulta lotes guardados y genera sus archivos de salida.
type ExportUseCase struct {
	repo    repository.BatchRepository
	writer  SummaryWriter
	report  ReportGenerator
	archive ArchiveBuilder
}

// NewExportUseCase construye el caso de uso inyectando sus dependencias.
func NewExportUseCase(
	repo repository.BatchRepository,
	writer SummaryWriter,
	report ReportGenerator,
	archive ArchiveBuilder,
) *ExportUseCase {
	return &ExportUseCase{repo: repo, writer: writer, report: report, archive: archive}
}

// Get devuelve un lote o domain.ErrNotFound.
func (uc *ExportUseCase) Get(ctx context.Context, id string) (*entity.Batch, error) {
	b, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("export: obtener lote: %w", err)
	}
	if b == nil {
		return nil, domain.ErrNotFound
	}
	return b, nil
}

// List lista los lotes más recientes primero.
func (uc *ExportUseCase) List(ctx context.Context, page dto.PageRequest) ([]dto.BatchListItem, error) {
	page.DefaultPage()
	batches, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, fmt.Errorf("export: listar lotes: %w", err)
	}
	out := make([]dto.BatchListItem, 0, len(batches))
	for _, b := range batches {
		out = append(out, ToBatchListItem(b))
	}
	return out, nil
}

// Delete elimina un lote y sus documentos. domain.ErrNotFound si no existe.
func (uc *ExportUseCase) Delete(ctx context.Context, id string) error {
	if err := uc.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return fmt.Errorf("export: eliminar lote: %w", err)
	}
	return nil
}

// Summary filas de Output_WABA de un lote.
func (uc *ExportUseCase) Summary(ctx context.Context, id string) ([]SummaryRow, error) {
	b, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return BuildSummaryRows(b), nil
}

// SummaryXLSX genera Output_WABA.xlsx de un lote.
func (uc *ExportUseCase) SummaryXLSX(ctx context.Context, id string) ([]byte, string, error) {
	b, err := uc.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	data, err := uc.summaryXLSX(b)
	if err != nil {
		return nil, "", err
	}
	return data, SummaryFileName, nil
}

// ReportPDF genera el reporte PDF del lote.
func (uc *ExportUseCase) ReportPDF(ctx context.Context, id string) ([]byte, string, error) {
	b, err := uc.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	data, err := uc.report.GenerateBatchReport(ctx, b, BuildSummaryRows(b))
	if err != nil {
		return nil, "", fmt.Errorf("export: generar reporte: %w", err)
	}
	return data, ReportFileName, nil
}

// GroupDocument PDF consolidado de un grupo. key es la clave del grupo o su posición (0-based)
// en el lote; las claves siempre llevan prefijo, así que un número nunca choca con una clave.
//
// Retorna:
//   - domain.ErrNotFound     si el lote o el grupo no existen.
//   - domain.ErrNoDocuments  si el grupo terminó en EMPTY.
func (uc *ExportUseCase) GroupDocument(ctx context.Context, id, key string) ([]byte, string, error) {
	b, err := uc.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	g, ok := b.Group(key)
	if !ok {
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(b.Groups) {
			return nil, "", domain.ErrNotFound
		}
		g = &b.Groups[i]
	}
	key = g.Key
	res := b.Results[key]
	if !res.HasDocument() {
		return nil, "", domain.ErrNoDocuments
	}
	return res.MergedDocument, DocumentFileNames(b)[key], nil
}

// Archive empaqueta Output_WABA.xlsx, relatorio.pdf y el PDF de cada grupo con documento.
func (uc *ExportUseCase) Archive(ctx context.Context, id string) ([]byte, string, error) {
	b, err := uc.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	files, err := uc.ExportFiles(ctx, b)
	if err != nil {
		return nil, "", err
	}
	data, err := uc.archive.Build(files)
	if err != nil {
		return nil, "", fmt.Errorf("export: empaquetar: %w", err)
	}
	return data, fmt.Sprintf("cobranzas_%s.zip", b.ID), nil
}

// ExportFiles arma todos los archivos de salida de un lote (usado por el ZIP y por la CLI).
func (uc *ExportUseCase) ExportFiles(ctx context.Context, b *entity.Batch) ([]ArchiveFile, error) {
	rows := BuildSummaryRows(b)

	summary, err := uc.summaryXLSX(b)
	if err != nil {
		return nil, err
	}
	files := []ArchiveFile{{Name: SummaryFileName, Data: summary}}

	report, err := uc.report.GenerateBatchReport(ctx, b, rows)
	if err != nil {
		return nil, fmt.Errorf("export: generar reporte: %w", err)
	}
	files = append(files, ArchiveFile{Name: ReportFileName, Data: report})

	names := DocumentFileNames(b)
	for _, g := range b.Groups {
		name, ok := names[g.Key]
		if !ok {
			continue
		}
		files = append(files, ArchiveFile{Name: "pdfs/" + name, Data: b.Results[g.Key].MergedDocument})
	}
	return files, nil
}

func (uc *ExportUseCase) summaryXLSX(b *entity.Batch) ([]byte, error) {
	var buf bytes.Buffer
	if err := uc.writer.WriteSummary(&buf, BuildSummaryRows(b)); err != nil {
		return nil, fmt.Errorf("export: escribir planilla: %w", err)
	}
	return buf.Bytes(), nil
}
