package consolidation

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Cobranzas-api/internal/domain"
	"github.com/jhoicas/Cobranzas-api/internal/domain/cobranza"
	"github.com/jhoicas/Cobranzas-api/internal/domain/entity"
	"github.com/jhoicas/Cobranzas-api/internal/domain/repository"
	"github.com/jhoicas/Cobranzas-api/pkg/logger"
	"github.com/jhoicas/Cobranzas-api/pkg/money"
)

// IngestOptions cómo interpretar las planillas de entrada.
type IngestOptions struct {
	Preset          string       // preset por defecto (waba | portal)
	CurrencyFormat  money.Format // formato de montos en texto
	DocumentPrefix  string       // si no está vacío, reemplaza el prefijo del preset
	DocumentColumns []string     // si no está vacío, reemplaza las columnas del preset
	HoldingMerge    bool         // valor por defecto cuando la carga no lo indica
}

// ProcessInput una tabla ya leída a procesar.
type ProcessInput struct {
	SourceName   string
	Table        cobranza.RawTable
	HoldingMerge bool
	Preset       string // vacío = IngestOptions.Preset
}

// UploadInput un archivo subido (xlsx/csv) a procesar.
type UploadInput struct {
	FileName     string
	Content      io.Reader
	HoldingMerge *bool // nil = IngestOptions.HoldingMerge
	Preset       string
}

// ProcessUseCase ejecuta el pipeline completo: normalizar → agrupar → consolidar → guardar.
type ProcessUseCase struct {
	reader       TableReader
	consolidator *Consolidator
	repo         repository.BatchRepository
	opts         IngestOptions
	log          *logger.Logger
	now          func() time.Time
}

// NewProcessUseCase construye el caso de uso inyectando sus dependencias.
func NewProcessUseCase(
	reader TableReader,
	consolidator *Consolidator,
	repo repository.BatchRepository,
	opts IngestOptions,
	log *logger.Logger,
) *ProcessUseCase {
	if log == nil {
		log = logger.Nop()
	}
	if opts.Preset == "" {
		opts.Preset = cobranza.PresetNameWABA
	}
	return &ProcessUseCase{
		reader:       reader,
		consolidator: consolidator,
		repo:         repo,
		opts:         opts,
		log:          log.Component("process"),
		now:          time.Now,
	}
}

// Mapping devuelve el mapeo de columnas de un preset con los reemplazos de configuración aplicados.
func (uc *ProcessUseCase) Mapping(preset string) (cobranza.ColumnMapping, error) {
	if preset == "" {
		preset = uc.opts.Preset
	}
	m, err := cobranza.Preset(preset)
	if err != nil {
		return cobranza.ColumnMapping{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if uc.opts.DocumentPrefix != "" {
		m.DocumentPrefix = uc.opts.DocumentPrefix
	}
	if len(uc.opts.DocumentColumns) > 0 {
		m.DocumentColumns = append([]string(nil), uc.opts.DocumentColumns...)
	}
	return m, nil
}

// ProcessUpload lee el archivo subido y lo procesa.
//
// Retorna:
//   - domain.ErrInvalidInput  si el archivo no se puede leer o el preset no existe.
//   - *domain.SchemaError     si faltan columnas obligatorias (envuelve ErrInvalidInput).
func (uc *ProcessUseCase) ProcessUpload(ctx context.Context, in UploadInput) (*entity.Batch, error) {
	if in.Content == nil {
		return nil, fmt.Errorf("%w: archivo vacío", domain.ErrInvalidInput)
	}
	table, err := uc.reader.ReadTable(in.FileName, in.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: leer planilla: %v", domain.ErrInvalidInput, err)
	}
	holding := uc.opts.HoldingMerge
	if in.HoldingMerge != nil {
		holding = *in.HoldingMerge
	}
	return uc.Process(ctx, ProcessInput{
		SourceName:   in.FileName,
		Table:        table,
		HoldingMerge: holding,
		Preset:       in.Preset,
	})
}

// Process normaliza la tabla, agrupa, consolida los documentos de cada grupo y guarda el lote.
// Un SchemaError aborta todo el archivo: no hay procesamiento parcial.
func (uc *ProcessUseCase) Process(ctx context.Context, in ProcessInput) (*entity.Batch, error) {
	// ── 1. Normalizar ─────────────────────────────────────────────────────────
	mapping, err := uc.Mapping(in.Preset)
	if err != nil {
		return nil, err
	}
	normalizer := cobranza.NewNormalizer(mapping, uc.opts.CurrencyFormat)
	records, warnings, err := normalizer.NormalizeAll(in.Table)
	if err != nil {
		uc.log.Warn().Err(err).Str("source", in.SourceName).Msg("planilla rechazada")
		return nil, fmt.Errorf("consolidation: normalizar: %w", err)
	}
	for _, w := range warnings {
		uc.log.Debug().Int("row", w.RowIndex).Str("column", w.Column).Str("value", w.Value).Msg(w.Reason)
	}

	// ── 2. Agrupar (termina antes de consolidar: la holding cambia la composición) ──
	groups := cobranza.Engine{HoldingMerge: in.HoldingMerge}.Group(records)

	// ── 3. Consolidar documentos ──────────────────────────────────────────────
	results := uc.consolidator.ConsolidateAll(ctx, groups)

	batch := &entity.Batch{
		ID:           uuid.NewString(),
		SourceName:   in.SourceName,
		CreatedAt:    uc.now().UTC(),
		HoldingMerge: in.HoldingMerge,
		RecordCount:  len(records),
		Warnings:     warnings,
		Groups:       groups,
		Results:      make(map[string]entity.ConsolidationResult, len(results)),
	}
	for _, r := range results {
		batch.Results[r.GroupKey] = r
	}

	// ── 4. Guardar ────────────────────────────────────────────────────────────
	if err := uc.repo.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("consolidation: guardar lote: %w", err)
	}

	attempted, succeeded := batch.DocumentStats()
	uc.log.Info().
		Str("batch", batch.ID).
		Str("source", in.SourceName).
		Int("records", batch.RecordCount).
		Int("groups", len(groups)).
		Int("warnings", len(warnings)).
		Int("documents_attempted", attempted).
		Int("documents_included", succeeded).
		Msg("lote procesado")
	return batch, nil
}
