package consolidation_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Cobranzas-api/internal/application/consolidation"
	"github.com/jhoicas/Cobranzas-api/internal/application/dto"
	"github.com/jhoicas/Cobranzas-api/internal/domain"
	"github.com/jhoicas/Cobranzas-api/internal/domain/cobranza"
	"github.com/jhoicas/Cobranzas-api/internal/domain/entity"
	"github.com/jhoicas/Cobranzas-api/internal/infrastructure/memory"
	"github.com/jhoicas/Cobranzas-api/pkg/money"
)

// ── fakes de exportación ──────────────────────────────────────────────────────

type fakeReader struct {
	table cobranza.RawTable
	err   error
}

func (r fakeReader) ReadTable(string, io.Reader) (cobranza.RawTable, error) { return r.table, r.err }

type fakeWriter struct{}

func (fakeWriter) WriteSummary(w io.Writer, rows []consolidation.SummaryRow) error {
	for _, r := range rows {
		if _, err := io.WriteString(w, strings.Join(r.Values(), ";")+"\n"); err != nil {
			return err
		}
	}
	return nil
}

type fakeReport struct{}

func (fakeReport) GenerateBatchReport(_ context.Context, b *entity.Batch, _ []consolidation.SummaryRow) ([]byte, error) {
	return []byte("REPORT " + b.ID), nil
}

type fakeArchive struct {
	names []string
}

func (a *fakeArchive) Build(files []consolidation.ArchiveFile) ([]byte, error) {
	for _, f := range files {
		a.names = append(a.names, f.Name)
	}
	return []byte("ZIP"), nil
}

// ── escenario ─────────────────────────────────────────────────────────────────

func holdingTable() cobranza.RawTable {
	return cobranza.RawTable{
		Headers: []string{"Telefone", "CNPJ", "Cliente", "Valor_Atualizado", "Data_Vencimento", "Link_1"},
		Rows: []cobranza.RawRow{
			{"Telefone": "555", "CNPJ": "A", "Cliente": "Loja A", "Valor_Atualizado": "100,00", "Data_Vencimento": "10/03/2025", "Link_1": "u1"},
			{"Telefone": "555", "CNPJ": "B", "Cliente": "Loja B", "Valor_Atualizado": "50,00", "Data_Vencimento": "10/03/2025", "Link_1": "u2"},
			{"Telefone": "777", "CNPJ": "C", "Cliente": "Loja C", "Valor_Atualizado": "xx", "Data_Vencimento": "10/04/2025", "Link_1": "u3"},
		},
	}
}

type fixture struct {
	process *consolidation.ProcessUseCase
	export  *consolidation.ExportUseCase
	archive *fakeArchive
}

func newFixture(reader consolidation.TableReader) fixture {
	fetcher := &fakeFetcher{docs: map[string][]byte{"u1": []byte("D1"), "u2": []byte("D2")}}
	cons := consolidation.NewConsolidator(fetcher, &fakeMerger{}, nil)
	repo := memory.NewBatchRepository()
	arch := &fakeArchive{}
	return fixture{
		process: consolidation.NewProcessUseCase(reader, cons, repo, consolidation.IngestOptions{CurrencyFormat: money.FormatBR}, nil),
		export:  consolidation.NewExportUseCase(repo, fakeWriter{}, fakeReport{}, arch),
		archive: arch,
	}
}

func TestProcess_HoldingActivada(t *testing.T) {
	fx := newFixture(nil)

	batch, err := fx.process.Process(context.Background(), consolidation.ProcessInput{
		SourceName: "cobranca.xlsx", Table: holdingTable(), HoldingMerge: true,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, batch.ID)
	assert.Equal(t, 3, batch.RecordCount)
	require.Len(t, batch.Groups, 2)
	assert.Equal(t, "TEL_555", batch.Groups[0].Key)
	assert.True(t, decimal.NewFromInt(150).Equal(batch.Groups[0].TotalAmount))
	assert.Len(t, batch.Warnings, 1, "monto ilegible de la fila 3")

	res := batch.Results["TEL_555"]
	assert.Equal(t, entity.ConsolidationMerged, res.State)
	assert.Equal(t, []byte("D1|D2"), res.MergedDocument)
	assert.Equal(t, entity.ConsolidationEmpty, batch.Results["TEL_777"].State, "u3 no descarga")

	stored, err := fx.export.Get(context.Background(), batch.ID)
	require.NoError(t, err)
	assert.Equal(t, batch.ID, stored.ID)
}

func TestProcess_HoldingDesactivada(t *testing.T) {
	fx := newFixture(nil)

	batch, err := fx.process.Process(context.Background(), consolidation.ProcessInput{Table: holdingTable()})
	require.NoError(t, err)

	keys := make([]string, 0, len(batch.Groups))
	for _, g := range batch.Groups {
		keys = append(keys, g.Key)
	}
	assert.Equal(t, []string{"CNPJ_A", "CNPJ_B", "CNPJ_C"}, keys)
}

func TestProcess_SchemaErrorAbortaSinGuardar(t *testing.T) {
	fx := newFixture(nil)
	table := cobranza.RawTable{Headers: []string{"Telefone"}, Rows: []cobranza.RawRow{{"Telefone": "1"}}}

	_, err := fx.process.Process(context.Background(), consolidation.ProcessInput{Table: table})
	require.Error(t, err)

	var schemaErr *domain.SchemaError
	assert.True(t, errors.As(err, &schemaErr))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err := fx.export.List(context.Background(), dto.PageRequest{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestProcess_PresetDesconocido(t *testing.T) {
	fx := newFixture(nil)
	_, err := fx.process.Process(context.Background(), consolidation.ProcessInput{Table: holdingTable(), Preset: "sap"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProcessUpload_UsaLectorYHoldingPorDefecto(t *testing.T) {
	fx := newFixture(fakeReader{table: holdingTable()})
	off := false

	batch, err := fx.process.ProcessUpload(context.Background(), consolidation.UploadInput{
		FileName: "x.xlsx", Content: bytes.NewReader(nil), HoldingMerge: &off,
	})
	require.NoError(t, err)
	assert.Equal(t, "x.xlsx", batch.SourceName)
	assert.False(t, batch.HoldingMerge)
	assert.Len(t, batch.Groups, 3)

	fxErr := newFixture(fakeReader{err: errors.New("zip: not a valid zip file")})
	_, err = fxErr.process.ProcessUpload(context.Background(), consolidation.UploadInput{FileName: "x.xlsx", Content: bytes.NewReader(nil)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMapping_ReemplazosDeConfiguracion(t *testing.T) {
	uc := consolidation.NewProcessUseCase(nil, nil, nil, consolidation.IngestOptions{
		DocumentPrefix: "URL_", DocumentColumns: []string{"Boleto"},
	}, nil)

	m, err := uc.Mapping("")
	require.NoError(t, err)
	assert.Equal(t, "URL_", m.DocumentPrefix)
	assert.Equal(t, []string{"Boleto"}, m.DocumentColumns)
	assert.Equal(t, "Valor_Atualizado", m.Amount, "preset waba por defecto")
}

// ── exportación ───────────────────────────────────────────────────────────────

func TestExport_SummaryYDocumentos(t *testing.T) {
	fx := newFixture(nil)
	ctx := context.Background()
	batch, err := fx.process.Process(ctx, consolidation.ProcessInput{Table: holdingTable(), HoldingMerge: true})
	require.NoError(t, err)

	rows, err := fx.export.Summary(ctx, batch.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "555", rows[0].Phone)
	assert.Equal(t, "R$ 150,00", rows[0].AmountText)
	assert.Equal(t, "10/03/2025", rows[0].DueDate)
	assert.Equal(t, "555_unificado.pdf", rows[0].DocumentFile)
	assert.Equal(t, "2 de 2", rows[0].Documents)
	assert.Equal(t, "", rows[1].DocumentFile, "grupo sin PDF")
	assert.Equal(t, "0 de 1", rows[1].Documents)

	doc, name, err := fx.export.GroupDocument(ctx, batch.ID, "TEL_555")
	require.NoError(t, err)
	assert.Equal(t, "555_unificado.pdf", name)
	assert.Equal(t, []byte("D1|D2"), doc)

	_, _, err = fx.export.GroupDocument(ctx, batch.ID, "TEL_777")
	assert.ErrorIs(t, err, domain.ErrNoDocuments)
	_, _, err = fx.export.GroupDocument(ctx, batch.ID, "TEL_000")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, _, err = fx.export.GroupDocument(ctx, "no-existe", "TEL_555")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestExport_ArchivoYPlanilla(t *testing.T) {
	fx := newFixture(nil)
	ctx := context.Background()
	batch, err := fx.process.Process(ctx, consolidation.ProcessInput{Table: holdingTable(), HoldingMerge: true})
	require.NoError(t, err)

	xlsx, name, err := fx.export.SummaryXLSX(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, consolidation.SummaryFileName, name)
	assert.Contains(t, string(xlsx), "555;R$ 150,00;10/03/2025;555_unificado.pdf;TEL_555;Loja A;2 de 2")

	report, _, err := fx.export.ReportPDF(ctx, batch.ID)
	require.NoError(t, err)
	assert.Equal(t, "REPORT "+batch.ID, string(report))

	_, zipName, err := fx.export.Archive(ctx, batch.ID)
	require.NoError(t, err)
	assert.Contains(t, zipName, batch.ID)
	assert.Equal(t, []string{"Output_WABA.xlsx", "relatorio.pdf", "pdfs/555_unificado.pdf"}, fx.archive.names)
}

func TestDocumentFileName_SanitizaCNPJ(t *testing.T) {
	assert.Equal(t, "CNPJ_12_345_678_0001-90_unificado.pdf", consolidation.DocumentFileName("CNPJ_12.345.678/0001-90"))
	assert.Equal(t, "5511999990000_unificado.pdf", consolidation.DocumentFileName("TEL_5511999990000"))
}

func TestToBatchResponse(t *testing.T) {
	fx := newFixture(nil)
	batch, err := fx.process.Process(context.Background(), consolidation.ProcessInput{Table: holdingTable(), HoldingMerge: true})
	require.NoError(t, err)

	resp := consolidation.ToBatchResponse(batch)
	assert.Equal(t, 2, resp.GroupCount)
	assert.Equal(t, "R$ 150,00", resp.TotalFormatted)
	assert.Equal(t, 3, resp.DocumentsAttempted)
	assert.Equal(t, 2, resp.DocumentsIncluded)
	require.Len(t, resp.Groups, 2)
	assert.True(t, resp.Groups[0].Holding)
	assert.Equal(t, "MERGED", resp.Groups[0].Consolidation.State)
	assert.Equal(t, "555_unificado.pdf", resp.Groups[0].Consolidation.DocumentFile)
	require.Len(t, resp.Groups[1].Consolidation.FetchFailures, 1)
}

func TestExport_GroupDocumentPorPosicion(t *testing.T) {
	fx := newFixture(nil)
	ctx := context.Background()
	batch, err := fx.process.Process(ctx, consolidation.ProcessInput{Table: holdingTable(), HoldingMerge: true})
	require.NoError(t, err)

	doc, name, err := fx.export.GroupDocument(ctx, batch.ID, "0")
	require.NoError(t, err)
	assert.Equal(t, "555_unificado.pdf", name)
	assert.Equal(t, []byte("D1|D2"), doc)

	_, _, err = fx.export.GroupDocument(ctx, batch.ID, "9")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentFileNames_ColisionRecibeSufijo(t *testing.T) {
	ok := entity.ConsolidationResult{SucceededCount: 1, AttemptedCount: 1, MergedDocument: []byte("D")}
	batch := &entity.Batch{
		Groups: []entity.CustomerGroup{{Key: "CNPJ_A/B"}, {Key: "CNPJ_A.B"}, {Key: "CNPJ_C"}},
		Results: map[string]entity.ConsolidationResult{
			"CNPJ_A/B": ok,
			"CNPJ_A.B": ok,
		},
	}

	names := consolidation.DocumentFileNames(batch)
	assert.Equal(t, "CNPJ_A_B_unificado.pdf", names["CNPJ_A/B"])
	assert.Equal(t, "CNPJ_A_B_2_unificado.pdf", names["CNPJ_A.B"])
	assert.NotContains(t, names, "CNPJ_C", "sin documento no hay archivo")
}
