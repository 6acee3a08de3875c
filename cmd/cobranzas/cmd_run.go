package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jhoicas/Cobranzas-api/internal/application/consolidation"
	"github.com/jhoicas/Cobranzas-api/internal/infrastructure/archive"
	"github.com/jhoicas/Cobranzas-api/internal/infrastructure/fetch"
	"github.com/jhoicas/Cobranzas-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Cobranzas-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Cobranzas-api/internal/infrastructure/spreadsheet"
	"github.com/jhoicas/Cobranzas-api/pkg/config"
	"github.com/jhoicas/Cobranzas-api/pkg/logger"
	"github.com/jhoicas/Cobranzas-api/pkg/money"
)

var (
	runInput   string
	runOut     string
	runPreset  string
	runHolding bool
	runZip     bool
)

// runCmd procesa una planilla local.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Procesa una planilla y escribe los archivos de salida",
	Long: `Lee la planilla (xlsx o csv), agrupa por cliente lógico, descarga y une los
documentos de cada grupo y escribe en --out:

  Output_WABA.xlsx            una fila por grupo
  relatorio.pdf               reporte del lote
  pdfs/<telefone>_unificado.pdf

La configuración de descarga y de columnas se lee igual que en el API (env / .env).`,
	RunE: runProcess,
}

func init() {
	runCmd.Flags().StringVarP(&runInput, "input", "i", "", "planilla de entrada (.xlsx, .xlsm, .csv)")
	runCmd.Flags().StringVarP(&runOut, "out", "o", "saida", "directorio de salida")
	runCmd.Flags().StringVar(&runPreset, "preset", "", "mapeo de columnas (waba | portal); vacío = INGEST_PRESET")
	runCmd.Flags().BoolVar(&runHolding, "holding", true, "fusiona CNPJs que comparten teléfono")
	runCmd.Flags().BoolVar(&runZip, "zip", false, "escribe además cobranzas_<lote>.zip")
	_ = runCmd.MarkFlagRequired("input")
}

func runProcess(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(logger.Config{Env: env, Level: logLevel, Out: os.Stderr})

	currency, err := money.ParseFormat(cfg.Ingest.CurrencyFormat)
	if err != nil {
		return err
	}

	f, err := os.Open(runInput)
	if err != nil {
		return fmt.Errorf("abrir planilla: %w", err)
	}
	defer f.Close()

	repo := memory.NewBatchRepository()
	fetcher := fetch.NewHTTPFetcher(fetch.Options{
		Timeout:    cfg.Fetch.Timeout(),
		MaxBytes:   cfg.Fetch.MaxBytes,
		RequirePDF: cfg.Fetch.RequirePDF,
		UserAgent:  cfg.Fetch.UserAgent,
	})
	process := consolidation.NewProcessUseCase(
		spreadsheet.NewReader(),
		consolidation.NewConsolidator(fetcher, infrapdf.NewPDFCPUMerger(), log),
		repo,
		consolidation.IngestOptions{
			Preset:          cfg.Ingest.Preset,
			CurrencyFormat:  currency,
			DocumentPrefix:  cfg.Ingest.DocumentPrefix,
			DocumentColumns: cfg.Ingest.DocumentColumns,
		},
		log,
	)
	export := consolidation.NewExportUseCase(repo, spreadsheet.OutputWriter{},
		infrapdf.NewMarotoReportGenerator(cfg.App.Name), archive.NewZipBuilder())

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	holding := runHolding
	batch, err := process.ProcessUpload(ctx, consolidation.UploadInput{
		FileName:     filepath.Base(runInput),
		Content:      f,
		HoldingMerge: &holding,
		Preset:       runPreset,
	})
	if err != nil {
		return err
	}

	files, err := export.ExportFiles(ctx, batch)
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := writeOutput(runOut, file.Name, file.Data); err != nil {
			return err
		}
	}
	if runZip {
		data, name, err := export.Archive(ctx, batch.ID)
		if err != nil {
			return err
		}
		if err := writeOutput(runOut, name, data); err != nil {
			return err
		}
	}

	attempted, succeeded := batch.DocumentStats()
	fmt.Fprintf(cmd.OutOrStdout(), "lote %s: %d registros, %d grupos, %d/%d documentos -> %s\n",
		batch.ID, batch.RecordCount, len(batch.Groups), succeeded, attempted, runOut)
	return nil
}

func writeOutput(dir, name string, data []byte) error {
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("crear directorio: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("escribir %s: %w", name, err)
	}
	return nil
}
