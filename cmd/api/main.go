package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/Cobranzas-api/internal/application/consolidation"
	"github.com/jhoicas/Cobranzas-api/internal/domain/repository"
	"github.com/jhoicas/Cobranzas-api/internal/infrastructure/archive"
	"github.com/jhoicas/Cobranzas-api/internal/infrastructure/fetch"
	"github.com/jhoicas/Cobranzas-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/Cobranzas-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Cobranzas-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Cobranzas-api/internal/infrastructure/spreadsheet"
	httpRouter "github.com/jhoicas/Cobranzas-api/internal/interfaces/http"
	"github.com/jhoicas/Cobranzas-api/pkg/config"
	"github.com/jhoicas/Cobranzas-api/pkg/logger"
	"github.com/jhoicas/Cobranzas-api/pkg/money"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET requerido")
	}
	currency, err := money.ParseFormat(cfg.Ingest.CurrencyFormat)
	if err != nil {
		log.Fatal().Err(err).Msg("INGEST_CURRENCY_FORMAT inválido")
	}

	ctx := context.Background()

	// Almacenamiento de lotes: memoria (por defecto) o PostgreSQL
	var batchRepo repository.BatchRepository
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB, log)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			log.Fatal().Err(err).Msg("crear esquema")
		}
		batchRepo = postgres.NewBatchRepository(pool)
	default:
		batchRepo = memory.NewBatchRepository()
	}

	// Consolidación: descarga HTTP + unión con pdfcpu
	fetcher := fetch.NewHTTPFetcher(fetch.Options{
		Timeout:    cfg.Fetch.Timeout(),
		MaxBytes:   cfg.Fetch.MaxBytes,
		RequirePDF: cfg.Fetch.RequirePDF,
		UserAgent:  cfg.Fetch.UserAgent,
	})
	consolidator := consolidation.NewConsolidator(fetcher, infrapdf.NewPDFCPUMerger(), log)

	processUC := consolidation.NewProcessUseCase(
		spreadsheet.NewReader(), consolidator, batchRepo,
		consolidation.IngestOptions{
			Preset:          cfg.Ingest.Preset,
			CurrencyFormat:  currency,
			DocumentPrefix:  cfg.Ingest.DocumentPrefix,
			DocumentColumns: cfg.Ingest.DocumentColumns,
			HoldingMerge:    cfg.Grouping.HoldingMerge,
		},
		log,
	)
	exportUC := consolidation.NewExportUseCase(
		batchRepo,
		spreadsheet.OutputWriter{},
		infrapdf.NewMarotoReportGenerator(cfg.App.Name),
		archive.NewZipBuilder(),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		BodyLimit:    cfg.HTTP.BodyLimitMB << 20,
		ReadTimeout:  time.Second * 30,
		WriteTimeout: time.Minute * 5, // la consolidación descarga todos los documentos del lote
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.HTTP.SwaggerEnabled {
		if _, err := os.Stat(cfg.HTTP.SwaggerFile); err == nil {
			app.Use(swagger.New(swagger.Config{
				BasePath: "/",
				FilePath: cfg.HTTP.SwaggerFile,
				Path:     "docs",
				Title:    "Cobranzas API",
			}))
		} else {
			log.Warn().Str("file", cfg.HTTP.SwaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
		}
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProcessUC: processUC,
		ExportUC:  exportUC,
		JWTSecret: cfg.JWT.Secret,
		Logger:    log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
