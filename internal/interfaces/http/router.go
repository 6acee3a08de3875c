package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cobranzas-api/internal/application/consolidation"
	"github.com/jhoicas/Cobranzas-api/pkg/jwt"
	"github.com/jhoicas/Cobranzas-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProcessUC *consolidation.ProcessUseCase
	ExportUC  *consolidation.ExportUseCase
	JWTSecret string
	Logger    *logger.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	readers := RequireRole(jwt.RoleAdmin, jwt.RoleOperador, jwt.RoleAuditor)
	writers := RequireRole(jwt.RoleAdmin, jwt.RoleOperador)

	// Lotes: carga (operador/admin) y consulta/descarga (cualquier rol)
	batches := protected.Group("/batches")
	batchHandler := NewBatchHandler(deps.ProcessUC, deps.ExportUC, deps.Logger)
	batches.Post("/", writers, batchHandler.Create)
	batches.Get("/", readers, batchHandler.List)
	batches.Get("/:id", readers, batchHandler.GetByID)
	batches.Delete("/:id", RequireRole(jwt.RoleAdmin), batchHandler.Delete)
	batches.Get("/:id/output.xlsx", readers, batchHandler.Summary)
	batches.Get("/:id/report.pdf", readers, batchHandler.Report)
	batches.Get("/:id/archive.zip", readers, batchHandler.Archive)
	batches.Get("/:id/groups/:key/document.pdf", readers, batchHandler.GroupDocument)
}
