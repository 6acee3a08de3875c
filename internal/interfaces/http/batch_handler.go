package http

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Cobranzas-api/internal/application/consolidation"
	"github.com/jhoicas/Cobranzas-api/internal/application/dto"
	"github.com/jhoicas/Cobranzas-api/pkg/logger"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
	contentTypeZIP  = "application/zip"
)

// BatchHandler maneja la carga de planillas y la descarga de sus resultados (protegido).
type BatchHandler struct {
	process *consolidation.ProcessUseCase
	export  *consolidation.ExportUseCase
	log     *logger.Logger
}

// NewBatchHandler construye el handler.
func NewBatchHandler(process *consolidation.ProcessUseCase, export *consolidation.ExportUseCase, log *logger.Logger) *BatchHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &BatchHandler{process: process, export: export, log: log.Component("http")}
}

// Create procesa una planilla subida (multipart: file, holding_merge, preset).
// POST /api/batches
func (h *BatchHandler) Create(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "campo 'file' requerido (multipart/form-data)"})
	}
	in := consolidation.UploadInput{
		FileName: fh.Filename,
		Preset:   strings.TrimSpace(c.FormValue("preset")),
	}
	if raw := strings.TrimSpace(c.FormValue("holding_merge")); raw != "" {
		v, ok := parseFlag(raw)
		if !ok {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "holding_merge debe ser true o false"})
		}
		in.HoldingMerge = &v
	}

	f, err := fh.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "no se pudo leer el archivo"})
	}
	defer f.Close()
	in.Content = f

	batch, err := h.process.ProcessUpload(c.UserContext(), in)
	if err != nil {
		h.log.Warn().Err(err).Str("user", GetUserID(c)).Str("file", fh.Filename).Msg("carga rechazada")
		return writeError(c, err)
	}
	h.log.Info().Str("user", GetUserID(c)).Str("batch", batch.ID).Msg("lote creado")
	return c.Status(fiber.StatusCreated).JSON(consolidation.ToBatchResponse(batch))
}

// List lista los lotes procesados.
// GET /api/batches?limit=&offset=
func (h *BatchHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	items, err := h.export.List(c.UserContext(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"items": items})
}

// GetByID devuelve el lote con sus grupos y el resultado de la consolidación.
// GET /api/batches/:id
func (h *BatchHandler) GetByID(c *fiber.Ctx) error {
	batch, err := h.export.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(consolidation.ToBatchResponse(batch))
}

// Delete elimina un lote (sólo admin).
// DELETE /api/batches/:id
func (h *BatchHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.export.Delete(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	h.log.Info().Str("user", GetUserID(c)).Str("batch", id).Msg("lote eliminado")
	return c.SendStatus(fiber.StatusNoContent)
}

// Summary descarga Output_WABA.xlsx.
// GET /api/batches/:id/output.xlsx
func (h *BatchHandler) Summary(c *fiber.Ctx) error {
	data, name, err := h.export.SummaryXLSX(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return sendFile(c, data, name, contentTypeXLSX)
}

// Report descarga el reporte PDF del lote.
// GET /api/batches/:id/report.pdf
func (h *BatchHandler) Report(c *fiber.Ctx) error {
	data, name, err := h.export.ReportPDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return sendFile(c, data, name, contentTypePDF)
}

// Archive descarga el ZIP con planilla, reporte y PDFs consolidados.
// GET /api/batches/:id/archive.zip
func (h *BatchHandler) Archive(c *fiber.Ctx) error {
	data, name, err := h.export.Archive(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return sendFile(c, data, name, contentTypeZIP)
}

// GroupDocument descarga el PDF consolidado de un grupo (clave o posición del grupo).
// GET /api/batches/:id/groups/:key/document.pdf
func (h *BatchHandler) GroupDocument(c *fiber.Ctx) error {
	key, err := url.PathUnescape(c.Params("key"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "clave de grupo inválida"})
	}
	data, name, err := h.export.GroupDocument(c.UserContext(), c.Params("id"), key)
	if err != nil {
		return writeError(c, err)
	}
	return sendFile(c, data, name, contentTypePDF)
}

func sendFile(c *fiber.Ctx, data []byte, name, contentType string) error {
	c.Attachment(name)
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}

func parseFlag(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "sim", "si", "on", "yes":
		return true, true
	case "nao", "não", "off", "no":
		return false, true
	}
	v, err := strconv.ParseBool(s)
	return v, err == nil
}
