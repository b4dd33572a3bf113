package http

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Mayorista-api/internal/application/document"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/money"
	"github.com/jhoicas/Mayorista-api/pkg/logger"
)

// DocumentHandler maneja contabilización, anulación y consulta de documentos (protegido).
type DocumentHandler struct {
	svc     *document.Service
	waybill *document.WaybillUseCase
	log     *logger.Logger
}

// NewDocumentHandler construye el handler.
func NewDocumentHandler(svc *document.Service, waybill *document.WaybillUseCase, log *logger.Logger) *DocumentHandler {
	return &DocumentHandler{svc: svc, waybill: waybill, log: log}
}

// Post godoc
// @Summary      Contabilizar documento
// @Description  Escribe un movimiento por línea y pasa el documento de DRAFT a POSTED.
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del documento"
// @Success      200  {object}  dto.DocumentActionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/post [post]
func (h *DocumentHandler) Post(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "INVALID_ID", err.Error())
	}
	if err := h.svc.PostDocument(c.Context(), id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.DocumentActionResponse{ID: id, Status: entity.StatusPosted.String(), Message: "documento contabilizado"})
}

// Cancel godoc
// @Summary      Anular documento (storno)
// @Description  Marca como anulados los movimientos activos y pasa el documento de POSTED a CANCELLED.
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del documento"
// @Success      200  {object}  dto.DocumentActionResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/cancel [post]
func (h *DocumentHandler) Cancel(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "INVALID_ID", err.Error())
	}
	if err := h.svc.CancelDocument(c.Context(), id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.DocumentActionResponse{ID: id, Status: entity.StatusCancelled.String(), Message: "documento anulado"})
}

// Get godoc
// @Summary      Obtener documento con líneas
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del documento"
// @Success      200  {object}  dto.DocumentDetailResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id} [get]
func (h *DocumentHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "INVALID_ID", err.Error())
	}
	doc, lines, err := h.svc.GetDocument(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.DocumentDetailResponse{
		DocumentResponse: toDocumentResponse(doc),
		Lines:            toLineResponses(lines),
	})
}

// List godoc
// @Summary      Listar documentos
// @Description  Del más reciente al más antiguo. Filtros opcionales por estado y rango de fechas.
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "DRAFT | POSTED | CANCELLED"
// @Param        from    query  string  false  "YYYY-MM-DD"
// @Param        to      query  string  false  "YYYY-MM-DD"
// @Param        limit   query  int     false  "máximo 100 (por defecto 20)"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  dto.DocumentListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/documents [get]
func (h *DocumentHandler) List(c *fiber.Ctx) error {
	var f document.ListFilter
	if s := c.Query("status"); s != "" {
		st, err := entity.ParseDocStatus(s)
		if err != nil {
			return badRequest(c, "INVALID_STATUS", err.Error())
		}
		f.Status = &st
	}
	var err error
	if f.From, err = queryDate(c, "from"); err != nil {
		return badRequest(c, "INVALID_DATE", err.Error())
	}
	if f.To, err = queryDate(c, "to"); err != nil {
		return badRequest(c, "INVALID_DATE", err.Error())
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "INVALID_PAGE", "limit y offset deben ser enteros")
	}
	page.DefaultPage()
	if page.Limit > 100 {
		page.Limit = 100
	}

	docs, err := h.svc.ListDocuments(c.Context(), f)
	if err != nil {
		return writeError(c, h.log, err)
	}
	total := len(docs)
	start := min(page.Offset, total)
	end := min(start+page.Limit, total)
	out := make([]dto.DocumentResponse, 0, end-start)
	for _, d := range docs[start:end] {
		out = append(out, toDocumentResponse(d))
	}
	return c.JSON(dto.DocumentListResponse{
		Total:     total,
		Documents: out,
		Page:      dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	})
}

// Movements godoc
// @Summary      Movimientos del libro de un documento
// @Description  Incluye los anulados.
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del documento"
// @Success      200  {array}   dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/movements [get]
func (h *DocumentHandler) Movements(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "INVALID_ID", err.Error())
	}
	ms, err := h.svc.DocumentMovements(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toMovementResponses(ms))
}

// Recalculate godoc
// @Summary      Recalcular total de un borrador
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del documento"
// @Success      200  {object}  dto.RecalculateResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/recalculate [post]
func (h *DocumentHandler) Recalculate(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "INVALID_ID", err.Error())
	}
	total, err := h.svc.RecalculateTotal(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.RecalculateResponse{ID: id, TotalAmount: money.Format(total)})
}

// Delete godoc
// @Summary      Borrar borrador
// @Description  Borrado lógico; solo documentos en DRAFT.
// @Tags         documents
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del documento"
// @Success      200  {object}  dto.DocumentActionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/documents/{id} [delete]
func (h *DocumentHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "INVALID_ID", err.Error())
	}
	if err := h.svc.DeleteDraft(c.Context(), id); err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.DocumentActionResponse{ID: id, Status: entity.StatusDraft.String(), Message: "borrador eliminado"})
}

// Waybill godoc
// @Summary      Guía de remisión en PDF
// @Tags         documents
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  int  true  "ID del documento"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/documents/{id}/waybill.pdf [get]
func (h *DocumentHandler) Waybill(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return badRequest(c, "INVALID_ID", err.Error())
	}
	pdf, err := h.waybill.Generate(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="guia-%d.pdf"`, id))
	return c.Send(pdf)
}

// pathID lee un ID int64 positivo del path.
func pathID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s inválido: %q", name, c.Params(name))
	}
	return id, nil
}

// queryDate lee una fecha YYYY-MM-DD opcional del query string.
func queryDate(c *fiber.Ctx, name string) (*time.Time, error) {
	s := c.Query(name)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%s debe tener formato YYYY-MM-DD", name)
	}
	return &t, nil
}
