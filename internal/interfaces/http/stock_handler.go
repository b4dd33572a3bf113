package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Mayorista-api/internal/application/document"
	"github.com/jhoicas/Mayorista-api/internal/application/dto"
	"github.com/jhoicas/Mayorista-api/pkg/logger"
)

// StockHandler saldos, historial por producto y bajas de mercancía (protegido).
type StockHandler struct {
	svc *document.Service
	log *logger.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(svc *document.Service, log *logger.Logger) *StockHandler {
	return &StockHandler{svc: svc, log: log}
}

// Balances godoc
// @Summary      Saldos de inventario
// @Description  Un saldo por producto del catálogo, ordenado por nombre.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        active  query  bool  false  "solo productos activos"
// @Success      200  {array}   dto.StockBalanceResponse
// @Router       /api/stock/balances [get]
func (h *StockHandler) Balances(c *fiber.Ctx) error {
	bs, err := h.svc.Balances(c.Context(), c.QueryBool("active", false))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toBalanceResponses(bs))
}

// Balance godoc
// @Summary      Saldo de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path  int  true  "ID del producto"
// @Success      200  {object}  dto.StockBalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/balances/{productId} [get]
func (h *StockHandler) Balance(c *fiber.Ctx) error {
	id, err := pathID(c, "productId")
	if err != nil {
		return badRequest(c, "INVALID_ID", err.Error())
	}
	b, err := h.svc.Balance(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.StockBalanceResponse{ProductID: id, BalanceKg: b})
}

// ProductMovements godoc
// @Summary      Historial del libro de un producto
// @Description  Incluye los movimientos anulados.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path  int  true  "ID del producto"
// @Success      200  {array}   dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/products/{productId}/movements [get]
func (h *StockHandler) ProductMovements(c *fiber.Ctx) error {
	id, err := pathID(c, "productId")
	if err != nil {
		return badRequest(c, "INVALID_ID", err.Error())
	}
	ms, err := h.svc.ProductMovements(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(toMovementResponses(ms))
}

// WriteOff godoc
// @Summary      Baja de mercancía
// @Description  Crea y contabiliza un documento "writeoff" de una línea; verifica saldo activo.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.WriteOffRequest  true  "product_id, qty_kg, reason, date"
// @Success      201   {object}  dto.WriteOffResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/writeoff [post]
func (h *StockHandler) WriteOff(c *fiber.Ctx) error {
	var in dto.WriteOffRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	var date time.Time
	if in.Date != "" {
		d, err := time.Parse(dateLayout, in.Date)
		if err != nil {
			return badRequest(c, "INVALID_DATE", "date debe tener formato YYYY-MM-DD")
		}
		date = d
	}

	id, err := h.svc.WriteOff(c.Context(), document.WriteOffInput{
		ProductID: in.ProductID,
		QtyKg:     in.QtyKg,
		Reason:    in.Reason,
		Date:      date,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	doc, _, err := h.svc.GetDocument(c.Context(), id)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.WriteOffResponse{
		DocumentID: id,
		Number:     doc.Number,
		Message:    "baja registrada",
	})
}
