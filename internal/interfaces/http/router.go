package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Mayorista-api/internal/application/document"
	"github.com/jhoicas/Mayorista-api/pkg/jwt"
	"github.com/jhoicas/Mayorista-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Documents *document.Service
	Waybill   *document.WaybillUseCase
	JWTSecret string
	Log       *logger.Logger
}

// Router registra las rutas de la API. Todo /api requiere Bearer Token;
// las escrituras además exigen rol.
func Router(app *fiber.App, deps RouterDeps) {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	canPost := RequireRole(jwt.RoleAdmin, jwt.RoleAccountant)
	canWriteOff := RequireRole(jwt.RoleAdmin, jwt.RoleWarehouse)

	// Documents
	docs := api.Group("/documents")
	docHandler := NewDocumentHandler(deps.Documents, deps.Waybill, log)
	docs.Get("/", docHandler.List)
	docs.Get("/:id", docHandler.Get)
	docs.Get("/:id/movements", docHandler.Movements)
	docs.Get("/:id/waybill.pdf", docHandler.Waybill)
	docs.Post("/:id/post", canPost, docHandler.Post)
	docs.Post("/:id/cancel", canPost, docHandler.Cancel)
	docs.Post("/:id/recalculate", canPost, docHandler.Recalculate)
	docs.Delete("/:id", canPost, docHandler.Delete)

	// Stock
	stock := api.Group("/stock")
	stockHandler := NewStockHandler(deps.Documents, log)
	stock.Get("/balances", stockHandler.Balances)
	stock.Get("/balances/:productId", stockHandler.Balance)
	stock.Get("/products/:productId/movements", stockHandler.ProductMovements)
	stock.Post("/writeoff", canWriteOff, stockHandler.WriteOff)
}
