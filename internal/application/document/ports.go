package document

import (
	"context"

	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Si fn devuelve error se hace Rollback; si no, Commit.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		docRepo repository.DocumentRepository,
		lineRepo repository.DocumentLineRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
	) error) error
}

// WaybillLine línea de la guía con los datos del producto ya resueltos.
type WaybillLine struct {
	ProductName string
	Unit        string
	QtyKg       float64
	Price       decimal.Decimal
	LineSum     decimal.Decimal
}

// WaybillPDFGenerator genera la representación imprimible (guía de remisión) de un documento.
type WaybillPDFGenerator interface {
	GenerateWaybillPDF(ctx context.Context, companyName string, doc *entity.Document, lines []WaybillLine) ([]byte, error)
}
