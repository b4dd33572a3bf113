package document

import (
	"context"
	"fmt"

	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

// WaybillUseCase arma la guía de remisión (PDF) de un documento.
type WaybillUseCase struct {
	docs        *Service
	products    productReader
	generator   WaybillPDFGenerator
	companyName string
}

type productReader interface {
	FindByID(ctx context.Context, id int64) (*entity.Product, error)
}

// NewWaybillUseCase construye el caso de uso.
func NewWaybillUseCase(docs *Service, products productReader, generator WaybillPDFGenerator, companyName string) *WaybillUseCase {
	return &WaybillUseCase{docs: docs, products: products, generator: generator, companyName: companyName}
}

// Generate devuelve los bytes del PDF.
func (uc *WaybillUseCase) Generate(ctx context.Context, documentID int64) ([]byte, error) {
	doc, lines, err := uc.docs.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	out := make([]WaybillLine, 0, len(lines))
	for _, l := range lines {
		name, unit := fmt.Sprintf("Producto #%d", l.ProductID), entity.DefaultUnit
		p, err := uc.products.FindByID(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			name, unit = p.Name, p.Unit
		}
		out = append(out, WaybillLine{
			ProductName: name,
			Unit:        unit,
			QtyKg:       l.QtyKg,
			Price:       l.Price,
			LineSum:     l.LineSum,
		})
	}
	return uc.generator.GenerateWaybillPDF(ctx, uc.companyName, doc, out)
}
