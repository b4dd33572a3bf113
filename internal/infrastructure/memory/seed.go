package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/money"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

type demoLine struct {
	product string
	qtyKg   float64
}

type demoDoc struct {
	typ    entity.DocType
	number string
	lines  []demoLine
}

var demoCatalogue = []struct {
	name  string
	price string
}{
	{"Cebolla", "1.80"},
	{"Papa", "2.50"},
	{"Zanahoria", "1.20"},
}

// La venta DEMO-V-2 supera el saldo de cebolla que deja DEMO-E-1.
var demoDrafts = []demoDoc{
	{entity.DocTypeSupply, "DEMO-E-1", []demoLine{{"Papa", 100}, {"Cebolla", 50}, {"Zanahoria", 40}}},
	{entity.DocTypeSale, "DEMO-V-1", []demoLine{{"Papa", 30}, {"Zanahoria", 10}}},
	{entity.DocTypeSale, "DEMO-V-2", []demoLine{{"Cebolla", 80}}},
	{entity.DocTypeReturn, "DEMO-D-1", []demoLine{{"Papa", 2.5}}},
}

// SeedDemo carga un catálogo de ejemplo y documentos en borrador con fecha date,
// para poder contabilizar y anular desde la API sin PostgreSQL. No escribe movimientos.
func (s *Store) SeedDemo(ctx context.Context, date time.Time) error {
	return s.Run(ctx, func(docs repository.DocumentRepository, lines repository.DocumentLineRepository,
		_ repository.StockRepository, products repository.ProductRepository) error {
		ids := make(map[string]int64, len(demoCatalogue))
		prices := make(map[string]decimal.Decimal, len(demoCatalogue))
		for i, c := range demoCatalogue {
			price := decimal.RequireFromString(c.price)
			id, err := products.Create(ctx, &entity.Product{
				Name: c.name, Unit: entity.DefaultUnit, Price: price, Sort: i, Active: true,
			})
			if err != nil {
				return fmt.Errorf("semilla: producto %s: %w", c.name, err)
			}
			ids[c.name] = id
			prices[c.name] = price
		}

		for _, d := range demoDrafts {
			sums := make([]decimal.Decimal, 0, len(d.lines))
			for _, l := range d.lines {
				sums = append(sums, money.LineSum(prices[l.product], l.qtyKg))
			}
			docID, err := docs.Create(ctx, &entity.Document{
				Type: d.typ, Number: d.number, Date: entity.DateOnly(date),
				Status: entity.StatusDraft, TotalAmount: money.Sum(sums...),
				Notes: "documento de demostración",
			})
			if err != nil {
				return fmt.Errorf("semilla: documento %s: %w", d.number, err)
			}
			for i, l := range d.lines {
				if _, err := lines.Create(ctx, &entity.DocumentLine{
					DocumentID: docID, ProductID: ids[l.product], QtyKg: l.qtyKg,
					Price: prices[l.product], LineSum: sums[i],
				}); err != nil {
					return fmt.Errorf("semilla: línea de %s: %w", d.number, err)
				}
			}
		}
		return nil
	})
}
