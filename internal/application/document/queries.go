package document

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

// ListFilter filtros opcionales para ListDocuments.
type ListFilter struct {
	Status *entity.DocStatus
	From   *time.Time
	To     *time.Time
}

// GetDocument devuelve la cabecera y sus líneas.
func (s *Service) GetDocument(ctx context.Context, documentID int64) (*entity.Document, []*entity.DocumentLine, error) {
	if documentID <= 0 {
		return nil, nil, fmt.Errorf("documento %d: %w", documentID, domain.ErrValidation)
	}
	doc, err := s.docRepo.FindByID(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	if doc == nil || doc.Deleted {
		return nil, nil, fmt.Errorf("documento %d: %w", documentID, domain.ErrNotFound)
	}
	lines, err := s.lineRepo.FindByDocument(ctx, documentID)
	if err != nil {
		return nil, nil, err
	}
	return doc, lines, nil
}

// ListDocuments lista documentos no borrados, del más reciente al más antiguo.
func (s *Service) ListDocuments(ctx context.Context, f ListFilter) ([]*entity.Document, error) {
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, fmt.Errorf("rango de fechas invertido: %w", domain.ErrValidation)
	}

	var (
		docs []*entity.Document
		err  error
	)
	switch {
	case f.Status != nil:
		docs, err = s.docRepo.FindByStatus(ctx, *f.Status)
	case f.From != nil || f.To != nil:
		from, to := dateBounds(f.From, f.To)
		return s.docRepo.FindByDateRange(ctx, from, to)
	default:
		return s.docRepo.FindAll(ctx)
	}
	if err != nil {
		return nil, err
	}
	if f.From == nil && f.To == nil {
		return docs, nil
	}

	from, to := dateBounds(f.From, f.To)
	out := docs[:0]
	for _, d := range docs {
		day := entity.DateOnly(d.Date)
		if !day.Before(from) && !day.After(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

func dateBounds(from, to *time.Time) (time.Time, time.Time) {
	lo := time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC)
	hi := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
	if from != nil {
		lo = entity.DateOnly(*from)
	}
	if to != nil {
		hi = entity.DateOnly(*to)
	}
	return lo, hi
}

// DocumentMovements historial del libro para un documento (incluye anulados).
func (s *Service) DocumentMovements(ctx context.Context, documentID int64) ([]*entity.InventoryMovement, error) {
	if documentID <= 0 {
		return nil, fmt.Errorf("documento %d: %w", documentID, domain.ErrValidation)
	}
	ok, err := s.docRepo.Exists(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("documento %d: %w", documentID, domain.ErrNotFound)
	}
	return s.stockRepo.FindMovementsByDocument(ctx, documentID)
}

// ProductMovements historial del libro para un producto (incluye anulados).
func (s *Service) ProductMovements(ctx context.Context, productID int64) ([]*entity.InventoryMovement, error) {
	if err := s.requireProduct(ctx, productID); err != nil {
		return nil, err
	}
	return s.stockRepo.FindMovementsByProduct(ctx, productID)
}

// Balance saldo activo de un producto, recalculado desde el libro.
func (s *Service) Balance(ctx context.Context, productID int64) (float64, error) {
	if err := s.requireProduct(ctx, productID); err != nil {
		return 0, err
	}
	return s.stockRepo.GetStockBalance(ctx, productID)
}

// Balances saldos de todos los productos del catálogo (o solo activos).
func (s *Service) Balances(ctx context.Context, activeOnly bool) ([]*entity.StockBalance, error) {
	if activeOnly {
		return s.stockRepo.GetActiveStockBalances(ctx)
	}
	return s.stockRepo.GetAllStockBalances(ctx)
}

func (s *Service) requireProduct(ctx context.Context, productID int64) error {
	if productID <= 0 {
		return fmt.Errorf("producto %d: %w", productID, domain.ErrValidation)
	}
	ok, err := s.productRepo.Exists(ctx, productID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("producto %d: %w", productID, domain.ErrNotFound)
	}
	return nil
}
