package repository

import (
	"context"

	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DocumentLineRepository puerto de persistencia de líneas de documento.
type DocumentLineRepository interface {
	Create(ctx context.Context, line *entity.DocumentLine) (int64, error)
	FindByID(ctx context.Context, id int64) (*entity.DocumentLine, error)
	// FindByDocument devuelve las líneas ordenadas por ID (orden determinista de contabilización).
	FindByDocument(ctx context.Context, documentID int64) ([]*entity.DocumentLine, error)
	DeleteByDocument(ctx context.Context, documentID int64) (int64, error)
	Update(ctx context.Context, line *entity.DocumentLine) (bool, error)
	// SumByDocument suma exacta de LineSum de las líneas del documento.
	SumByDocument(ctx context.Context, documentID int64) (decimal.Decimal, error)
}
