package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DocumentRepository define el puerto de persistencia de cabeceras de documento.
// Las lecturas devuelven (nil, nil) cuando el documento no existe.
// Los listados excluyen documentos borrados lógicamente.
type DocumentRepository interface {
	// Create inserta el documento y devuelve el ID asignado por el almacén.
	// Número vacío -> domain.ErrValidation; número repetido para el tipo -> domain.ErrDuplicate.
	Create(ctx context.Context, doc *entity.Document) (int64, error)
	FindByID(ctx context.Context, id int64) (*entity.Document, error)
	// FindByIDForUpdate igual que FindByID pero bloquea la fila hasta el fin de la transacción.
	FindByIDForUpdate(ctx context.Context, id int64) (*entity.Document, error)
	FindByNumber(ctx context.Context, number string, docType entity.DocType) (*entity.Document, error)
	FindAll(ctx context.Context) ([]*entity.Document, error)
	FindByStatus(ctx context.Context, status entity.DocStatus) ([]*entity.Document, error)
	FindByDateRange(ctx context.Context, from, to time.Time) ([]*entity.Document, error)
	// Update reescribe todos los campos editables. Devuelve false si no afectó filas.
	Update(ctx context.Context, doc *entity.Document) (bool, error)
	// UpdateStatus cambia el estado solo si el actual es from. Devuelve false si no afectó filas.
	UpdateStatus(ctx context.Context, id int64, from, to entity.DocStatus) (bool, error)
	UpdateTotal(ctx context.Context, id int64, total decimal.Decimal) (bool, error)
	// Cancel pone status=CANCELLED sin validar la transición; la valida el servicio.
	Cancel(ctx context.Context, id int64) (bool, error)
	// MarkDeleted borrado lógico; libera el número para reutilizarlo.
	MarkDeleted(ctx context.Context, id int64) (bool, error)
	Exists(ctx context.Context, id int64) (bool, error)
}
