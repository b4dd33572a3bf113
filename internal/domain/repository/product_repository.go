package repository

import (
	"context"

	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// El motor de documentos lo consume en modo lectura.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) (int64, error)
	FindByID(ctx context.Context, id int64) (*entity.Product, error)
	// FindAll solo productos activos, ordenados por nombre.
	FindAll(ctx context.Context) ([]*entity.Product, error)
	FindAllIncludingInactive(ctx context.Context) ([]*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) (bool, error)
	Activate(ctx context.Context, id int64) (bool, error)
	Deactivate(ctx context.Context, id int64) (bool, error)
	Exists(ctx context.Context, id int64) (bool, error)
	// LockForUpdate bloquea las filas de los productos (en orden ascendente de ID)
	// hasta el fin de la transacción, para serializar verificaciones de saldo.
	LockForUpdate(ctx context.Context, ids []int64) error
}
