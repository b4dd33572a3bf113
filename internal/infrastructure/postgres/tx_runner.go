package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/Mayorista-api/internal/application/document"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

var _ document.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	docRepo repository.DocumentRepository,
	lineRepo repository.DocumentLineRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return storageErr("begin transaction", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(
		NewDocumentRepository(tx),
		NewDocumentLineRepository(tx),
		NewStockRepository(tx),
		NewProductRepository(tx),
	); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return storageErr("commit transaction", err)
	}
	return nil
}
