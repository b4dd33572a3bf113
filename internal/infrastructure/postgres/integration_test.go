//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jhoicas/Mayorista-api/internal/application/document"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Mayorista-api/pkg/config"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// newTestPool levanta un PostgreSQL en contenedor, aplica las migraciones y devuelve el pool.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("mayorista_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "no se pudo iniciar el contenedor PostgreSQL")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	m, err := postgres.NewMigrator(dsn, nil)
	require.NoError(t, err)
	require.NoError(t, m.Up())
	require.NoError(t, m.Close())

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

type pgFixture struct {
	pool *pgxpool.Pool
	svc  *document.Service
	docs *postgres.DocumentRepo
	line *postgres.DocumentLineRepo
	prod *postgres.ProductRepo
	mov  *postgres.StockRepo
}

func newPGFixture(t *testing.T) *pgFixture {
	pool := newTestPool(t)
	f := &pgFixture{
		pool: pool,
		docs: postgres.NewDocumentRepository(pool),
		line: postgres.NewDocumentLineRepository(pool),
		prod: postgres.NewProductRepository(pool),
		mov:  postgres.NewStockRepository(pool),
	}
	f.svc = document.NewService(postgres.NewTxRunner(pool), f.docs, f.line, f.mov, f.prod, nil)
	return f
}

func (f *pgFixture) product(t *testing.T, name string) int64 {
	t.Helper()
	id, err := f.prod.Create(context.Background(), &entity.Product{Name: name, Price: decimal.RequireFromString("2.50"), Active: true})
	require.NoError(t, err)
	return id
}

func (f *pgFixture) draft(t *testing.T, typ entity.DocType, number string, productID int64, qty float64) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := f.docs.Create(ctx, &entity.Document{Type: typ, Number: number, Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)
	_, err = f.line.Create(ctx, &entity.DocumentLine{
		DocumentID: id, ProductID: productID, QtyKg: qty,
		Price: decimal.RequireFromString("2.50"), LineSum: decimal.NewFromFloat(qty).Mul(decimal.RequireFromString("2.50")),
	})
	require.NoError(t, err)
	return id
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestPostgres_EntradaVentaAnulacion(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	a := f.product(t, "Papa")

	d1 := f.draft(t, entity.DocTypeSupply, "D1", a, 100)
	require.NoError(t, f.svc.PostDocument(ctx, d1))

	d2 := f.draft(t, entity.DocTypeSale, "D2", a, 30)
	require.NoError(t, f.svc.PostDocument(ctx, d2))

	bal, err := f.svc.Balance(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, 70.0, bal)

	d3 := f.draft(t, entity.DocTypeSale, "D3", a, 100)
	assert.ErrorIs(t, f.svc.PostDocument(ctx, d3), domain.ErrInsufficientStock)

	require.NoError(t, f.svc.CancelDocument(ctx, d2))
	require.NoError(t, f.svc.CancelDocument(ctx, d1))
	bal, err = f.svc.Balance(ctx, a)
	require.NoError(t, err)
	assert.Zero(t, bal)

	ms, err := f.svc.ProductMovements(ctx, a)
	require.NoError(t, err)
	assert.Len(t, ms, 2)
	for _, m := range ms {
		assert.True(t, m.Cancelled)
	}
}

func TestPostgres_LibroAppendOnly(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	a := f.product(t, "Papa")
	d := f.draft(t, entity.DocTypeSupply, "S-1", a, 10)
	require.NoError(t, f.svc.PostDocument(ctx, d))

	_, err := f.pool.Exec(ctx, `DELETE FROM inventory_movements WHERE document_id = $1`, d)
	assert.Error(t, err, "el libro no admite borrados")

	_, err = f.pool.Exec(ctx, `UPDATE inventory_movements SET qty_delta_kg = 99 WHERE document_id = $1`, d)
	assert.Error(t, err, "el libro no admite cambios de cantidad")
}

func TestPostgres_NumeroDuplicadoYBorrado(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	a := f.product(t, "Papa")
	d := f.draft(t, entity.DocTypeSale, "V-1", a, 1)

	_, err := f.docs.Create(ctx, &entity.Document{Type: entity.DocTypeSale, Number: "V-1", Date: time.Now()})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	require.NoError(t, f.svc.DeleteDraft(ctx, d))
	_, err = f.docs.Create(ctx, &entity.Document{Type: entity.DocTypeSale, Number: "V-1", Date: time.Now()})
	assert.NoError(t, err)

	deleted, err := f.docs.FindByID(ctx, d)
	require.NoError(t, err)
	assert.True(t, deleted.Deleted)
	assert.Contains(t, deleted.Number, "[del ")
}

func TestPostgres_CancelNoMiraElEstado(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	a := f.product(t, "Papa")
	d := f.draft(t, entity.DocTypeSale, "V-1", a, 1)

	ok, err := f.docs.Cancel(ctx, d)
	require.NoError(t, err)
	assert.True(t, ok, "el repositorio no valida la transición")

	doc, err := f.docs.FindByID(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCancelled, doc.Status)

	ok, err = f.docs.Cancel(ctx, 9999)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPostgres_RecalculateTotalExacto(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	a := f.product(t, "Papa")
	d := f.draft(t, entity.DocTypeSale, "V-1", a, 1.1)
	_, err := f.line.Create(ctx, &entity.DocumentLine{DocumentID: d, ProductID: a, QtyKg: 1, LineSum: decimal.RequireFromString("0.10")})
	require.NoError(t, err)

	total, err := f.svc.RecalculateTotal(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, "2.85", total.StringFixed(2))
}

func TestPostgres_VentasConcurrentesSerializadas(t *testing.T) {
	f := newPGFixture(t)
	ctx := context.Background()
	a := f.product(t, "Papa")
	require.NoError(t, f.svc.PostDocument(ctx, f.draft(t, entity.DocTypeSupply, "S-1", a, 30)))

	ids := make([]int64, 6)
	for i := range ids {
		ids[i] = f.draft(t, entity.DocTypeSale, "V-"+string(rune('A'+i)), a, 10)
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_ = f.svc.PostDocument(ctx, id)
		}(id)
	}
	wg.Wait()

	bal, err := f.svc.Balance(ctx, a)
	require.NoError(t, err)
	assert.Zero(t, bal, "nunca se vende más de lo que hay")
}
