package document_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Mayorista-api/internal/application/document"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
	"github.com/jhoicas/Mayorista-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var ctx = context.Background()

var day = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

type fixture struct {
	store *memory.Store
	svc   *document.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := memory.NewStore()
	return &fixture{
		store: s,
		svc:   document.NewService(s, s.Documents(), s.Lines(), s.Stock(), s.Products(), nil),
	}
}

func (f *fixture) product(t *testing.T, name, price string) int64 {
	t.Helper()
	id, err := f.store.Products().Create(ctx, &entity.Product{
		Name: name, Price: decimal.RequireFromString(price), Active: true,
	})
	require.NoError(t, err)
	return id
}

type line struct {
	productID int64
	qty       float64
}

// draft crea un borrador con sus líneas; el número es único por tipo.
func (f *fixture) draft(t *testing.T, typ entity.DocType, number string, lines ...line) int64 {
	t.Helper()
	id, err := f.store.Documents().Create(ctx, &entity.Document{Type: typ, Number: number, Date: day})
	require.NoError(t, err)
	for _, l := range lines {
		_, err := f.store.Lines().Create(ctx, &entity.DocumentLine{
			DocumentID: id, ProductID: l.productID, QtyKg: l.qty,
			Price: decimal.NewFromInt(2), LineSum: decimal.NewFromFloat(l.qty * 2),
		})
		require.NoError(t, err)
	}
	return id
}

func (f *fixture) balance(t *testing.T, productID int64) float64 {
	t.Helper()
	b, err := f.svc.Balance(ctx, productID)
	require.NoError(t, err)
	return b
}

func (f *fixture) status(t *testing.T, docID int64) entity.DocStatus {
	t.Helper()
	doc, _, err := f.svc.GetDocument(ctx, docID)
	require.NoError(t, err)
	return doc.Status
}

func (f *fixture) movements(t *testing.T, docID int64) []*entity.InventoryMovement {
	t.Helper()
	ms, err := f.svc.DocumentMovements(ctx, docID)
	require.NoError(t, err)
	return ms
}

// ──────────────────────────────────────────────────────────────────────────────
// Contabilización
// ──────────────────────────────────────────────────────────────────────────────

func TestPostDocument_EntradaSumaSaldo(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Papa", "1.50")
	b := f.product(t, "Cebolla", "2.00")
	d := f.draft(t, entity.DocTypeSupply, "S-1", line{a, 100}, line{b, 25.5})

	require.NoError(t, f.svc.PostDocument(ctx, d))

	assert.Equal(t, entity.StatusPosted, f.status(t, d))
	assert.Equal(t, 100.0, f.balance(t, a))
	assert.Equal(t, 25.5, f.balance(t, b))

	ms := f.movements(t, d)
	require.Len(t, ms, 2, "un movimiento por línea")
	for _, m := range ms {
		assert.True(t, m.Active())
		assert.Equal(t, day, m.MovementDate, "la fecha del movimiento es la del documento")
		assert.Positive(t, m.QtyDeltaKg)
	}
}

func TestPostDocument_DevolucionEsEntrada(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Papa", "1")
	d := f.draft(t, entity.DocTypeReturn, "R-1", line{a, 7})

	require.NoError(t, f.svc.PostDocument(ctx, d))
	assert.Equal(t, 7.0, f.balance(t, a))
}

func TestPostDocument_SalidasRestanSaldo(t *testing.T) {
	for _, typ := range []entity.DocType{entity.DocTypeSale, entity.DocTypeTransfer, entity.DocTypeWriteOff} {
		t.Run(string(typ), func(t *testing.T) {
			f := newFixture(t)
			a := f.product(t, "Papa", "1")
			require.NoError(t, f.svc.PostDocument(ctx, f.draft(t, entity.DocTypeSupply, "S-1", line{a, 50})))

			d := f.draft(t, typ, "OUT-1", line{a, 20})
			require.NoError(t, f.svc.PostDocument(ctx, d))

			assert.Equal(t, 30.0, f.balance(t, a))
			ms := f.movements(t, d)
			require.Len(t, ms, 1)
			assert.Equal(t, -20.0, ms[0].QtyDeltaKg)
		})
	}
}

func TestPostDocument_SalidaExactaDejaSaldoCero(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Papa", "1")
	require.NoError(t, f.svc.PostDocument(ctx, f.draft(t, entity.DocTypeSupply, "S-1", line{a, 0.3})))

	// 0.1+0.2 en float64 supera 0.3 por 5e-17.
	require.NoError(t, f.svc.PostDocument(ctx, f.draft(t, entity.DocTypeSale, "V-1", line{a, 0.1}, line{a, 0.2})))
	assert.InDelta(t, 0, f.balance(t, a), 1e-9)
}

func TestPostDocument_StockInsuficienteNoEscribeNada(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Papa", "1")
	b := f.product(t, "Cebolla", "1")
	require.NoError(t, f.svc.PostDocument(ctx, f.draft(t, entity.DocTypeSupply, "S-1", line{a, 100}, line{b, 5})))

	// La primera línea alcanza, la segunda no: nada se escribe.
	d := f.draft(t, entity.DocTypeSale, "V-1", line{a, 10}, line{b, 6})
	err := f.svc.PostDocument(ctx, d)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.Equal(t, entity.StatusDraft, f.status(t, d))
	assert.Empty(t, f.movements(t, d))
	assert.Equal(t, 100.0, f.balance(t, a))
	assert.Equal(t, 5.0, f.balance(t, b))
}

func TestPostDocument_SuficienciaAgregadaPorProducto(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Papa", "1")
	require.NoError(t, f.svc.PostDocument(ctx, f.draft(t, entity.DocTypeSupply, "S-1", line{a, 10})))

	// Cada línea por separado cabe, la suma no.
	d := f.draft(t, entity.DocTypeSale, "V-1", line{a, 6}, line{a, 6})
	assert.ErrorIs(t, f.svc.PostDocument(ctx, d), domain.ErrInsufficientStock)
	assert.Equal(t, 10.0, f.balance(t, a))
}

func TestPostDocument_EstadoInvalido(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Papa", "1")
	d := f.draft(t, entity.DocTypeSupply, "S-1", line{a, 10})
	require.NoError(t, f.svc.PostDocument(ctx, d))

	// Contabilizar dos veces no duplica movimientos.
	assert.ErrorIs(t, f.svc.PostDocument(ctx, d), domain.ErrInvalidStateTransition)
	assert.Len(t, f.movements(t, d), 1)
	assert.Equal(t, 10.0, f.balance(t, a))

	require.NoError(t, f.svc.CancelDocument(ctx, d))
	assert.ErrorIs(t, f.svc.PostDocument(ctx, d), domain.ErrInvalidStateTransition,
		"un documento anulado no vuelve a contabilizarse")
	assert.Zero(t, f.balance(t, a))
}

func TestPostDocument_Validaciones(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Papa", "1")

	t.Run("id no positivo", func(t *testing.T) {
		assert.ErrorIs(t, f.svc.PostDocument(ctx, 0), domain.ErrValidation)
	})
	t.Run("inexistente", func(t *testing.T) {
		assert.ErrorIs(t, f.svc.PostDocument(ctx, 9999), domain.ErrNotFound)
	})
	t.Run("sin líneas", func(t *testing.T) {
		d := f.draft(t, entity.DocTypeSupply, "VACIO")
		assert.ErrorIs(t, f.svc.PostDocument(ctx, d), domain.ErrValidation)
		assert.Equal(t, entity.StatusDraft, f.status(t, d))
	})
	t.Run("cantidad cero", func(t *testing.T) {
		d := f.draft(t, entity.DocTypeSupply, "CERO", line{a, 5}, line{a, 0})
		assert.ErrorIs(t, f.svc.PostDocument(ctx, d), domain.ErrValidation)
		assert.Empty(t, f.movements(t, d))
	})
	t.Run("borrado", func(t *testing.T) {
		d := f.draft(t, entity.DocTypeSupply, "BORRADO", line{a, 5})
		require.NoError(t, f.svc.DeleteDraft(ctx, d))
		assert.ErrorIs(t, f.svc.PostDocument(ctx, d), domain.ErrNotFound)
	})
}

func TestPostDocument_ConcurrenteSoloUnoGana(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Papa", "1")
	d := f.draft(t, entity.DocTypeSupply, "S-1", line{a, 10})

	const workers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.svc.PostDocument(ctx, d)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, domain.ErrInvalidStateTransition) {
				fail++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, fail)
	assert.Len(t, f.movements(t, d), 1)
	assert.Equal(t, 10.0, f.balance(t, a))
}

func TestPostDocument_VentasConcurrentesNoDejanSaldoNegativo(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Papa", "1")
	require.NoError(t, f.svc.PostDocument(ctx, f.draft(t, entity.DocTypeSupply, "S-1", line{a, 30})))

	ids := make([]int64, 5)
	for i := range ids {
		ids[i] = f.draft(t, entity.DocTypeSale, "V-"+string(rune('A'+i)), line{a, 10})
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

	assert.Zero(t, f.balance(t, a))
	posted := 0
	for _, id := range ids {
		if f.status(t, id) == entity.StatusPosted {
			posted++
		}
	}
	assert.Equal(t, 3, posted)
}

// ──────────────────────────────────────────────────────────────────────────────
// Anulación
// ──────────────────────────────────────────────────────────────────────────────

func TestCancelDocument_RestauraSaldoYConservaHistorial(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Papa", "1")
	d := f.draft(t, entity.DocTypeSupply, "S-1", line{a, 40}, line{a, 2})
	require.NoError(t, f.svc.PostDocument(ctx, d))

	require.NoError(t, f.svc.CancelDocument(ctx, d))

	assert.Equal(t, entity.StatusCancelled, f.status(t, d))
	assert.Zero(t, f.balance(t, a))
	ms := f.movements(t, d)
	require.Len(t, ms, 2, "los movimientos no se borran")
	for _, m := range ms {
		assert.True(t, m.Cancelled)
	}
	assert.Equal(t, 40.0, ms[0].QtyDeltaKg)
}

func TestCancelDocument_EstadosInvalidos(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Papa", "1")

	d := f.draft(t, entity.DocTypeSupply, "S-1", line{a, 10})
	assert.ErrorIs(t, f.svc.CancelDocument(ctx, d), domain.ErrInvalidStateTransition, "un borrador no se anula")
	assert.Equal(t, entity.StatusDraft, f.status(t, d))

	require.NoError(t, f.svc.PostDocument(ctx, d))
	require.NoError(t, f.svc.CancelDocument(ctx, d))
	assert.ErrorIs(t, f.svc.CancelDocument(ctx, d), domain.ErrInvalidStateTransition, "anular dos veces")
	assert.Zero(t, f.balance(t, a))

	assert.ErrorIs(t, f.svc.CancelDocument(ctx, 9999), domain.ErrNotFound)
	assert.ErrorIs(t, f.svc.CancelDocument(ctx, -1), domain.ErrValidation)
}

func TestCancelDocument_SinMovimientosActivos(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Papa", "1")
	d := f.draft(t, entity.DocTypeSupply, "S-1", line{a, 10})
	require.NoError(t, f.svc.PostDocument(ctx, d))

	// Movimientos anulados por fuera del motor: el documento queda POSTED sin efecto.
	for _, m := range f.movements(t, d) {
		_, err := f.store.Stock().CancelMovement(ctx, m.ID)
		require.NoError(t, err)
	}

	assert.ErrorIs(t, f.svc.CancelDocument(ctx, d), domain.ErrNoActiveMovements)
	assert.Equal(t, entity.StatusPosted, f.status(t, d))
}

func TestCancelDocument_SalidaDevuelveStock(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Papa", "1")
	require.NoError(t, f.svc.PostDocument(ctx, f.draft(t, entity.DocTypeSupply, "S-1", line{a, 10})))
	v := f.draft(t, entity.DocTypeSale, "V-1", line{a, 4})
	require.NoError(t, f.svc.PostDocument(ctx, v))
	require.Equal(t, 6.0, f.balance(t, a))

	require.NoError(t, f.svc.CancelDocument(ctx, v))
	assert.Equal(t, 10.0, f.balance(t, a))
}

// El ciclo completo: entrada, venta, venta rechazada y anulación de la entrada.
func TestEscenario_EntradaVentaAnulacion(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Papa", "1")

	d1 := f.draft(t, entity.DocTypeSupply, "D1", line{a, 100})
	require.NoError(t, f.svc.PostDocument(ctx, d1))
	assert.Equal(t, 100.0, f.balance(t, a))

	d2 := f.draft(t, entity.DocTypeSale, "D2", line{a, 30})
	require.NoError(t, f.svc.PostDocument(ctx, d2))
	assert.Equal(t, 70.0, f.balance(t, a))

	d3 := f.draft(t, entity.DocTypeSale, "D3", line{a, 100})
	assert.ErrorIs(t, f.svc.PostDocument(ctx, d3), domain.ErrInsufficientStock)
	assert.Equal(t, 70.0, f.balance(t, a))
	assert.Equal(t, entity.StatusDraft, f.status(t, d3))

	require.NoError(t, f.svc.CancelDocument(ctx, d2))
	assert.Equal(t, 100.0, f.balance(t, a))

	require.NoError(t, f.svc.CancelDocument(ctx, d1))
	assert.Zero(t, f.balance(t, a))

	history, err := f.svc.ProductMovements(ctx, a)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fallas de almacenamiento
// ──────────────────────────────────────────────────────────────────────────────

var errDisk = errors.New("disco lleno")

// failingRunner envuelve el Store y hace fallar CreateMovement a partir de la llamada n.
type failingRunner struct {
	store  *memory.Store
	failAt int
}

func (r failingRunner) Run(ctx context.Context, fn func(
	repository.DocumentRepository, repository.DocumentLineRepository,
	repository.StockRepository, repository.ProductRepository,
) error) error {
	return r.store.Run(ctx, func(
		docs repository.DocumentRepository, lines repository.DocumentLineRepository,
		stock repository.StockRepository, products repository.ProductRepository,
	) error {
		return fn(docs, lines, &failingStock{StockRepository: stock, failAt: r.failAt}, products)
	})
}

type failingStock struct {
	repository.StockRepository
	calls  int
	failAt int
}

func (s *failingStock) CreateMovement(ctx context.Context, m *entity.InventoryMovement) (int64, error) {
	s.calls++
	if s.calls >= s.failAt {
		return 0, errDisk
	}
	return s.StockRepository.CreateMovement(ctx, m)
}

func TestPostDocument_FallaDeAlmacenamientoRevierteTodo(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Papa", "1")
	d := f.draft(t, entity.DocTypeSupply, "S-1", line{a, 1}, line{a, 2}, line{a, 3})

	s := f.store
	svc := document.NewService(failingRunner{store: s, failAt: 3}, s.Documents(), s.Lines(), s.Stock(), s.Products(), nil)

	err := svc.PostDocument(ctx, d)
	require.ErrorIs(t, err, errDisk)
	assert.False(t, document.IsBusinessError(err))

	assert.Equal(t, entity.StatusDraft, f.status(t, d))
	assert.Empty(t, f.movements(t, d))
	assert.Zero(t, f.balance(t, a))

	// El mismo documento se contabiliza luego sin problemas.
	require.NoError(t, f.svc.PostDocument(ctx, d))
	assert.Equal(t, 6.0, f.balance(t, a))
}

// ──────────────────────────────────────────────────────────────────────────────
// Baja de mercancía
// ──────────────────────────────────────────────────────────────────────────────

func TestWriteOff(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Tomate", "3.10")
	require.NoError(t, f.svc.PostDocument(ctx, f.draft(t, entity.DocTypeSupply, "S-1", line{a, 20})))

	id, err := f.svc.WriteOff(ctx, document.WriteOffInput{ProductID: a, QtyKg: 2.5, Reason: " podrido ", Date: day})
	require.NoError(t, err)

	doc, lines, err := f.svc.GetDocument(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entity.DocTypeWriteOff, doc.Type)
	assert.Equal(t, entity.StatusPosted, doc.Status)
	assert.Regexp(t, `^WRITEOFF-20240315-[0-9A-F]{8}$`, doc.Number)
	assert.Equal(t, "podrido", doc.Notes)
	assert.Equal(t, "7.75", doc.TotalAmount.StringFixed(2))
	require.Len(t, lines, 1)
	assert.Equal(t, 2.5, lines[0].QtyKg)
	assert.Equal(t, 17.5, f.balance(t, a))
}

func TestWriteOff_Rechazos(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Tomate", "1")

	_, err := f.svc.WriteOff(ctx, document.WriteOffInput{ProductID: a, QtyKg: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.svc.WriteOff(ctx, document.WriteOffInput{ProductID: 777, QtyKg: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.svc.WriteOff(ctx, document.WriteOffInput{ProductID: a, QtyKg: 1})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// El documento de la baja rechazada no queda creado.
	docs, err := f.svc.ListDocuments(ctx, document.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, docs)
}

// ──────────────────────────────────────────────────────────────────────────────
// Borradores
// ──────────────────────────────────────────────────────────────────────────────

func TestRecalculateTotal(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Papa", "1")
	d := f.draft(t, entity.DocTypeSale, "V-1", line{a, 1.5}, line{a, 2.25})

	total, err := f.svc.RecalculateTotal(ctx, d)
	require.NoError(t, err)
	assert.Equal(t, "7.50", total.StringFixed(2))

	doc, _, err := f.svc.GetDocument(ctx, d)
	require.NoError(t, err)
	assert.True(t, total.Equal(doc.TotalAmount))
}

func TestRecalculateTotal_SoloBorradores(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Papa", "1")
	d := f.draft(t, entity.DocTypeSupply, "S-1", line{a, 1})
	require.NoError(t, f.svc.PostDocument(ctx, d))

	_, err := f.svc.RecalculateTotal(ctx, d)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}

func TestDeleteDraft(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Papa", "1")
	d := f.draft(t, entity.DocTypeSale, "V-1", line{a, 1})

	require.NoError(t, f.svc.DeleteDraft(ctx, d))

	_, _, err := f.svc.GetDocument(ctx, d)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.DocumentMovements(ctx, d)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// El número queda libre.
	f.draft(t, entity.DocTypeSale, "V-1")

	p := f.draft(t, entity.DocTypeSupply, "S-1", line{a, 1})
	require.NoError(t, f.svc.PostDocument(ctx, p))
	assert.ErrorIs(t, f.svc.DeleteDraft(ctx, p), domain.ErrInvalidStateTransition)
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestListDocuments(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Papa", "1")
	posted := f.draft(t, entity.DocTypeSupply, "S-1", line{a, 1})
	require.NoError(t, f.svc.PostDocument(ctx, posted))
	f.draft(t, entity.DocTypeSale, "V-1", line{a, 1})

	all, err := f.svc.ListDocuments(ctx, document.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	st := entity.StatusPosted
	onlyPosted, err := f.svc.ListDocuments(ctx, document.ListFilter{Status: &st})
	require.NoError(t, err)
	require.Len(t, onlyPosted, 1)
	assert.Equal(t, posted, onlyPosted[0].ID)

	later := day.AddDate(0, 0, 1)
	none, err := f.svc.ListDocuments(ctx, document.ListFilter{Status: &st, From: &later})
	require.NoError(t, err)
	assert.Empty(t, none)

	inRange, err := f.svc.ListDocuments(ctx, document.ListFilter{From: &day, To: &day})
	require.NoError(t, err)
	assert.Len(t, inRange, 2)

	before := day.AddDate(0, 0, -1)
	_, err = f.svc.ListDocuments(ctx, document.ListFilter{From: &day, To: &before})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBalances(t *testing.T) {
	f := newFixture(t)
	a := f.product(t, "Papa", "1")
	b := f.product(t, "Ajo", "1")
	require.NoError(t, f.svc.PostDocument(ctx, f.draft(t, entity.DocTypeSupply, "S-1", line{a, 8})))
	_, err := f.store.Products().Deactivate(ctx, b)
	require.NoError(t, err)

	all, err := f.svc.Balances(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Ajo", all[0].ProductName)
	assert.Zero(t, all[0].BalanceKg)
	assert.Equal(t, 8.0, all[1].BalanceKg)

	active, err := f.svc.Balances(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, a, active[0].ProductID)

	_, err = f.svc.Balance(ctx, 12345)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.ProductMovements(ctx, 0)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
