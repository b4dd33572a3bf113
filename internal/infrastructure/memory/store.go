// Package memory implementa los repositorios en memoria. Sirve para tests del motor
// y para levantar la API sin PostgreSQL (STORE_DRIVER=memory).
//
// Las transacciones se serializan con un mutex y el Rollback restaura una copia
// del estado tomada al inicio de Run.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/Mayorista-api/internal/application/document"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

var _ document.TxRunner = (*Store)(nil)

type state struct {
	docs      map[int64]entity.Document
	lines     map[int64]entity.DocumentLine
	movements map[int64]entity.InventoryMovement
	products  map[int64]entity.Product
	nextID    int64
}

func (st *state) clone() *state {
	c := &state{
		docs:      make(map[int64]entity.Document, len(st.docs)),
		lines:     make(map[int64]entity.DocumentLine, len(st.lines)),
		movements: make(map[int64]entity.InventoryMovement, len(st.movements)),
		products:  make(map[int64]entity.Product, len(st.products)),
		nextID:    st.nextID,
	}
	for k, v := range st.docs {
		c.docs[k] = v
	}
	for k, v := range st.lines {
		c.lines[k] = v
	}
	for k, v := range st.movements {
		c.movements[k] = v
	}
	for k, v := range st.products {
		c.products[k] = v
	}
	return c
}

func (st *state) newID() int64 {
	st.nextID++
	return st.nextID
}

// Store almacén en memoria. El valor cero no es usable; crear con NewStore.
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		st: &state{
			docs:      map[int64]entity.Document{},
			lines:     map[int64]entity.DocumentLine{},
			movements: map[int64]entity.InventoryMovement{},
			products:  map[int64]entity.Product{},
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Documents repositorio de documentos fuera de transacción.
func (s *Store) Documents() *DocumentRepo { return &DocumentRepo{s: s} }

// Lines repositorio de líneas fuera de transacción.
func (s *Store) Lines() *DocumentLineRepo { return &DocumentLineRepo{s: s} }

// Stock libro de inventario fuera de transacción.
func (s *Store) Stock() *StockRepo { return &StockRepo{s: s} }

// Products catálogo fuera de transacción.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Run ejecuta fn con repositorios atados a la transacción; si fn falla, el estado vuelve al inicial.
func (s *Store) Run(ctx context.Context, fn func(
	docRepo repository.DocumentRepository,
	lineRepo repository.DocumentLineRepository,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	err := fn(
		&DocumentRepo{s: s, inTx: true},
		&DocumentLineRepo{s: s, inTx: true},
		&StockRepo{s: s, inTx: true},
		&ProductRepo{s: s, inTx: true},
	)
	if err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

// lock toma el mutex salvo que la operación ya corra dentro de Run.
func (s *Store) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}
