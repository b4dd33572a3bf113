package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo catálogo en memoria.
type ProductRepo struct {
	s    *Store
	inTx bool
}

// Create inserta el producto; nombre obligatorio, unidad por defecto "кг".
func (r *ProductRepo) Create(_ context.Context, product *entity.Product) (int64, error) {
	defer r.s.lock(r.inTx)()
	name := strings.TrimSpace(product.Name)
	if name == "" {
		return 0, fmt.Errorf("crear producto: nombre vacío: %w", domain.ErrValidation)
	}
	p := *product
	p.ID = r.s.st.newID()
	p.Name = name
	if strings.TrimSpace(p.Unit) == "" {
		p.Unit = entity.DefaultUnit
	}
	p.CreatedAt = r.s.now()
	p.UpdatedAt = p.CreatedAt
	r.s.st.products[p.ID] = p
	product.ID = p.ID
	return p.ID, nil
}

// FindByID devuelve (nil, nil) si no existe.
func (r *ProductRepo) FindByID(_ context.Context, id int64) (*entity.Product, error) {
	defer r.s.lock(r.inTx)()
	p, ok := r.s.st.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

// FindAll productos activos por nombre.
func (r *ProductRepo) FindAll(_ context.Context) ([]*entity.Product, error) {
	defer r.s.lock(r.inTx)()
	return r.list(true), nil
}

// FindAllIncludingInactive todos los productos por nombre.
func (r *ProductRepo) FindAllIncludingInactive(_ context.Context) ([]*entity.Product, error) {
	defer r.s.lock(r.inTx)()
	return r.list(false), nil
}

func (r *ProductRepo) list(activeOnly bool) []*entity.Product {
	var list []*entity.Product
	for _, p := range r.s.st.products {
		p := p
		if activeOnly && !p.Active {
			continue
		}
		list = append(list, &p)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Name != list[j].Name {
			return list[i].Name < list[j].Name
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// Update reescribe nombre, unidad, precio, orden y bandera activa.
func (r *ProductRepo) Update(_ context.Context, product *entity.Product) (bool, error) {
	defer r.s.lock(r.inTx)()
	if !product.Valid() {
		return false, fmt.Errorf("actualizar producto %d: %w", product.ID, domain.ErrValidation)
	}
	cur, ok := r.s.st.products[product.ID]
	if !ok {
		return false, nil
	}
	cur.Name = strings.TrimSpace(product.Name)
	cur.Unit = product.Unit
	cur.Price = product.Price
	cur.Sort = product.Sort
	cur.Active = product.Active
	cur.UpdatedAt = r.s.now()
	r.s.st.products[product.ID] = cur
	return true, nil
}

// Activate marca el producto como activo.
func (r *ProductRepo) Activate(_ context.Context, id int64) (bool, error) {
	defer r.s.lock(r.inTx)()
	return r.setActive(id, true), nil
}

// Deactivate lo retira de los listados activos; su historial se conserva.
func (r *ProductRepo) Deactivate(_ context.Context, id int64) (bool, error) {
	defer r.s.lock(r.inTx)()
	return r.setActive(id, false), nil
}

func (r *ProductRepo) setActive(id int64, active bool) bool {
	p, ok := r.s.st.products[id]
	if !ok {
		return false
	}
	p.Active = active
	p.UpdatedAt = r.s.now()
	r.s.st.products[id] = p
	return true
}

// Exists indica si el producto existe (activo o no).
func (r *ProductRepo) Exists(_ context.Context, id int64) (bool, error) {
	defer r.s.lock(r.inTx)()
	_, ok := r.s.st.products[id]
	return ok, nil
}

// LockForUpdate no-op: Run ya serializa las transacciones.
func (r *ProductRepo) LockForUpdate(_ context.Context, _ []int64) error {
	return nil
}
