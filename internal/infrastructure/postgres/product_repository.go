package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Mayorista-api/internal/domain"
	"github.com/jhoicas/Mayorista-api/internal/domain/entity"
	"github.com/jhoicas/Mayorista-api/internal/domain/money"
	"github.com/jhoicas/Mayorista-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, name, unit, price, sort, is_active, created_at, updated_at`

// Create persiste un nuevo producto; unidad por defecto "кг".
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) (int64, error) {
	name := strings.TrimSpace(product.Name)
	if name == "" {
		return 0, fmt.Errorf("crear producto: nombre vacío: %w", domain.ErrValidation)
	}
	unit := strings.TrimSpace(product.Unit)
	if unit == "" {
		unit = entity.DefaultUnit
	}
	query := `
		INSERT INTO products (name, unit, price, sort, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`
	err := r.q.QueryRow(ctx, query, name, unit, money.Format(product.Price), product.Sort, product.Active).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("crear producto %q: %w", name, domain.ErrDuplicate)
		}
		return 0, storageErr("insert product", err)
	}
	product.Name, product.Unit = name, unit
	return product.ID, nil
}

// FindByID obtiene un producto por ID.
func (r *ProductRepo) FindByID(ctx context.Context, id int64) (*entity.Product, error) {
	p, err := scanProduct(r.q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, storageErr("get product", err)
	}
	return p, nil
}

// FindAll productos activos, por orden manual y nombre.
func (r *ProductRepo) FindAll(ctx context.Context) ([]*entity.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE is_active ORDER BY sort, name, id`)
}

// FindAllIncludingInactive todos los productos.
func (r *ProductRepo) FindAllIncludingInactive(ctx context.Context) ([]*entity.Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products ORDER BY sort, name, id`)
}

func (r *ProductRepo) list(ctx context.Context, query string) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, storageErr("list products", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, storageErr("scan product", err)
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list products", err)
	}
	return list, nil
}

// Update actualiza nombre, unidad, precio y orden.
func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) (bool, error) {
	name := strings.TrimSpace(product.Name)
	if product.ID <= 0 || name == "" {
		return false, fmt.Errorf("actualizar producto %d: %w", product.ID, domain.ErrValidation)
	}
	unit := strings.TrimSpace(product.Unit)
	if unit == "" {
		unit = entity.DefaultUnit
	}
	tag, err := r.q.Exec(ctx, `
		UPDATE products SET name = $2, unit = $3, price = $4, sort = $5, updated_at = now()
		WHERE id = $1`,
		product.ID, name, unit, money.Format(product.Price), product.Sort)
	if err != nil {
		if isUniqueViolation(err) {
			return false, fmt.Errorf("actualizar producto %d: %w", product.ID, domain.ErrDuplicate)
		}
		return false, storageErr("update product", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Activate marca el producto como activo.
func (r *ProductRepo) Activate(ctx context.Context, id int64) (bool, error) {
	return r.setActive(ctx, id, true)
}

// Deactivate lo saca de los listados activos; el historial se conserva.
func (r *ProductRepo) Deactivate(ctx context.Context, id int64) (bool, error) {
	return r.setActive(ctx, id, false)
}

func (r *ProductRepo) setActive(ctx context.Context, id int64, active bool) (bool, error) {
	tag, err := r.q.Exec(ctx, `UPDATE products SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return false, storageErr("set product active", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Exists true si el producto existe (activo o no).
func (r *ProductRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var ok bool
	if err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&ok); err != nil {
		return false, storageErr("product exists", err)
	}
	return ok, nil
}

// LockForUpdate bloquea las filas de los productos en orden ascendente de ID.
// Las ventas concurrentes del mismo producto esperan aquí antes de leer el saldo.
func (r *ProductRepo) LockForUpdate(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	rows, err := r.q.Query(ctx, `SELECT id FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`, ids)
	if err != nil {
		return storageErr("lock products", err)
	}
	defer rows.Close()

	found := 0
	for rows.Next() {
		found++
	}
	if err := rows.Err(); err != nil {
		return storageErr("lock products", err)
	}
	if found != len(ids) {
		return fmt.Errorf("bloquear productos %v: %w", ids, domain.ErrNotFound)
	}
	return nil
}

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var (
		p     entity.Product
		price string
	)
	if err := row.Scan(&p.ID, &p.Name, &p.Unit, &price, &p.Sort, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Price = money.Parse(price)
	return &p, nil
}
