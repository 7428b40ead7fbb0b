package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/economato/stock-ledger/internal/domain"
	"github.com/economato/stock-ledger/internal/domain/entity"
	"github.com/economato/stock-ledger/internal/domain/repository"
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

const productColumns = `id, code, name, category, unit, unit_price, stock, minimum_stock, hidden, revision, created_at, updated_at`

// Create persiste un producto nuevo con revisión 0.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, code, name, category, unit, unit_price, stock, minimum_stock, hidden, revision, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.Code, p.Name, p.Category, p.Unit, p.UnitPrice, p.Stock,
		p.MinimumStock, p.Hidden, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert product: %w", err)
	}
	p.Revision = 0
	return nil
}

// GetByID obtiene un producto por ID, o nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetForUpdate obtiene el producto bloqueando su fila (SELECT ... FOR UPDATE).
// Es el candado por producto del motor del ledger: se mantiene hasta el commit
// de la transacción en la que se ejecuta.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *ProductRepo) getOne(ctx context.Context, query string, args ...any) (*entity.Product, error) {
	var p entity.Product
	err := r.q.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.Code, &p.Name, &p.Category, &p.Unit, &p.UnitPrice, &p.Stock,
		&p.MinimumStock, &p.Hidden, &p.Revision, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// UpdateStock sincroniza el campo de stock con el resultado del ledger.
// Solo el motor del ledger debe llamarlo, dentro de su transacción y con la
// fila ya bloqueada por GetForUpdate; no toca la revisión de los campos
// editables.
func (r *ProductRepo) UpdateStock(ctx context.Context, productID string, stock decimal.Decimal) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE products SET stock = $2, updated_at = now() WHERE id = $1`,
		productID, stock)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Update escribe los campos que no son de stock con bloqueo optimista: si la
// revisión no coincide, otra escritura ganó la carrera -> domain.ErrConflict.
func (r *ProductRepo) Update(ctx context.Context, p *entity.Product) error {
	query := `
		UPDATE products
		SET name = $2, category = $3, unit = $4, unit_price = $5, minimum_stock = $6,
		    hidden = $7, updated_at = $8, revision = revision + 1
		WHERE id = $1 AND revision = $9`
	tag, err := r.q.Exec(ctx, query,
		p.ID, p.Name, p.Category, p.Unit, p.UnitPrice, p.MinimumStock,
		p.Hidden, p.UpdatedAt, p.Revision,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguir inexistente de carrera perdida.
		existing, err := r.GetByID(ctx, p.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			return domain.ErrNotFound
		}
		return domain.ErrConflict
	}
	p.Revision++
	return nil
}

// List devuelve productos visibles, paginados y ordenados por nombre.
func (r *ProductRepo) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE NOT hidden ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var list []*entity.Product
	for rows.Next() {
		var p entity.Product
		if err := rows.Scan(
			&p.ID, &p.Code, &p.Name, &p.Category, &p.Unit, &p.UnitPrice, &p.Stock,
			&p.MinimumStock, &p.Hidden, &p.Revision, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// Delete elimina un producto. Falla con violación de FK si el producto tiene
// historial en el ledger; en ese caso usar el reset administrativo primero.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
