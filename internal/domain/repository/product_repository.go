package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/economato/stock-ledger/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
// GetForUpdate bloquea la fila (SELECT ... FOR UPDATE) y es el candado
// por-producto del motor del ledger: dos movimientos concurrentes sobre el
// mismo producto se serializan aquí; productos distintos no se bloquean.
// UpdateStock solo debe invocarlo el motor del ledger. Update cubre los campos
// que no son de stock con bloqueo optimista por Revision (domain.ErrConflict).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Product, error)
	UpdateStock(ctx context.Context, productID string, stock decimal.Decimal) error
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, limit, offset int) ([]*entity.Product, error)
	Delete(ctx context.Context, id string) error
}
