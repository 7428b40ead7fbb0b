package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/economato/stock-ledger/internal/domain"
	"github.com/economato/stock-ledger/internal/domain/entity"
	"github.com/economato/stock-ledger/internal/domain/repository"
)

// ProductUseCase CRUD de productos. El stock NO se toca desde aquí: ese campo
// solo lo escribe el motor del ledger. Las escrituras de los demás campos usan
// bloqueo optimista por Revision; una carrera perdida devuelve
// domain.ErrConflict y el caller debe reintentar con datos frescos.
type ProductUseCase struct {
	repo repository.ProductRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo}
}

// CreateProductInput datos para crear un producto. El stock inicial se fija
// directamente en la creación: la cadena del ledger arranca de ese valor.
type CreateProductInput struct {
	Code         string
	Name         string
	Category     string
	Unit         string
	UnitPrice    decimal.Decimal
	InitialStock decimal.Decimal
	MinimumStock decimal.Decimal
}

// Create registra un producto nuevo.
func (uc *ProductUseCase) Create(ctx context.Context, in CreateProductInput) (*entity.Product, error) {
	if in.Code == "" || in.Name == "" || in.Unit == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.InitialStock.IsNegative() || in.MinimumStock.IsNegative() {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		Code:         in.Code,
		Name:         in.Name,
		Category:     in.Category,
		Unit:         in.Unit,
		UnitPrice:    in.UnitPrice,
		Stock:        in.InitialStock,
		MinimumStock: in.MinimumStock,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetByID obtiene un producto, o domain.ErrNotFound.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return product, nil
}

// UpdateProductInput campos editables de un producto (nunca el stock).
type UpdateProductInput struct {
	Name         string
	Category     string
	Unit         string
	UnitPrice    decimal.Decimal
	MinimumStock decimal.Decimal
	Revision     int64 // revisión leída por el caller; detecta lost updates
}

// Update modifica los campos que no son de stock. Si la revisión enviada no
// coincide con la persistida, otra escritura ganó la carrera: ErrConflict.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in UpdateProductInput) (*entity.Product, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.Name == "" || in.Unit == "" {
		return nil, domain.ErrInvalidInput
	}

	product.Name = in.Name
	product.Category = in.Category
	product.Unit = in.Unit
	product.UnitPrice = in.UnitPrice
	product.MinimumStock = in.MinimumStock
	product.Revision = in.Revision
	product.UpdatedAt = time.Now()

	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// List devuelve productos paginados.
func (uc *ProductUseCase) List(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return uc.repo.List(ctx, limit, offset)
}

// Delete elimina un producto.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(ctx, id)
}
