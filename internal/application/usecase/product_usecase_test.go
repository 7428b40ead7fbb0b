package usecase_test

import (
	"context"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/economato/stock-ledger/internal/application/usecase"
	"github.com/economato/stock-ledger/internal/domain"
	"github.com/economato/stock-ledger/internal/domain/entity"
)

// fakeProductRepo repo de productos en memoria con bloqueo optimista, como el
// real: Update compara Revision y devuelve ErrConflict si no coincide.
type fakeProductRepo struct {
	products map[string]*entity.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*entity.Product)}
}

func (r *fakeProductRepo) Create(_ context.Context, p *entity.Product) error {
	for _, existing := range r.products {
		if existing.Code == p.Code {
			return domain.ErrDuplicate
		}
	}
	copied := *p
	r.products[p.ID] = &copied
	return nil
}

func (r *fakeProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *fakeProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *fakeProductRepo) UpdateStock(_ context.Context, id string, stock decimal.Decimal) error {
	p, ok := r.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.Stock = stock
	return nil
}

func (r *fakeProductRepo) Update(_ context.Context, p *entity.Product) error {
	current, ok := r.products[p.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if current.Revision != p.Revision {
		return domain.ErrConflict
	}
	p.Revision++
	copied := *p
	copied.Stock = current.Stock
	r.products[p.ID] = &copied
	return nil
}

func (r *fakeProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	ids := make([]string, 0, len(r.products))
	for id := range r.products {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*entity.Product, 0)
	for i, id := range ids {
		if i < offset {
			continue
		}
		if len(out) == limit {
			break
		}
		copied := *r.products[id]
		out = append(out, &copied)
	}
	return out, nil
}

func (r *fakeProductRepo) Delete(_ context.Context, id string) error {
	delete(r.products, id)
	return nil
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestProductUseCase_CreateYGet(t *testing.T) {
	repo := newFakeProductRepo()
	uc := usecase.NewProductUseCase(repo)
	ctx := context.Background()

	created, err := uc.Create(ctx, usecase.CreateProductInput{
		Code:         "HAR-001",
		Name:         "Harina de trigo",
		Category:     "despensa",
		Unit:         "kg",
		UnitPrice:    dec("0.85"),
		InitialStock: dec("100"),
		MinimumStock: dec("20"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := uc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Harina de trigo", got.Name)
	assert.True(t, got.Stock.Equal(dec("100")))
}

func TestProductUseCase_CreateInvalido(t *testing.T) {
	uc := usecase.NewProductUseCase(newFakeProductRepo())
	ctx := context.Background()

	_, err := uc.Create(ctx, usecase.CreateProductInput{Name: "sin código", Unit: "kg"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, usecase.CreateProductInput{
		Code: "X-1", Name: "Stock negativo", Unit: "kg",
		InitialStock: dec("-5"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductUseCase_UpdateNoTocaElStock(t *testing.T) {
	repo := newFakeProductRepo()
	uc := usecase.NewProductUseCase(repo)
	ctx := context.Background()

	created, err := uc.Create(ctx, usecase.CreateProductInput{
		Code: "ACE-001", Name: "Aceite", Unit: "l",
		UnitPrice: dec("4.20"), InitialStock: dec("40"),
	})
	require.NoError(t, err)

	_, err = uc.Update(ctx, created.ID, usecase.UpdateProductInput{
		Name:      "Aceite de oliva virgen",
		Unit:      "l",
		UnitPrice: dec("4.80"),
		Revision:  0,
	})
	require.NoError(t, err)

	got, err := uc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aceite de oliva virgen", got.Name)
	assert.True(t, got.Stock.Equal(dec("40")), "el stock solo lo escribe el motor del ledger")
	assert.Equal(t, int64(1), got.Revision)
}

// Lost update: dos editores leen la revisión 0; el segundo en escribir pierde.
func TestProductUseCase_RevisionObsoletaDevuelveConflict(t *testing.T) {
	repo := newFakeProductRepo()
	uc := usecase.NewProductUseCase(repo)
	ctx := context.Background()

	created, err := uc.Create(ctx, usecase.CreateProductInput{
		Code: "SAL-001", Name: "Sal", Unit: "kg", UnitPrice: dec("0.30"),
	})
	require.NoError(t, err)

	_, err = uc.Update(ctx, created.ID, usecase.UpdateProductInput{
		Name: "Sal fina", Unit: "kg", Revision: 0,
	})
	require.NoError(t, err)

	_, err = uc.Update(ctx, created.ID, usecase.UpdateProductInput{
		Name: "Sal gorda", Unit: "kg", Revision: 0,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestProductUseCase_DeleteInexistente(t *testing.T) {
	uc := usecase.NewProductUseCase(newFakeProductRepo())
	err := uc.Delete(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
