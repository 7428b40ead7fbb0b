package ledger_test

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	ledger "github.com/economato/stock-ledger/internal/application/ledger"
	"github.com/economato/stock-ledger/internal/domain"
	"github.com/economato/stock-ledger/internal/domain/entity"
	"github.com/economato/stock-ledger/internal/domain/repository"
	"github.com/economato/stock-ledger/pkg/logger"
)

// memoryStore emula la base de datos en memoria para los tests del motor.
// Los repos devuelven copias (como haría un scan de filas) y el runner de
// transacciones restaura el estado completo si la función devuelve error,
// emulando el rollback.
type memoryStore struct {
	products  map[string]*entity.Product
	snapshots map[string]*entity.StockSnapshot
	entries   map[string][]*entity.LedgerEntry
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		products:  make(map[string]*entity.Product),
		snapshots: make(map[string]*entity.StockSnapshot),
		entries:   make(map[string][]*entity.LedgerEntry),
	}
}

func (st *memoryStore) clone() *memoryStore {
	c := newMemoryStore()
	for id, p := range st.products {
		cp := *p
		c.products[id] = &cp
	}
	for id, s := range st.snapshots {
		cs := *s
		c.snapshots[id] = &cs
	}
	for id, list := range st.entries {
		copies := make([]*entity.LedgerEntry, len(list))
		for i, e := range list {
			ce := *e
			copies[i] = &ce
		}
		c.entries[id] = copies
	}
	return c
}

func (st *memoryStore) seedProduct(id, name string, stock string) *entity.Product {
	p := &entity.Product{
		ID:        id,
		Code:      "P-" + id,
		Name:      name,
		Category:  "despensa",
		Unit:      "kg",
		UnitPrice: decimal.RequireFromString("1.50"),
		Stock:     decimal.RequireFromString(stock),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	st.products[id] = p
	return p
}

// memTxRunner implementa ledger.TxRunner sobre el memoryStore con semántica
// todo-o-nada: clona el estado antes de ejecutar y lo restaura si hay error.
type memTxRunner struct {
	store *memoryStore
}

func (r *memTxRunner) Run(
	_ context.Context,
	fn func(repository.LedgerRepository, repository.SnapshotRepository, repository.ProductRepository) error,
) error {
	backup := r.store.clone()
	err := fn(
		&memLedgerRepo{store: r.store},
		&memSnapshotRepo{store: r.store},
		&memProductRepo{store: r.store},
	)
	if err != nil {
		*r.store = *backup
	}
	return err
}

type memLedgerRepo struct {
	store *memoryStore
}

func (r *memLedgerRepo) Create(_ context.Context, entry *entity.LedgerEntry) error {
	for _, list := range r.store.entries {
		for _, e := range list {
			if e.CurrentHash == entry.CurrentHash {
				return domain.ErrDuplicate
			}
		}
	}
	for _, e := range r.store.entries[entry.ProductID] {
		if e.SequenceNumber == entry.SequenceNumber {
			return domain.ErrDuplicate
		}
	}
	copied := *entry
	r.store.entries[entry.ProductID] = append(r.store.entries[entry.ProductID], &copied)
	return nil
}

func (r *memLedgerRepo) ListByProduct(_ context.Context, productID string) ([]*entity.LedgerEntry, error) {
	list := r.store.entries[productID]
	out := make([]*entity.LedgerEntry, len(list))
	for i, e := range list {
		copied := *e
		out[i] = &copied
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SequenceNumber < out[j].SequenceNumber })
	return out, nil
}

func (r *memLedgerRepo) MarkAllVerified(_ context.Context, productID string) error {
	for _, e := range r.store.entries[productID] {
		e.Verified = true
	}
	return nil
}

func (r *memLedgerRepo) DeleteByProduct(_ context.Context, productID string) (int64, error) {
	n := int64(len(r.store.entries[productID]))
	delete(r.store.entries, productID)
	return n, nil
}

type memSnapshotRepo struct {
	store *memoryStore
}

func (r *memSnapshotRepo) Get(_ context.Context, productID string) (*entity.StockSnapshot, error) {
	s, ok := r.store.snapshots[productID]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (r *memSnapshotRepo) Create(_ context.Context, snapshot *entity.StockSnapshot) error {
	if _, ok := r.store.snapshots[snapshot.ProductID]; ok {
		return domain.ErrDuplicate
	}
	snapshot.Revision = 0
	copied := *snapshot
	r.store.snapshots[snapshot.ProductID] = &copied
	return nil
}

func (r *memSnapshotRepo) Update(_ context.Context, snapshot *entity.StockSnapshot) error {
	current, ok := r.store.snapshots[snapshot.ProductID]
	if !ok || current.Revision != snapshot.Revision {
		return domain.ErrConflict
	}
	snapshot.Revision++
	copied := *snapshot
	r.store.snapshots[snapshot.ProductID] = &copied
	return nil
}

func (r *memSnapshotRepo) SetIntegrity(_ context.Context, productID string, status entity.IntegrityStatus, verifiedAt time.Time) error {
	s, ok := r.store.snapshots[productID]
	if !ok {
		return domain.ErrNotFound
	}
	s.IntegrityStatus = status
	v := verifiedAt
	s.LastVerified = &v
	s.Revision++
	return nil
}

func (r *memSnapshotRepo) Delete(_ context.Context, productID string) error {
	delete(r.store.snapshots, productID)
	return nil
}

func (r *memSnapshotRepo) ListAll(_ context.Context) ([]*entity.StockSnapshot, error) {
	ids := make([]string, 0, len(r.store.snapshots))
	for id := range r.store.snapshots {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*entity.StockSnapshot, 0, len(ids))
	for _, id := range ids {
		copied := *r.store.snapshots[id]
		out = append(out, &copied)
	}
	return out, nil
}

type memProductRepo struct {
	store *memoryStore
}

func (r *memProductRepo) Create(_ context.Context, product *entity.Product) error {
	if _, ok := r.store.products[product.ID]; ok {
		return domain.ErrDuplicate
	}
	copied := *product
	r.store.products[product.ID] = &copied
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	p, ok := r.store.products[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *memProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *memProductRepo) UpdateStock(_ context.Context, productID string, stock decimal.Decimal) error {
	p, ok := r.store.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Stock = stock
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memProductRepo) Update(_ context.Context, product *entity.Product) error {
	current, ok := r.store.products[product.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if current.Revision != product.Revision {
		return domain.ErrConflict
	}
	product.Revision++
	copied := *product
	copied.Stock = current.Stock // el stock solo lo escribe el motor
	r.store.products[product.ID] = &copied
	return nil
}

func (r *memProductRepo) List(_ context.Context, _, _ int) ([]*entity.Product, error) {
	ids := make([]string, 0, len(r.store.products))
	for id := range r.store.products {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]*entity.Product, 0, len(ids))
	for _, id := range ids {
		copied := *r.store.products[id]
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memProductRepo) Delete(_ context.Context, id string) error {
	delete(r.store.products, id)
	return nil
}

// newTestService monta el motor completo sobre el store en memoria.
func newTestService(store *memoryStore) *ledger.Service {
	return ledger.NewService(
		&memTxRunner{store: store},
		&memLedgerRepo{store: store},
		&memSnapshotRepo{store: store},
		logger.Nop(),
	)
}
