package repository

import (
	"context"
	"time"

	"github.com/economato/stock-ledger/internal/domain/entity"
)

// SnapshotRepository define el puerto de persistencia para StockSnapshot.
// Update compara Revision y devuelve domain.ErrConflict si otra transacción
// escribió el snapshot entre la lectura y la escritura (lost update).
type SnapshotRepository interface {
	Get(ctx context.Context, productID string) (*entity.StockSnapshot, error)
	Create(ctx context.Context, snapshot *entity.StockSnapshot) error
	Update(ctx context.Context, snapshot *entity.StockSnapshot) error
	SetIntegrity(ctx context.Context, productID string, status entity.IntegrityStatus, verifiedAt time.Time) error
	Delete(ctx context.Context, productID string) error
	ListAll(ctx context.Context) ([]*entity.StockSnapshot, error)
}
