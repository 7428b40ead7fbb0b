package ledger

import (
	"context"

	"github.com/economato/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza atomicidad para el motor del ledger:
// entrada, snapshot y stock del producto se confirman o se revierten juntos.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		ledgerRepo repository.LedgerRepository,
		snapshotRepo repository.SnapshotRepository,
		productRepo repository.ProductRepository,
	) error) error
}
