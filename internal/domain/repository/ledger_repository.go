package repository

import (
	"context"

	"github.com/economato/stock-ledger/internal/domain/entity"
)

// LedgerRepository define el puerto de persistencia para las entradas del
// ledger. Las entradas son append-only: no existe Update ni Delete individual;
// DeleteByProduct solo lo usa la operación administrativa de reset y
// MarkAllVerified es la única mutación permitida (flag de verificación).
type LedgerRepository interface {
	Create(ctx context.Context, entry *entity.LedgerEntry) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.LedgerEntry, error) // ascendente por sequence_number
	MarkAllVerified(ctx context.Context, productID string) error
	DeleteByProduct(ctx context.Context, productID string) (int64, error)
}
