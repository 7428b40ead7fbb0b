package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/economato/stock-ledger/internal/domain"
	"github.com/economato/stock-ledger/internal/domain/entity"
	"github.com/economato/stock-ledger/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo implementación de LedgerRepository sobre PostgreSQL (usable con pool o tx).
// La tabla stock_ledger tiene unique en current_hash y en (product_id, sequence_number):
// la base rechaza cualquier intento de duplicar un eslabón de la cadena.
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

const ledgerColumns = `id, product_id, quantity_delta, resulting_stock, movement_type, description,
		sequence_number, previous_hash, current_hash, transaction_timestamp, acting_user_id, related_order_id, verified`

// Create persiste una entrada del ledger.
func (r *LedgerRepo) Create(ctx context.Context, e *entity.LedgerEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_ledger (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.ProductID, e.QuantityDelta, e.ResultingStock, string(e.MovementType), e.Description,
		e.SequenceNumber, e.PreviousHash, e.CurrentHash, e.TransactionTimestamp,
		e.ActingUserID, e.RelatedOrderID, e.Verified,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	return nil
}

// ListByProduct devuelve la cadena completa de un producto, ascendente por secuencia.
func (r *LedgerRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT ` + ledgerColumns + `
		FROM stock_ledger WHERE product_id = $1
		ORDER BY sequence_number ASC`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		var movementType string
		if err := rows.Scan(
			&e.ID, &e.ProductID, &e.QuantityDelta, &e.ResultingStock, &movementType, &e.Description,
			&e.SequenceNumber, &e.PreviousHash, &e.CurrentHash, &e.TransactionTimestamp,
			&e.ActingUserID, &e.RelatedOrderID, &e.Verified,
		); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		e.MovementType = entity.MovementType(movementType)
		list = append(list, &e)
	}
	return list, rows.Err()
}

// MarkAllVerified marca todas las entradas de un producto como verificadas.
// Única mutación permitida sobre entradas existentes.
func (r *LedgerRepo) MarkAllVerified(ctx context.Context, productID string) error {
	_, err := r.q.Exec(ctx,
		`UPDATE stock_ledger SET verified = true WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

// DeleteByProduct borra todo el historial de un producto (solo reset administrativo).
func (r *LedgerRepo) DeleteByProduct(ctx context.Context, productID string) (int64, error) {
	tag, err := r.q.Exec(ctx,
		`DELETE FROM stock_ledger WHERE product_id = $1`, productID)
	if err != nil {
		return 0, fmt.Errorf("delete ledger entries: %w", err)
	}
	return tag.RowsAffected(), nil
}
