package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/economato/stock-ledger/internal/domain"
	"github.com/economato/stock-ledger/internal/domain/entity"
	"github.com/economato/stock-ledger/internal/domain/repository"
)

var _ repository.SnapshotRepository = (*SnapshotRepo)(nil)

// SnapshotRepo implementación de SnapshotRepository sobre PostgreSQL (usable con pool o tx).
type SnapshotRepo struct {
	q Querier
}

// NewSnapshotRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSnapshotRepository(q Querier) *SnapshotRepo {
	return &SnapshotRepo{q: q}
}

const snapshotColumns = `product_id, current_stock, last_transaction_hash, last_sequence_number,
		integrity_status, last_updated, last_verified, revision`

// Get obtiene el snapshot de un producto, o nil si no tiene cadena.
func (r *SnapshotRepo) Get(ctx context.Context, productID string) (*entity.StockSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM stock_snapshot WHERE product_id = $1`
	snap, err := r.scanOne(r.q.QueryRow(ctx, query, productID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snap, nil
}

// Create inserta el snapshot inicial de un producto (revisión 0).
func (r *SnapshotRepo) Create(ctx context.Context, s *entity.StockSnapshot) error {
	query := `
		INSERT INTO stock_snapshot (product_id, current_stock, last_transaction_hash, last_sequence_number, integrity_status, last_updated, last_verified, revision)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0)`
	_, err := r.q.Exec(ctx, query,
		s.ProductID, s.CurrentStock, s.LastTransactionHash, s.LastSequenceNumber,
		string(s.IntegrityStatus), s.LastUpdated, s.LastVerified,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert snapshot: %w", err)
	}
	s.Revision = 0
	return nil
}

// Update escribe el snapshot comparando la revisión leída: si otra transacción
// lo escribió entre medias no afecta filas y devuelve domain.ErrConflict.
func (r *SnapshotRepo) Update(ctx context.Context, s *entity.StockSnapshot) error {
	query := `
		UPDATE stock_snapshot
		SET current_stock = $2, last_transaction_hash = $3, last_sequence_number = $4,
		    integrity_status = $5, last_updated = $6, revision = revision + 1
		WHERE product_id = $1 AND revision = $7`
	tag, err := r.q.Exec(ctx, query,
		s.ProductID, s.CurrentStock, s.LastTransactionHash, s.LastSequenceNumber,
		string(s.IntegrityStatus), s.LastUpdated, s.Revision,
	)
	if err != nil {
		return fmt.Errorf("update snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}
	s.Revision++
	return nil
}

// SetIntegrity actualiza el estado de integridad y la marca de verificación.
func (r *SnapshotRepo) SetIntegrity(ctx context.Context, productID string, status entity.IntegrityStatus, verifiedAt time.Time) error {
	query := `
		UPDATE stock_snapshot
		SET integrity_status = $2, last_verified = $3, revision = revision + 1
		WHERE product_id = $1`
	tag, err := r.q.Exec(ctx, query, productID, string(status), verifiedAt)
	if err != nil {
		return fmt.Errorf("set integrity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete elimina el snapshot de un producto (solo reset administrativo).
func (r *SnapshotRepo) Delete(ctx context.Context, productID string) error {
	_, err := r.q.Exec(ctx, `DELETE FROM stock_snapshot WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}

// ListAll devuelve todos los snapshots (productos con al menos una entrada).
func (r *SnapshotRepo) ListAll(ctx context.Context) ([]*entity.StockSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM stock_snapshot ORDER BY product_id`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var list []*entity.StockSnapshot
	for rows.Next() {
		snap, err := r.scanOne(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		list = append(list, snap)
	}
	return list, rows.Err()
}

func (r *SnapshotRepo) scanOne(row pgx.Row) (*entity.StockSnapshot, error) {
	var s entity.StockSnapshot
	var status string
	if err := row.Scan(
		&s.ProductID, &s.CurrentStock, &s.LastTransactionHash, &s.LastSequenceNumber,
		&status, &s.LastUpdated, &s.LastVerified, &s.Revision,
	); err != nil {
		return nil, err
	}
	s.IntegrityStatus = entity.IntegrityStatus(status)
	return &s, nil
}
