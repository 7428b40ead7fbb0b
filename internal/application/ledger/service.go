package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/economato/stock-ledger/internal/domain"
	"github.com/economato/stock-ledger/internal/domain/entity"
	hashchain "github.com/economato/stock-ledger/internal/domain/ledger"
	"github.com/economato/stock-ledger/internal/domain/repository"
	"github.com/economato/stock-ledger/pkg/logger"
)

// Service es el motor del stock ledger: registra movimientos encadenados por
// hash, verifica la integridad de las cadenas, aplica lotes atómicos y
// restablece historiales. Toda mutación de stock de un producto pasa por aquí.
type Service struct {
	txRunner   TxRunner
	ledgerRepo repository.LedgerRepository   // lecturas fuera de tx
	snapRepo   repository.SnapshotRepository // lecturas fuera de tx
	log        *logger.Logger
}

// NewService construye el motor del ledger.
func NewService(
	txRunner TxRunner,
	ledgerRepo repository.LedgerRepository,
	snapRepo repository.SnapshotRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		txRunner:   txRunner,
		ledgerRepo: ledgerRepo,
		snapRepo:   snapRepo,
		log:        log,
	}
}

// MovementInput entrada para registrar un movimiento de stock.
type MovementInput struct {
	ProductID      string
	QuantityDelta  decimal.Decimal // positivo suma, negativo resta
	MovementType   entity.MovementType
	Description    string
	ActingUserID   *string // nil para movimientos de sistema
	RelatedOrderID *string // nil si no viene de una orden
}

// validate aplica las reglas de entrada del motor. Un delta cero se rechaza
// siempre: no se registran entradas no-op en la cadena.
func (in MovementInput) validate() error {
	if in.ProductID == "" {
		return domain.ErrInvalidInput
	}
	if !in.MovementType.IsValid() {
		return domain.ErrInvalidInput
	}
	if in.QuantityDelta.Round(hashchain.Scale).IsZero() {
		return domain.ErrInvalidInput
	}
	if len(in.Description) > entity.MaxDescriptionLen {
		return domain.ErrInvalidInput
	}
	return nil
}

// RecordMovement registra un movimiento como unidad atómica: bloquea la fila
// del producto, lee (o crea) el snapshot, calcula el stock resultante, asigna
// secuencia y hashes, persiste la entrada y sincroniza snapshot y stock del
// producto. Si el stock resultante fuera negativo no se escribe nada.
func (s *Service) RecordMovement(ctx context.Context, input MovementInput) (*entity.LedgerEntry, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var entry *entity.LedgerEntry
	err := s.txRunner.Run(ctx, func(
		ledgerRepo repository.LedgerRepository,
		snapRepo repository.SnapshotRepository,
		productRepo repository.ProductRepository,
	) error {
		var err error
		entry, err = s.recordInTx(ctx, ledgerRepo, snapRepo, productRepo, input, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("product_id", entry.ProductID).
		Str("delta", entry.QuantityDelta.String()).
		Str("type", string(entry.MovementType)).
		Int64("sequence", entry.SequenceNumber).
		Str("hash", shortHash(entry.CurrentHash)).
		Msg("movimiento registrado")

	return entry, nil
}

// recordInTx es la primitiva del motor sobre repositorios atados a una
// transacción en curso. El lote atómico la invoca una vez por movimiento
// dentro de una única tx. Asume input ya validado.
func (s *Service) recordInTx(
	ctx context.Context,
	ledgerRepo repository.LedgerRepository,
	snapRepo repository.SnapshotRepository,
	productRepo repository.ProductRepository,
	input MovementInput,
	now time.Time,
) (*entity.LedgerEntry, error) {
	// Candado por producto: SELECT ... FOR UPDATE. Serializa movimientos
	// concurrentes del mismo producto; productos distintos no se bloquean.
	product, err := productRepo.GetForUpdate(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}

	snap, err := snapRepo.Get(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		snap, err = s.createInitialSnapshot(ctx, snapRepo, product, now)
		if err != nil {
			return nil, err
		}
	}

	delta := input.QuantityDelta.Round(hashchain.Scale)
	newStock := snap.CurrentStock.Add(delta)
	if newStock.IsNegative() {
		return nil, &domain.InsufficientStockError{
			ProductID: input.ProductID,
			Current:   snap.CurrentStock,
			Requested: delta,
		}
	}

	sequence := snap.LastSequenceNumber + 1
	previousHash := snap.LastTransactionHash // GENESIS cuando sequence == 1

	// Timestamp truncado a microsegundos: es la precisión de timestamptz,
	// y el hash debe ser reproducible tras el round-trip por la base.
	timestamp := now.UTC().Truncate(time.Microsecond)

	currentHash := hashchain.ComputeEntryHash(
		input.ProductID, delta, newStock, input.MovementType,
		timestamp, sequence, previousHash,
	)

	entry := &entity.LedgerEntry{
		ID:                   uuid.New().String(),
		ProductID:            input.ProductID,
		QuantityDelta:        delta,
		ResultingStock:       newStock,
		MovementType:         input.MovementType,
		Description:          input.Description,
		SequenceNumber:       sequence,
		PreviousHash:         previousHash,
		CurrentHash:          currentHash,
		TransactionTimestamp: timestamp,
		ActingUserID:         input.ActingUserID,
		RelatedOrderID:       input.RelatedOrderID,
		Verified:             false,
	}
	if err := ledgerRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	snap.CurrentStock = newStock
	snap.LastTransactionHash = currentHash
	snap.LastSequenceNumber = sequence
	snap.LastUpdated = timestamp
	if err := snapRepo.Update(ctx, snap); err != nil {
		return nil, err
	}

	// Sincroniza el campo de stock del producto con el resultado de la cadena.
	if err := productRepo.UpdateStock(ctx, input.ProductID, newStock); err != nil {
		return nil, err
	}

	return entry, nil
}

// createInitialSnapshot crea el snapshot perezoso de un producto que aún no
// tiene cadena: secuencia 0, hash GENESIS y stock sembrado desde el campo del
// producto (tras un reset la cadena nueva arranca del stock que quedó).
func (s *Service) createInitialSnapshot(
	ctx context.Context,
	snapRepo repository.SnapshotRepository,
	product *entity.Product,
	now time.Time,
) (*entity.StockSnapshot, error) {
	s.log.Info().Str("product_id", product.ID).Msg("creando snapshot inicial")

	snap := &entity.StockSnapshot{
		ProductID:           product.ID,
		CurrentStock:        product.Stock,
		LastTransactionHash: entity.GenesisHash,
		LastSequenceNumber:  0,
		IntegrityStatus:     entity.IntegrityUnverified,
		LastUpdated:         now.UTC().Truncate(time.Microsecond),
	}
	if err := snapRepo.Create(ctx, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

// GetHistory devuelve todas las entradas de un producto, ascendentes por
// número de secuencia.
func (s *Service) GetHistory(ctx context.Context, productID string) ([]*entity.LedgerEntry, error) {
	return s.ledgerRepo.ListByProduct(ctx, productID)
}

// GetSnapshot devuelve el snapshot O(1) de un producto, o nil si el producto
// no tiene cadena.
func (s *Service) GetSnapshot(ctx context.Context, productID string) (*entity.StockSnapshot, error) {
	return s.snapRepo.Get(ctx, productID)
}

// shortHash abrevia un hash para logs y mensajes (GENESIS cabe entero).
func shortHash(h string) string {
	if len(h) <= 8 {
		return h
	}
	return h[:8]
}
