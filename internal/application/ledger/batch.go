package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/economato/stock-ledger/internal/domain"
	"github.com/economato/stock-ledger/internal/domain/entity"
	"github.com/economato/stock-ledger/internal/domain/repository"
)

// BatchMovementItem un movimiento dentro de un lote.
type BatchMovementItem struct {
	ProductID     string
	QuantityDelta decimal.Decimal
	MovementType  entity.MovementType
	Description   string
}

// BatchInput lote de movimientos a aplicar como unidad todo-o-nada.
// Reason documenta la operación (p. ej. rollback de una receta errónea) y se
// usa como descripción de los ítems que no traen una propia.
type BatchInput struct {
	Movements      []BatchMovementItem
	Reason         string
	ActingUserID   *string
	RelatedOrderID *string
}

// BatchResult resultado de un lote. Si Success es false no existe ninguna
// entrada nueva: la transacción completa se revirtió.
type BatchResult struct {
	Success        bool   `json:"success"`
	ProcessedCount int    `json:"processed_count"`
	TotalCount     int    `json:"total_count"`
	Message        string `json:"message"`
	ErrorDetail    string `json:"error_detail,omitempty"`
	Entries        []*entity.LedgerEntry `json:"-"`
}

// ApplyBatch aplica los movimientos en orden dentro de una única transacción
// que puede abarcar varios productos. Si cualquiera falla (típicamente stock
// insuficiente) se revierte todo: ninguna entrada, ningún snapshot, ningún
// stock cambia. Un lote vacío se rechaza antes de hacer trabajo alguno.
func (s *Service) ApplyBatch(ctx context.Context, input BatchInput) (*BatchResult, error) {
	if len(input.Movements) == 0 {
		return nil, fmt.Errorf("%w: el lote no contiene movimientos", domain.ErrInvalidInput)
	}

	// Validación completa antes de abrir la transacción.
	for _, item := range input.Movements {
		mv := MovementInput{
			ProductID:     item.ProductID,
			QuantityDelta: item.QuantityDelta,
			MovementType:  item.MovementType,
			Description:   item.description(input.Reason),
		}
		if err := mv.validate(); err != nil {
			return nil, err
		}
	}

	total := len(input.Movements)
	var entries []*entity.LedgerEntry

	err := s.txRunner.Run(ctx, func(
		ledgerRepo repository.LedgerRepository,
		snapRepo repository.SnapshotRepository,
		productRepo repository.ProductRepository,
	) error {
		now := time.Now()
		for _, item := range input.Movements {
			entry, err := s.recordInTx(ctx, ledgerRepo, snapRepo, productRepo, MovementInput{
				ProductID:      item.ProductID,
				QuantityDelta:  item.QuantityDelta,
				MovementType:   item.MovementType,
				Description:    item.description(input.Reason),
				ActingUserID:   input.ActingUserID,
				RelatedOrderID: input.RelatedOrderID,
			}, now)
			if err != nil {
				return fmt.Errorf("movimiento de producto %s: %w", item.ProductID, err)
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		s.log.Warn().Err(err).Int("total", total).Msg("lote revertido")
		return &BatchResult{
			Success:        false,
			ProcessedCount: 0,
			TotalCount:     total,
			Message:        "Error en operación batch - todos los cambios han sido revertidos",
			ErrorDetail:    err.Error(),
		}, err
	}

	s.log.Info().Int("processed", len(entries)).Msg("lote aplicado")
	return &BatchResult{
		Success:        true,
		ProcessedCount: len(entries),
		TotalCount:     total,
		Message:        fmt.Sprintf("Operación batch completada: %d movimientos procesados exitosamente", len(entries)),
		Entries:        entries,
	}, nil
}

// description devuelve la descripción del ítem, o la razón del lote si el
// ítem no trae una propia.
func (it BatchMovementItem) description(reason string) string {
	if it.Description != "" {
		return it.Description
	}
	return reason
}
