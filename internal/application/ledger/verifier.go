package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/economato/stock-ledger/internal/domain/entity"
	hashchain "github.com/economato/stock-ledger/internal/domain/ledger"
	"github.com/economato/stock-ledger/internal/domain/repository"
)

// IntegrityResult resultado de verificar la cadena de un producto.
type IntegrityResult struct {
	ProductID    string   `json:"product_id"`
	Valid        bool     `json:"valid"`
	Message      string   `json:"message"`
	Errors       []string `json:"errors,omitempty"`
	TotalEntries int      `json:"total_entries"`
}

// VerifyChain recorre la cadena completa de un producto recalculando hashes y
// validando enlaces, secuencia y continuidad aritmética. No se detiene en el
// primer error: acumula todas las discrepancias para revisión forense. En la
// misma transacción marca las entradas como verificadas (éxito) y actualiza el
// estado de integridad del snapshot (VALID o CORRUPTED).
func (s *Service) VerifyChain(ctx context.Context, productID string) (*IntegrityResult, error) {
	s.log.Debug().Str("product_id", productID).Msg("verificando integridad de la cadena")

	var result *IntegrityResult
	err := s.txRunner.Run(ctx, func(
		ledgerRepo repository.LedgerRepository,
		snapRepo repository.SnapshotRepository,
		_ repository.ProductRepository,
	) error {
		chain, err := ledgerRepo.ListByProduct(ctx, productID)
		if err != nil {
			return err
		}
		if len(chain) == 0 {
			result = &IntegrityResult{
				ProductID: productID,
				Valid:     true,
				Message:   "No hay transacciones para este producto",
			}
			return nil
		}

		discrepancies := inspectChain(chain)
		now := time.Now().UTC()

		if len(discrepancies) == 0 {
			if err := ledgerRepo.MarkAllVerified(ctx, productID); err != nil {
				return err
			}
			if err := snapRepo.SetIntegrity(ctx, productID, entity.IntegrityValid, now); err != nil {
				return err
			}
			result = &IntegrityResult{
				ProductID:    productID,
				Valid:        true,
				Message:      fmt.Sprintf("Cadena íntegra: %d transacciones verificadas", len(chain)),
				TotalEntries: len(chain),
			}
			return nil
		}

		if err := snapRepo.SetIntegrity(ctx, productID, entity.IntegrityCorrupted, now); err != nil {
			return err
		}
		result = &IntegrityResult{
			ProductID:    productID,
			Valid:        false,
			Message:      fmt.Sprintf("CORRUPCIÓN DETECTADA: %d errores", len(discrepancies)),
			Errors:       discrepancies,
			TotalEntries: len(chain),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Valid {
		s.log.Info().Str("product_id", productID).Int("entries", result.TotalEntries).
			Msg("cadena íntegra")
	} else {
		s.log.Error().Str("product_id", productID).Int("errors", len(result.Errors)).
			Msg("corrupción detectada en la cadena")
	}
	return result, nil
}

// inspectChain valida una cadena ya ordenada por secuencia y devuelve todas
// las discrepancias encontradas. Función pura, sin efectos.
func inspectChain(chain []*entity.LedgerEntry) []string {
	var errs []string
	expectedPrevious := entity.GenesisHash

	for i, tx := range chain {
		if tx.PreviousHash != expectedPrevious {
			errs = append(errs, fmt.Sprintf(
				"TX#%d: previousHash incorrecto. Esperado: %s, Encontrado: %s",
				tx.SequenceNumber, shortHash(expectedPrevious), shortHash(tx.PreviousHash)))
		}

		recalculated := hashchain.RecomputeHash(tx)
		if recalculated != tx.CurrentHash {
			errs = append(errs, fmt.Sprintf(
				"TX#%d: hash corrupto. Esperado: %s, Encontrado: %s. Datos: delta=%s, stock=%s",
				tx.SequenceNumber, shortHash(recalculated), shortHash(tx.CurrentHash),
				tx.QuantityDelta.String(), tx.ResultingStock.String()))
		}

		if tx.SequenceNumber != int64(i+1) {
			errs = append(errs, fmt.Sprintf(
				"TX#%d: secuencia rota. Esperado: %d", tx.SequenceNumber, i+1))
		}

		// Continuidad aritmética: detecta una entrada reescrita con hash
		// recalculado pero que rompe la suma acumulada. La entrada 1 no tiene
		// base anterior (tras un reset la cadena arranca de un stock no nulo).
		if i > 0 {
			expected := chain[i-1].ResultingStock.Add(tx.QuantityDelta)
			if !tx.ResultingStock.Equal(expected) {
				errs = append(errs, fmt.Sprintf(
					"TX#%d: continuidad aritmética rota. Esperado: %s, Encontrado: %s",
					tx.SequenceNumber, expected.String(), tx.ResultingStock.String()))
			}
		}

		expectedPrevious = tx.CurrentHash
	}

	return errs
}

// VerifyAllChains verifica todos los productos con al menos una entrada.
// Devuelve un resultado por producto; pensada para auditorías globales.
func (s *Service) VerifyAllChains(ctx context.Context) ([]*IntegrityResult, error) {
	s.log.Info().Msg("verificando integridad de todas las cadenas")

	snapshots, err := s.snapRepo.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*IntegrityResult, 0, len(snapshots))
	valid := 0
	for _, snap := range snapshots {
		result, err := s.VerifyChain(ctx, snap.ProductID)
		if err != nil {
			return nil, err
		}
		if result.Valid {
			valid++
		}
		results = append(results, result)
	}

	s.log.Info().Int("valid", valid).Int("total", len(results)).
		Msg("verificación global completada")
	return results, nil
}
