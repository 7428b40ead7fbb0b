package ledger

import (
	"context"
	"fmt"

	"github.com/economato/stock-ledger/internal/domain"
	"github.com/economato/stock-ledger/internal/domain/repository"
)

// ResetLedger elimina PERMANENTEMENTE todo el historial y el snapshot de un
// producto en una transacción. No toca el campo de stock del producto: el
// siguiente movimiento abre una cadena nueva (secuencia 1, hash GENESIS)
// partiendo del stock que quedó. Operación administrativa y destructiva; la
// autorización es responsabilidad del caller.
func (s *Service) ResetLedger(ctx context.Context, productID string) (string, error) {
	var summary string
	err := s.txRunner.Run(ctx, func(
		ledgerRepo repository.LedgerRepository,
		snapRepo repository.SnapshotRepository,
		productRepo repository.ProductRepository,
	) error {
		product, err := productRepo.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}

		s.log.Warn().Str("product_id", productID).Msg("restableciendo historial del ledger")

		deleted, err := ledgerRepo.DeleteByProduct(ctx, productID)
		if err != nil {
			return err
		}
		if err := snapRepo.Delete(ctx, productID); err != nil {
			return err
		}

		summary = fmt.Sprintf(
			"Historial restablecido correctamente. %d transacciones eliminadas. "+
				"El producto %s vuelve a empezar con stock limpio: %s %s",
			deleted, product.Name, product.Stock.String(), product.Unit)

		s.log.Info().Str("product_id", productID).Int64("deleted", deleted).
			Str("stock", product.Stock.String()).Msg("historial restablecido")
		return nil
	})
	if err != nil {
		return "", err
	}
	return summary, nil
}
