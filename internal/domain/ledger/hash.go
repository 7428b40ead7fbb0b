// Package ledger contiene la lógica pura de la cadena: cálculo canónico del
// hash de cada entrada y su verificación contra los campos almacenados.
package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/economato/stock-ledger/internal/domain/entity"
)

// Scale escala decimal del ledger (NUMERIC(13,3) en la tabla). Todo delta y
// stock resultante se redondea a esta escala antes de persistir y de hashear,
// de modo que el digest recalculado tras un round-trip por la base de datos
// sea idéntico al original.
const Scale = 3

// ComputeEntryHash calcula el digest SHA-256 (hex) sobre la concatenación
// canónica de los campos de una entrada:
//
//	productID|delta|resultingStock|movementType|timestamp|sequence|previousHash
//
// Los decimales se renderizan con escala fija y el timestamp se normaliza a
// UTC RFC3339Nano. El verificador reproduce exactamente este procedimiento.
func ComputeEntryHash(
	productID string,
	quantityDelta decimal.Decimal,
	resultingStock decimal.Decimal,
	movementType entity.MovementType,
	timestamp time.Time,
	sequenceNumber int64,
	previousHash string,
) string {
	data := fmt.Sprintf("%s|%s|%s|%s|%s|%d|%s",
		productID,
		quantityDelta.StringFixed(Scale),
		resultingStock.StringFixed(Scale),
		movementType,
		timestamp.UTC().Format(time.RFC3339Nano),
		sequenceNumber,
		previousHash,
	)
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// RecomputeHash recalcula el digest de una entrada a partir de sus campos
// almacenados. Si no coincide con CurrentHash, la entrada fue alterada
// después de su creación.
func RecomputeHash(e *entity.LedgerEntry) string {
	return ComputeEntryHash(
		e.ProductID,
		e.QuantityDelta,
		e.ResultingStock,
		e.MovementType,
		e.TransactionTimestamp,
		e.SequenceNumber,
		e.PreviousHash,
	)
}

// ValidateHash comprueba que el hash almacenado coincide con el recalculado.
func ValidateHash(e *entity.LedgerEntry) bool {
	return e.CurrentHash == RecomputeHash(e)
}
