package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementType tipo cerrado de movimiento de stock.
type MovementType string

const (
	MovementEntrada MovementType = "ENTRADA" // entrada de stock
	MovementSalida  MovementType = "SALIDA"  // salida de stock
	MovementAjuste  MovementType = "AJUSTE"  // ajuste de inventario
)

// IsValid indica si el tipo pertenece al conjunto cerrado.
func (m MovementType) IsValid() bool {
	switch m {
	case MovementEntrada, MovementSalida, MovementAjuste:
		return true
	}
	return false
}

// GenesisHash es el previous_hash centinela de la primera entrada de cada cadena.
const GenesisHash = "GENESIS"

// MaxDescriptionLen longitud máxima de la descripción de un movimiento.
const MaxDescriptionLen = 500

// LedgerEntry es una entrada inmutable del ledger de stock: un movimiento de
// un producto, con su posición en la cadena (sequence_number) y el enlace
// criptográfico al movimiento anterior (previous_hash -> current_hash).
// Una vez creada nunca se actualiza ni se borra en operación normal; la única
// excepción es el flag Verified, que marca el verificador de integridad.
type LedgerEntry struct {
	ID                   string
	ProductID            string
	QuantityDelta        decimal.Decimal // positivo = entrada, negativo = salida
	ResultingStock       decimal.Decimal // stock tras aplicar el delta, nunca negativo
	MovementType         MovementType
	Description          string
	SequenceNumber       int64  // 1..N por producto, sin huecos
	PreviousHash         string // current_hash de la entrada anterior o GENESIS
	CurrentHash          string // sha256 hex, único
	TransactionTimestamp time.Time
	ActingUserID         *string // nil en movimientos de sistema
	RelatedOrderID       *string // nil si no viene de una orden
	Verified             bool
}
