package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// IntegrityStatus estado de integridad de la cadena de un producto.
type IntegrityStatus string

const (
	IntegrityUnverified IntegrityStatus = "UNVERIFIED"
	IntegrityValid      IntegrityStatus = "VALID"
	IntegrityCorrupted  IntegrityStatus = "CORRUPTED"
)

// IsValid indica si el estado pertenece al conjunto cerrado.
func (s IntegrityStatus) IsValid() bool {
	switch s {
	case IntegrityUnverified, IntegrityValid, IntegrityCorrupted:
		return true
	}
	return false
}

// StockSnapshot es el estado denormalizado de la cadena de un producto:
// permite leer stock actual, último hash y última secuencia en O(1) sin
// recorrer el ledger. Se crea perezosamente con la primera entrada y se
// actualiza en la misma transacción que cada movimiento. Revision detecta
// lost updates si el snapshot se escribe concurrentemente.
type StockSnapshot struct {
	ProductID           string
	CurrentStock        decimal.Decimal // == resulting_stock de la última entrada
	LastTransactionHash string
	LastSequenceNumber  int64
	IntegrityStatus     IntegrityStatus
	LastUpdated         time.Time
	LastVerified        *time.Time
	Revision            int64
}
