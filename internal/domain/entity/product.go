package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del economato (ingrediente o insumo de cocina).
// Stock es el stock actual sincronizado por el motor del ledger: NINGÚN otro
// componente debe escribirlo directamente (se actualiza junto con cada entrada
// del ledger, en la misma transacción). Revision es el contador de versiones
// para bloqueo optimista sobre los campos que no son de stock.
type Product struct {
	ID           string
	Code         string // código único del producto
	Name         string
	Category     string // lácteos, carnes, secos, etc.
	Unit         string // kg, l, ud...
	UnitPrice    decimal.Decimal
	Stock        decimal.Decimal // solo lo escribe el motor del ledger
	MinimumStock decimal.Decimal
	Hidden       bool
	Revision     int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
