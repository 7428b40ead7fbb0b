package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrConflict           = errors.New("conflicto de concurrencia, reintentar con datos frescos")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrCorruptionDetected = errors.New("corrupción detectada en la cadena del ledger")
)

// InsufficientStockError lleva el detalle del déficit para el caller.
// Cumple errors.Is(err, ErrInsufficientStock).
type InsufficientStockError struct {
	ProductID string
	Current   decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente. Actual: %s, Solicitado: %s",
		e.Current.String(), e.Requested.Abs().String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// Deficit devuelve cuánto stock falta para completar el movimiento.
func (e *InsufficientStockError) Deficit() decimal.Decimal {
	return e.Requested.Abs().Sub(e.Current)
}
