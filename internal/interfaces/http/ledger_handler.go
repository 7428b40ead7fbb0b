package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/economato/stock-ledger/internal/application/dto"
	appledger "github.com/economato/stock-ledger/internal/application/ledger"
	"github.com/economato/stock-ledger/internal/domain"
	"github.com/economato/stock-ledger/internal/domain/entity"
)

// LedgerHandler maneja las peticiones HTTP del stock ledger (protegido, ADMIN).
type LedgerHandler struct {
	svc *appledger.Service
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(svc *appledger.Service) *LedgerHandler {
	return &LedgerHandler{svc: svc}
}

// errorResponse mapea errores de dominio a códigos HTTP.
func errorResponse(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "recurso no encontrado"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: "conflicto de concurrencia, reintentar"})
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: "recurso duplicado"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}

// RecordMovement registra un movimiento de stock de un producto.
// POST /api/stock-ledger/movements
func (h *LedgerHandler) RecordMovement(c *fiber.Ctx) error {
	var in dto.RecordMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	var actingUser *string
	if userID := GetUserID(c); userID != "" {
		actingUser = &userID
	}

	entry, err := h.svc.RecordMovement(c.Context(), appledger.MovementInput{
		ProductID:      in.ProductID,
		QuantityDelta:  in.QuantityDelta,
		MovementType:   entity.MovementType(in.MovementType),
		Description:    in.Description,
		ActingUserID:   actingUser,
		RelatedOrderID: in.RelatedOrderID,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewLedgerEntryResponse(entry))
}

// GetHistory devuelve el historial completo de un producto, ordenado por
// secuencia. Similar a 'git log' para la cadena de ese producto.
// GET /api/stock-ledger/history/:productId
func (h *LedgerHandler) GetHistory(c *fiber.Ctx) error {
	history, err := h.svc.GetHistory(c.Context(), c.Params("productId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.NewLedgerEntryResponses(history))
}

// GetSnapshot devuelve el estado actual O(1) de un producto.
// GET /api/stock-ledger/snapshot/:productId
func (h *LedgerHandler) GetSnapshot(c *fiber.Ctx) error {
	snap, err := h.svc.GetSnapshot(c.Context(), c.Params("productId"))
	if err != nil {
		return errorResponse(c, err)
	}
	if snap == nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "snapshot no encontrado"})
	}
	return c.JSON(dto.NewSnapshotResponse(snap))
}

// Verify verifica la integridad de la cadena de un producto. Similar a
// 'git fsck': si alguien modificó la base directamente, aquí se detecta.
// GET /api/stock-ledger/verify/:productId
func (h *LedgerHandler) Verify(c *fiber.Ctx) error {
	result, err := h.svc.VerifyChain(c.Context(), c.Params("productId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(result)
}

// VerifyAll verifica todas las cadenas del sistema; puede tardar en sistemas
// grandes.
// GET /api/stock-ledger/verify-all
func (h *LedgerHandler) VerifyAll(c *fiber.Ctx) error {
	results, err := h.svc.VerifyAllChains(c.Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(results)
}

// ProcessBatch aplica un lote de movimientos en una transacción atómica:
// si uno falla, se revierten todos.
// POST /api/stock-ledger/batch
func (h *LedgerHandler) ProcessBatch(c *fiber.Ctx) error {
	var in dto.BatchMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}

	var actingUser *string
	if userID := GetUserID(c); userID != "" {
		actingUser = &userID
	}

	movements := make([]appledger.BatchMovementItem, 0, len(in.Movements))
	for _, item := range in.Movements {
		movements = append(movements, appledger.BatchMovementItem{
			ProductID:     item.ProductID,
			QuantityDelta: item.QuantityDelta,
			MovementType:  entity.MovementType(item.MovementType),
			Description:   item.Description,
		})
	}

	result, err := h.svc.ApplyBatch(c.Context(), appledger.BatchInput{
		Movements:      movements,
		Reason:         in.Reason,
		ActingUserID:   actingUser,
		RelatedOrderID: in.RelatedOrderID,
	})
	if err != nil && result == nil {
		return errorResponse(c, err)
	}

	resp := dto.BatchMovementResponse{
		Success:        result.Success,
		ProcessedCount: result.ProcessedCount,
		TotalCount:     result.TotalCount,
		Message:        result.Message,
		ErrorDetail:    result.ErrorDetail,
		Transactions:   dto.NewLedgerEntryResponses(result.Entries),
	}
	if !result.Success {
		// La transacción ya se revirtió; el detalle viaja en el cuerpo.
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}
	return c.JSON(resp)
}

// Reset elimina PERMANENTEMENTE el historial y el snapshot de un producto.
// No modifica el stock actual; solo borra la cadena para empezar de cero.
// DELETE /api/stock-ledger/reset/:productId
func (h *LedgerHandler) Reset(c *fiber.Ctx) error {
	summary, err := h.svc.ResetLedger(c.Context(), c.Params("productId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": summary})
}
