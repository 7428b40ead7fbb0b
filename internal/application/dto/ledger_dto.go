package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/economato/stock-ledger/internal/domain/entity"
)

// RecordMovementRequest body para POST /api/stock-ledger/movements.
type RecordMovementRequest struct {
	ProductID      string          `json:"product_id"`
	QuantityDelta  decimal.Decimal `json:"quantity_delta"`
	MovementType   string          `json:"movement_type"` // ENTRADA | SALIDA | AJUSTE
	Description    string          `json:"description,omitempty"`
	RelatedOrderID *string         `json:"related_order_id,omitempty"`
}

// BatchMovementItemRequest un movimiento dentro de un lote.
type BatchMovementItemRequest struct {
	ProductID     string          `json:"product_id"`
	QuantityDelta decimal.Decimal `json:"quantity_delta"`
	MovementType  string          `json:"movement_type"`
	Description   string          `json:"description,omitempty"`
}

// BatchMovementRequest body para POST /api/stock-ledger/batch.
type BatchMovementRequest struct {
	Movements      []BatchMovementItemRequest `json:"movements"`
	Reason         string                     `json:"reason,omitempty"`
	RelatedOrderID *string                    `json:"related_order_id,omitempty"`
}

// LedgerEntryResponse representación de una entrada del ledger.
type LedgerEntryResponse struct {
	ID                   string          `json:"id"`
	ProductID            string          `json:"product_id"`
	QuantityDelta        decimal.Decimal `json:"quantity_delta"`
	ResultingStock       decimal.Decimal `json:"resulting_stock"`
	MovementType         string          `json:"movement_type"`
	Description          string          `json:"description,omitempty"`
	SequenceNumber       int64           `json:"sequence_number"`
	PreviousHash         string          `json:"previous_hash"`
	CurrentHash          string          `json:"current_hash"`
	TransactionTimestamp time.Time       `json:"transaction_timestamp"`
	ActingUserID         *string         `json:"acting_user_id,omitempty"`
	RelatedOrderID       *string         `json:"related_order_id,omitempty"`
	Verified             bool            `json:"verified"`
}

// NewLedgerEntryResponse mapea la entidad a su representación HTTP.
func NewLedgerEntryResponse(e *entity.LedgerEntry) LedgerEntryResponse {
	return LedgerEntryResponse{
		ID:                   e.ID,
		ProductID:            e.ProductID,
		QuantityDelta:        e.QuantityDelta,
		ResultingStock:       e.ResultingStock,
		MovementType:         string(e.MovementType),
		Description:          e.Description,
		SequenceNumber:       e.SequenceNumber,
		PreviousHash:         e.PreviousHash,
		CurrentHash:          e.CurrentHash,
		TransactionTimestamp: e.TransactionTimestamp,
		ActingUserID:         e.ActingUserID,
		RelatedOrderID:       e.RelatedOrderID,
		Verified:             e.Verified,
	}
}

// NewLedgerEntryResponses mapea una lista de entradas.
func NewLedgerEntryResponses(entries []*entity.LedgerEntry) []LedgerEntryResponse {
	out := make([]LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewLedgerEntryResponse(e))
	}
	return out
}

// SnapshotResponse representación del snapshot O(1) de un producto.
type SnapshotResponse struct {
	ProductID           string          `json:"product_id"`
	CurrentStock        decimal.Decimal `json:"current_stock"`
	LastTransactionHash string          `json:"last_transaction_hash"`
	LastSequenceNumber  int64           `json:"last_sequence_number"`
	IntegrityStatus     string          `json:"integrity_status"`
	LastUpdated         time.Time       `json:"last_updated"`
	LastVerified        *time.Time      `json:"last_verified,omitempty"`
}

// NewSnapshotResponse mapea la entidad a su representación HTTP.
func NewSnapshotResponse(s *entity.StockSnapshot) SnapshotResponse {
	return SnapshotResponse{
		ProductID:           s.ProductID,
		CurrentStock:        s.CurrentStock,
		LastTransactionHash: s.LastTransactionHash,
		LastSequenceNumber:  s.LastSequenceNumber,
		IntegrityStatus:     string(s.IntegrityStatus),
		LastUpdated:         s.LastUpdated,
		LastVerified:        s.LastVerified,
	}
}

// BatchMovementResponse resultado de una operación batch.
type BatchMovementResponse struct {
	Success        bool                  `json:"success"`
	ProcessedCount int                   `json:"processed_count"`
	TotalCount     int                   `json:"total_count"`
	Message        string                `json:"message"`
	ErrorDetail    string                `json:"error_detail,omitempty"`
	Transactions   []LedgerEntryResponse `json:"transactions,omitempty"`
}
