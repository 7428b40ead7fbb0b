package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/economato/stock-ledger/internal/domain/entity"
)

// CreateProductRequest body para POST /api/products.
type CreateProductRequest struct {
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Category     string          `json:"category,omitempty"`
	Unit         string          `json:"unit"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	InitialStock decimal.Decimal `json:"initial_stock"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
}

// UpdateProductRequest body para PUT /api/products/:id. No incluye stock:
// el stock solo cambia a través de movimientos del ledger.
type UpdateProductRequest struct {
	Name         string          `json:"name"`
	Category     string          `json:"category,omitempty"`
	Unit         string          `json:"unit"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	Revision     int64           `json:"revision"`
}

// ProductResponse representación HTTP de un producto.
type ProductResponse struct {
	ID           string          `json:"id"`
	Code         string          `json:"code"`
	Name         string          `json:"name"`
	Category     string          `json:"category,omitempty"`
	Unit         string          `json:"unit"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Stock        decimal.Decimal `json:"stock"`
	MinimumStock decimal.Decimal `json:"minimum_stock"`
	Revision     int64           `json:"revision"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewProductResponse mapea la entidad a su representación HTTP.
func NewProductResponse(p *entity.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		Code:         p.Code,
		Name:         p.Name,
		Category:     p.Category,
		Unit:         p.Unit,
		UnitPrice:    p.UnitPrice,
		Stock:        p.Stock,
		MinimumStock: p.MinimumStock,
		Revision:     p.Revision,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
