package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/economato/stock-ledger/internal/application/dto"
	"github.com/economato/stock-ledger/internal/application/usecase"
)

// ProductHandler maneja las peticiones HTTP de productos (protegido).
// El stock no se edita desde aquí: solo el motor del ledger lo escribe.
type ProductHandler struct {
	uc *usecase.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *usecase.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Create crea un producto. POST /api/products
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	product, err := h.uc.Create(c.Context(), usecase.CreateProductInput{
		Code:         in.Code,
		Name:         in.Name,
		Category:     in.Category,
		Unit:         in.Unit,
		UnitPrice:    in.UnitPrice,
		InitialStock: in.InitialStock,
		MinimumStock: in.MinimumStock,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewProductResponse(product))
}

// GetByID obtiene un producto. GET /api/products/:id
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	product, err := h.uc.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.NewProductResponse(product))
}

// Update edita los campos que no son de stock. Una revisión desfasada
// devuelve 409 y el caller debe recargar y reintentar. PUT /api/products/:id
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	product, err := h.uc.Update(c.Context(), c.Params("id"), usecase.UpdateProductInput{
		Name:         in.Name,
		Category:     in.Category,
		Unit:         in.Unit,
		UnitPrice:    in.UnitPrice,
		MinimumStock: in.MinimumStock,
		Revision:     in.Revision,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(dto.NewProductResponse(product))
}

// List lista productos paginados. GET /api/products
func (h *ProductHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "parámetros inválidos"})
	}
	page.DefaultPage()

	products, err := h.uc.List(c.Context(), page.Limit, page.Offset)
	if err != nil {
		return errorResponse(c, err)
	}
	out := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		out = append(out, dto.NewProductResponse(p))
	}
	return c.JSON(out)
}

// Delete elimina un producto. DELETE /api/products/:id
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.Context(), c.Params("id")); err != nil {
		return errorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
