package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/steel-pos/internal/application/billing"
	"github.com/tu-usuario/steel-pos/internal/application/dto"
)

// CatalogHandler lecturas de catálogo para la UI.
type CatalogHandler struct {
	uc *billing.CatalogUseCase
}

// NewCatalogHandler construye el handler.
func NewCatalogHandler(uc *billing.CatalogUseCase) *CatalogHandler {
	return &CatalogHandler{uc: uc}
}

// GetProduct devuelve un producto con su stock actual.
// GET /api/products/:id
func (h *CatalogHandler) GetProduct(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido", Field: "id"})
	}
	product, err := h.uc.GetProduct(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(product)
}

// GetCustomer devuelve un cliente con su saldo corriente.
// GET /api/customers/:id
func (h *CatalogHandler) GetCustomer(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido", Field: "id"})
	}
	customer, err := h.uc.GetCustomer(id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(customer)
}
