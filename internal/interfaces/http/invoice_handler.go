package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/steel-pos/internal/application/billing"
	"github.com/tu-usuario/steel-pos/internal/application/dto"
	"github.com/tu-usuario/steel-pos/internal/domain"
)

// InvoiceHandler maneja las peticiones HTTP de facturación.
type InvoiceHandler struct {
	uc *billing.CreateInvoiceUseCase
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc *billing.CreateInvoiceUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// Create crea una factura, descuenta stock y asienta el ledger.
// POST /api/invoices
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return writeError(c, fmt.Errorf("%w: cuerpo inválido", domain.ErrInvalidInput))
	}
	invoice, err := h.uc.Execute(c.Context(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invoice)
}

// GetByID obtiene el detalle completo de una factura.
// GET /api/invoices/:id
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id inválido", Field: "id"})
	}
	invoice, err := h.uc.GetInvoice(c.Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(invoice)
}
