package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/steel-pos/internal/application/dto"
	"github.com/tu-usuario/steel-pos/internal/domain"
)

// writeError traduce los errores del dominio a códigos HTTP y al cuerpo de
// error que la UI consume. El mapeo es fijo: validación 400, no encontrado
// 404, stock 409, tasa 429, cola/contención 503, el resto 500.
func writeError(c *fiber.Ctx, err error) error {
	var validation *domain.ValidationError
	if errors.As(err, &validation) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: validation.Reason,
			Field:   validation.Field,
		})
	}
	var stock *domain.InsufficientStockError
	if errors.As(err, &stock) {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Code:      "INSUFFICIENT_STOCK",
			Message:   stock.Error(),
			Available: stock.Available.String(),
			Required:  stock.Required.String(),
		})
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Code: "NOT_FOUND", Message: err.Error(),
		})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code: "VALIDATION", Message: err.Error(),
		})
	case errors.Is(err, domain.ErrRateLimitExceeded):
		return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
			Code: "RATE_LIMITED", Message: "límite de facturas por minuto excedido, espere un momento",
		})
	case errors.Is(err, domain.ErrOperationTimeout),
		errors.Is(err, domain.ErrTransactionConflict),
		errors.Is(err, domain.ErrSerializerClosed):
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
			Code: "BUSY", Message: "el sistema está ocupado, reintente la operación",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code: "INTERNAL", Message: err.Error(),
		})
	}
}
