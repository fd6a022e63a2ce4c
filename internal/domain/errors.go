package domain

import (
	"errors"
	"fmt"

	"github.com/tu-usuario/steel-pos/internal/domain/quantity"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound            = errors.New("recurso no encontrado")
	ErrInvalidInput        = errors.New("entrada inválida")
	ErrRateLimitExceeded   = errors.New("límite de operaciones por minuto excedido")
	ErrOperationTimeout    = errors.New("tiempo de espera en cola agotado")
	ErrBillNumberExhausted = errors.New("no se pudo generar un número de factura único")
	ErrTransactionConflict = errors.New("conflicto de escritura en la base de datos")
	ErrSerializerClosed    = errors.New("el serializador de operaciones está cerrado")
)

// ValidationError violación de una regla de validación; nunca se reintenta y
// se devuelve tal cual al caller con el campo que la causó.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validación: %s: %s", e.Field, e.Reason)
}

// NewValidationError helper para fallar rápido en la primera violación.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// InsufficientStockError el stock disponible no alcanza para la cantidad
// solicitada. Lleva disponible/solicitado para que la UI los muestre.
type InsufficientStockError struct {
	ProductID   int64
	ProductName string
	Available   quantity.Quantity
	Required    quantity.Quantity
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %q (id %d): disponible %s, solicitado %s",
		e.ProductName, e.ProductID, e.Available, e.Required)
}

// FatalInconsistentError el rollback falló después de un error en la
// transacción: el motor no puede garantizar los invariantes de las filas
// afectadas y se requiere intervención del operador.
type FatalInconsistentError struct {
	Op          string
	TxErr       error
	RollbackErr error
}

// Error no expone Unwrap a propósito: un estado fatal nunca debe clasificarse
// como transitorio aunque el error de transacción original lo fuera.
func (e *FatalInconsistentError) Error() string {
	return fmt.Sprintf("estado fatal inconsistente en %s: error de transacción (%v) y el rollback también falló (%v)",
		e.Op, e.TxErr, e.RollbackErr)
}
