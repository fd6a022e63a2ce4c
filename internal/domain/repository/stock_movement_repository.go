package repository

import "github.com/tu-usuario/steel-pos/internal/domain/entity"

// StockMovementRepository define el puerto del registro de auditoría de stock.
// Append-only: el motor solo inserta, nunca actualiza ni borra.
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	ListByInvoiceID(invoiceID int64) ([]*entity.StockMovement, error)
}
