package repository

import "github.com/tu-usuario/steel-pos/internal/domain/entity"

// LedgerRepository define el puerto del ledger de clientes (append-only).
type LedgerRepository interface {
	Create(entry *entity.LedgerEntry) error
	ListByCustomerID(customerID int64) ([]*entity.LedgerEntry, error)
}
