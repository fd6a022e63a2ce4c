package repository

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/steel-pos/internal/domain/entity"
)

// CustomerRepository define el puerto de persistencia para Customer.
// UpdateBalance solo se invoca desde el escritor transaccional al crear el
// asiento del ledger; los pagos (fuera de este motor) usan el mismo contrato.
type CustomerRepository interface {
	GetByID(id int64) (*entity.Customer, error)
	UpdateBalance(id int64, balance decimal.Decimal) error
}
