package repository

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/steel-pos/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product.
// UpdateStock reescribe juntas la forma legible y el valor numérico derivado;
// solo el escritor transaccional lo invoca (descuento por venta).
type ProductRepository interface {
	GetByID(id int64) (*entity.Product, error)
	UpdateStock(id int64, stock string, value decimal.Decimal) error
}
