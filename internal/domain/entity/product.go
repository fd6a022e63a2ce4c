package entity

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/steel-pos/internal/domain/quantity"
)

// Product representa un producto del catálogo (acero: varilla, lámina, rollo).
// CurrentStock guarda la forma legible ("120 kg 500 g") y StockValue el valor
// numérico derivado; la aritmética se hace siempre sobre StockValue y el motor
// reescribe ambos juntos al descontar.
type Product struct {
	ID            int64
	Name          string
	Unit          quantity.Unit
	CurrentStock  string          // forma canónica legible
	StockValue    decimal.Decimal // kg para peso, unidades para conteo
	MinStock      string          // umbral de stock mínimo (forma legible)
	MinStockValue decimal.Decimal
	UnitPrice     decimal.Decimal // precio de venta por kg o por unidad
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// StockQuantity cantidad actual como valor comparable del dominio.
func (p *Product) StockQuantity() quantity.Quantity {
	return quantity.FromValue(p.StockValue, p.Unit)
}

// BelowMinimum true si el stock actual está por debajo del umbral mínimo.
func (p *Product) BelowMinimum() bool {
	return p.StockValue.LessThan(p.MinStockValue)
}
