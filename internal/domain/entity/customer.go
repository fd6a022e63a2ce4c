package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer representa un cliente del negocio.
// Balance es el saldo corriente con signo: positivo = el cliente debe dinero.
// Solo lo mutan los asientos del ledger (facturas en este motor, pagos fuera).
type Customer struct {
	ID        int64
	Name      string
	Balance   decimal.Decimal
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
