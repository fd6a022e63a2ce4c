package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de pago de una factura (derivados del saldo pendiente, nunca
// almacenados inconsistentes con RemainingBalance).
const (
	PaymentStatusPending = "pending"
	PaymentStatusPartial = "partial"
	PaymentStatusPaid    = "paid"
)

// Invoice representa la cabecera de una factura de venta.
// Inmutable después del commit: las correcciones son flujos de reversa, no
// ediciones in situ.
type Invoice struct {
	ID               int64
	BillNumber       string // único global, convención de display: prefijo + secuencia
	CustomerID       int64
	CustomerName     string // snapshot, desacoplado de renombres posteriores
	Subtotal         decimal.Decimal
	DiscountPercent  decimal.Decimal
	DiscountAmount   decimal.Decimal
	GrandTotal       decimal.Decimal
	PaymentAmount    decimal.Decimal
	RemainingBalance decimal.Decimal
	PaymentMethod    string
	PaymentStatus    string // pending | partial | paid
	Notes            string // saneadas: sin caracteres de control ni patrones de script
	Date             time.Time
	CreatedAt        time.Time
}

// DerivePaymentStatus calcula el estado de pago desde los montos.
func DerivePaymentStatus(grandTotal, remaining decimal.Decimal) string {
	switch {
	case remaining.IsZero():
		return PaymentStatusPaid
	case remaining.LessThan(grandTotal):
		return PaymentStatusPartial
	default:
		return PaymentStatusPending
	}
}
