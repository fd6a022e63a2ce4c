package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de asiento del ledger de clientes. El motor solo produce "invoice";
// los pagos (fuera de este motor) usan el mismo contrato con su propio tipo.
const LedgerEntryTypeInvoice = "invoice"

// LedgerEntry es un asiento append-only del ledger del cliente: registra el
// cambio de saldo causado por una factura junto con el saldo resultante.
type LedgerEntry struct {
	ID            int64
	InvoiceID     int64
	CustomerID    int64
	Amount        decimal.Decimal // total de la factura
	PaymentAmount decimal.Decimal // pago recibido en la misma operación
	Balance       decimal.Decimal // saldo corriente resultante del cliente
	EntryType     string          // "invoice"
	CreatedAt     time.Time
}
