package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock. El motor de facturación solo produce "out";
// "in" lo generan los flujos de recepción (fuera de este motor, mismo contrato).
const (
	MovementTypeIn  = "in"
	MovementTypeOut = "out"
)

// Tipo de referencia de un movimiento hacia el documento que lo causó.
const ReferenceTypeInvoice = "invoice"

// StockMovement es una fila del registro de auditoría de stock, append-only:
// nunca se actualiza ni se borra. Guarda stock anterior y nuevo como snapshots
// (no solo el delta) para que la traza sea auto-verificable.
type StockMovement struct {
	ID              int64
	ProductID       int64
	ProductName     string // snapshot
	Type            string // in | out
	Quantity        string // forma legible
	PreviousStock   string // snapshot antes del movimiento
	NewStock        string // snapshot después del movimiento
	UnitPrice       decimal.Decimal
	TotalValue      decimal.Decimal
	Reason          string
	ReferenceType   string // "invoice"
	ReferenceID     int64  // id interno de la factura
	ReferenceNumber string // número de factura visible
	CustomerID      int64  // 0 si no aplica
	CustomerName    string
	CreatedAt       time.Time
}
