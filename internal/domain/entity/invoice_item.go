package entity

import "github.com/shopspring/decimal"

// InvoiceItem representa una línea de una factura. Se crea atómicamente con
// la cabecera (FK con borrado en cascada) y nunca de forma independiente.
type InvoiceItem struct {
	ID          int64
	InvoiceID   int64
	ProductID   int64
	ProductName string // snapshot al momento de la venta
	Quantity    string // forma legible ("4 kg", "12 pcs")
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}
