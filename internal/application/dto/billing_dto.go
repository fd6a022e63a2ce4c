package dto

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/steel-pos/internal/domain/quantity"
)

// CreateInvoiceRequest entrada del caso de uso CreateInvoice (desde la UI).
type CreateInvoiceRequest struct {
	CustomerID      int64                `json:"customer_id"`
	Items           []InvoiceItemRequest `json:"items"`
	DiscountPercent decimal.Decimal      `json:"discount_percent"`
	PaymentAmount   decimal.Decimal      `json:"payment_amount"`
	PaymentMethod   string               `json:"payment_method"`
	Notes           string               `json:"notes"`
}

// InvoiceItemRequest línea propuesta. Unit viene del catálogo que la UI ya
// tiene cargado; el chequeo de disponibilidad la revalida contra el producto.
type InvoiceItemRequest struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Unit        quantity.Unit   `json:"unit"`
	Quantity    string          `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// InvoiceResponse respuesta con la factura creada o consultada.
type InvoiceResponse struct {
	ID               int64                 `json:"id"`
	BillNumber       string                `json:"bill_number"`
	CustomerID       int64                 `json:"customer_id"`
	CustomerName     string                `json:"customer_name"`
	Subtotal         decimal.Decimal       `json:"subtotal"`
	DiscountPercent  decimal.Decimal       `json:"discount_percent"`
	DiscountAmount   decimal.Decimal       `json:"discount_amount"`
	GrandTotal       decimal.Decimal       `json:"grand_total"`
	PaymentAmount    decimal.Decimal       `json:"payment_amount"`
	RemainingBalance decimal.Decimal       `json:"remaining_balance"`
	PaymentMethod    string                `json:"payment_method"`
	PaymentStatus    string                `json:"payment_status"`
	Notes            string                `json:"notes,omitempty"`
	Date             string                `json:"date"`
	Items            []InvoiceItemResponse `json:"items"`
}

// InvoiceItemResponse línea de la factura en respuestas.
type InvoiceItemResponse struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    string          `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// ProductResponse lectura de catálogo.
type ProductResponse struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Unit         quantity.Unit   `json:"unit"`
	CurrentStock string          `json:"current_stock"`
	MinStock     string          `json:"min_stock"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	BelowMinimum bool            `json:"below_minimum"`
}

// CustomerResponse lectura de clientes.
type CustomerResponse struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Balance decimal.Decimal `json:"balance"`
	Active  bool            `json:"active"`
}
