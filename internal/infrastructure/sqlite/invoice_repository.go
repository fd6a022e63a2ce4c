package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/tu-usuario/steel-pos/internal/domain/entity"
	"github.com/tu-usuario/steel-pos/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con db o tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar db o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

// Create persiste la cabecera y asigna el id autoincremental en la entidad.
func (r *InvoiceRepo) Create(invoice *entity.Invoice) error {
	query := `
		INSERT INTO invoices (bill_number, customer_id, customer_name, subtotal,
		    discount_percent, discount_amount, grand_total, payment_amount,
		    remaining_balance, payment_method, payment_status, notes, date, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.q.Exec(query,
		invoice.BillNumber, invoice.CustomerID, invoice.CustomerName, invoice.Subtotal,
		invoice.DiscountPercent, invoice.DiscountAmount, invoice.GrandTotal,
		invoice.PaymentAmount, invoice.RemainingBalance, invoice.PaymentMethod,
		invoice.PaymentStatus, invoice.Notes, invoice.Date, invoice.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("bill number duplicado %q: %w", invoice.BillNumber, err)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert invoice id: %w", err)
	}
	invoice.ID = id
	return nil
}

// CreateItem persiste una línea y asigna su id.
func (r *InvoiceRepo) CreateItem(item *entity.InvoiceItem) error {
	query := `
		INSERT INTO invoice_items (invoice_id, product_id, product_name, quantity, unit_price, total_price)
		VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.q.Exec(query,
		item.InvoiceID, item.ProductID, item.ProductName, item.Quantity,
		item.UnitPrice, item.TotalPrice,
	)
	if err != nil {
		return fmt.Errorf("insert invoice item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert invoice item id: %w", err)
	}
	item.ID = id
	return nil
}

// ExistsBillNumber consulta si ya hay una factura con ese número (dentro de
// la transacción abierta del escritor, para el chequeo de colisión).
func (r *InvoiceRepo) ExistsBillNumber(billNumber string) (bool, error) {
	var one int
	err := r.q.QueryRow(`SELECT 1 FROM invoices WHERE bill_number = ?`, billNumber).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("exists bill number: %w", err)
	}
	return true, nil
}

// CountAll cantidad total de facturas; semilla de la secuencia del número.
func (r *InvoiceRepo) CountAll() (int64, error) {
	var n int64
	if err := r.q.QueryRow(`SELECT COUNT(*) FROM invoices`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return n, nil
}

// GetByID obtiene una factura por id. Devuelve (nil, nil) si no existe.
func (r *InvoiceRepo) GetByID(id int64) (*entity.Invoice, error) {
	query := `
		SELECT id, bill_number, customer_id, customer_name, subtotal,
		       discount_percent, discount_amount, grand_total, payment_amount,
		       remaining_balance, payment_method, payment_status, notes, date, created_at
		FROM invoices WHERE id = ?`
	var inv entity.Invoice
	err := r.q.QueryRow(query, id).Scan(
		&inv.ID, &inv.BillNumber, &inv.CustomerID, &inv.CustomerName, &inv.Subtotal,
		&inv.DiscountPercent, &inv.DiscountAmount, &inv.GrandTotal, &inv.PaymentAmount,
		&inv.RemainingBalance, &inv.PaymentMethod, &inv.PaymentStatus, &inv.Notes,
		&inv.Date, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return &inv, nil
}

// GetItemsByInvoiceID obtiene todas las líneas de una factura.
func (r *InvoiceRepo) GetItemsByInvoiceID(invoiceID int64) ([]*entity.InvoiceItem, error) {
	query := `
		SELECT id, invoice_id, product_id, product_name, quantity, unit_price, total_price
		FROM invoice_items WHERE invoice_id = ? ORDER BY id`
	rows, err := r.q.Query(query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice items: %w", err)
	}
	defer rows.Close()
	var list []*entity.InvoiceItem
	for rows.Next() {
		var it entity.InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, &it)
	}
	return list, rows.Err()
}
