package sqlite

import (
	"fmt"

	"github.com/tu-usuario/steel-pos/internal/domain/entity"
	"github.com/tu-usuario/steel-pos/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo implementación del registro de auditoría de stock.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar db o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta una fila de auditoría y asigna su id. Nunca hay updates ni
// deletes sobre esta tabla desde el motor.
func (r *StockMovementRepo) Create(m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (product_id, product_name, movement_type, quantity,
		    previous_stock, new_stock, unit_price, total_value, reason,
		    reference_type, reference_id, reference_number, customer_id, customer_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.q.Exec(query,
		m.ProductID, m.ProductName, m.Type, m.Quantity,
		m.PreviousStock, m.NewStock, m.UnitPrice, m.TotalValue, m.Reason,
		m.ReferenceType, m.ReferenceID, m.ReferenceNumber, m.CustomerID, m.CustomerName,
		m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert stock movement: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert stock movement id: %w", err)
	}
	m.ID = id
	return nil
}

// ListByInvoiceID movimientos generados por una factura (auditoría, tests).
func (r *StockMovementRepo) ListByInvoiceID(invoiceID int64) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, product_id, product_name, movement_type, quantity,
		       previous_stock, new_stock, unit_price, total_value, reason,
		       reference_type, reference_id, reference_number, customer_id, customer_name, created_at
		FROM stock_movements
		WHERE reference_type = ? AND reference_id = ?
		ORDER BY id`
	rows, err := r.q.Query(query, entity.ReferenceTypeInvoice, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var m entity.StockMovement
		if err := rows.Scan(&m.ID, &m.ProductID, &m.ProductName, &m.Type, &m.Quantity,
			&m.PreviousStock, &m.NewStock, &m.UnitPrice, &m.TotalValue, &m.Reason,
			&m.ReferenceType, &m.ReferenceID, &m.ReferenceNumber, &m.CustomerID,
			&m.CustomerName, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}
