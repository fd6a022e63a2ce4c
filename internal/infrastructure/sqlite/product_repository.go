package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/steel-pos/internal/domain/entity"
	"github.com/tu-usuario/steel-pos/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository (usable con db o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador. Pasar db o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

// GetByID obtiene un producto por id. Devuelve (nil, nil) si no existe.
func (r *ProductRepo) GetByID(id int64) (*entity.Product, error) {
	query := `
		SELECT id, name, unit, current_stock, stock_value, min_stock, min_stock_value,
		       unit_price, created_at, updated_at
		FROM products WHERE id = ?`
	var p entity.Product
	err := r.q.QueryRow(query, id).Scan(
		&p.ID, &p.Name, &p.Unit, &p.CurrentStock, &p.StockValue,
		&p.MinStock, &p.MinStockValue, &p.UnitPrice, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return &p, nil
}

// UpdateStock reescribe la forma legible y el valor numérico del stock.
// Solo el escritor transaccional la invoca, con el lock del serializador tomado.
func (r *ProductRepo) UpdateStock(id int64, stock string, value decimal.Decimal) error {
	query := `
		UPDATE products
		SET current_stock = ?, stock_value = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`
	res, err := r.q.Exec(query, stock, value, id)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update stock: producto %d no existe", id)
	}
	return nil
}
