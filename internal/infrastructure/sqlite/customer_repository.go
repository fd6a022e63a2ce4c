package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/steel-pos/internal/domain/entity"
	"github.com/tu-usuario/steel-pos/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository (usable con db o tx).
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository construye el adaptador. Pasar db o tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

// GetByID obtiene un cliente por id. Devuelve (nil, nil) si no existe.
func (r *CustomerRepo) GetByID(id int64) (*entity.Customer, error) {
	query := `
		SELECT id, name, balance, active, created_at, updated_at
		FROM customers WHERE id = ?`
	var c entity.Customer
	err := r.q.QueryRow(query, id).Scan(
		&c.ID, &c.Name, &c.Balance, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return &c, nil
}

// UpdateBalance fija el saldo corriente del cliente.
func (r *CustomerRepo) UpdateBalance(id int64, balance decimal.Decimal) error {
	query := `
		UPDATE customers
		SET balance = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`
	res, err := r.q.Exec(query, balance, id)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update balance: cliente %d no existe", id)
	}
	return nil
}
