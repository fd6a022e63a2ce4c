package sqlite

import (
	"fmt"

	"github.com/tu-usuario/steel-pos/internal/domain/entity"
	"github.com/tu-usuario/steel-pos/internal/domain/repository"
)

var _ repository.LedgerRepository = (*LedgerRepo)(nil)

// LedgerRepo implementación del ledger de clientes (append-only).
type LedgerRepo struct {
	q Querier
}

// NewLedgerRepository construye el adaptador. Pasar db o tx (Querier).
func NewLedgerRepository(q Querier) *LedgerRepo {
	return &LedgerRepo{q: q}
}

// Create inserta un asiento y asigna su id.
func (r *LedgerRepo) Create(e *entity.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (invoice_id, customer_id, amount, payment_amount, balance, entry_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := r.q.Exec(query,
		e.InvoiceID, e.CustomerID, e.Amount, e.PaymentAmount, e.Balance, e.EntryType, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert ledger entry id: %w", err)
	}
	e.ID = id
	return nil
}

// ListByCustomerID asientos de un cliente en orden de creación.
func (r *LedgerRepo) ListByCustomerID(customerID int64) ([]*entity.LedgerEntry, error) {
	query := `
		SELECT id, invoice_id, customer_id, amount, payment_amount, balance, entry_type, created_at
		FROM ledger_entries WHERE customer_id = ? ORDER BY id`
	rows, err := r.q.Query(query, customerID)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()
	var list []*entity.LedgerEntry
	for rows.Next() {
		var e entity.LedgerEntry
		if err := rows.Scan(&e.ID, &e.InvoiceID, &e.CustomerID, &e.Amount,
			&e.PaymentAmount, &e.Balance, &e.EntryType, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
