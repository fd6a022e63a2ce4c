package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/tu-usuario/steel-pos/internal/application/billing"
	"github.com/tu-usuario/steel-pos/internal/domain"
	"github.com/tu-usuario/steel-pos/internal/domain/repository"
)

var _ billing.BillingTxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción SQLite en modo
// inmediato (el lock de escritura se toma al abrir, vía _txlock del DSN).
type TxRunner struct {
	db *sql.DB
}

// NewTxRunner construye el runner con la base abierta.
func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db}
}

// RunBilling abre la transacción, ejecuta fn con los repos atados a la tx y
// hace Commit o Rollback. El rollback es un paso explícito del camino de
// error: si el propio rollback falla, escala a FatalInconsistentError.
// Errores de contención (lock ocupado) salen envueltos con
// ErrTransactionConflict para que el escritor decida el reintento.
func (r *TxRunner) RunBilling(ctx context.Context, fn func(
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	invoiceRepo repository.InvoiceRepository,
	movementRepo repository.StockMovementRepository,
	ledgerRepo repository.LedgerRepository,
) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return classify(fmt.Errorf("begin transaction: %w", err))
	}

	err = fn(
		NewProductRepository(tx),
		NewCustomerRepository(tx),
		NewInvoiceRepository(tx),
		NewStockMovementRepository(tx),
		NewLedgerRepository(tx),
	)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return &domain.FatalInconsistentError{Op: "billing tx", TxErr: err, RollbackErr: rbErr}
		}
		return classify(err)
	}

	if err := tx.Commit(); err != nil {
		// Tras un commit fallido database/sql ya terminó la transacción;
		// no hay rollback pendiente que pueda dejarla abierta.
		return classify(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}
